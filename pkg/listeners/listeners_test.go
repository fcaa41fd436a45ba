package listeners

import (
	"errors"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranshuparmar/listeners/pkg/model"
)

var (
	nginx   = model.Process{PID: 10, Name: "nginx", Path: "/usr/sbin/nginx"}
	worker  = model.Process{PID: 11, Name: "nginx", Path: "/usr/sbin/nginx"}
	dnsmasq = model.Process{PID: 20, Name: "dnsmasq", Path: "/usr/sbin/dnsmasq"}
)

func fakeSnapshot(t *testing.T, ls []model.Listener, err error) {
	t.Helper()
	prevList, prevFind := listAll, findProcess
	t.Cleanup(func() { listAll, findProcess = prevList, prevFind })

	listAll = func() ([]model.Listener, error) { return ls, err }
	findProcess = func(port uint16, proto model.Protocol) (model.Process, error) {
		if err != nil {
			return model.Process{}, err
		}
		for _, l := range ls {
			if l.Socket.Port() == port && l.Protocol == proto {
				return l.Process, nil
			}
		}
		return model.Process{}, model.ErrNotFound
	}
}

func lsn(p model.Process, sock string, proto model.Protocol) model.Listener {
	return model.Listener{Process: p, Socket: netip.MustParseAddrPort(sock), Protocol: proto}
}

func sample() []model.Listener {
	return []model.Listener{
		lsn(nginx, "0.0.0.0:80", model.TCP),
		lsn(nginx, "[::]:80", model.TCP),
		lsn(nginx, "0.0.0.0:443", model.TCP),
		lsn(worker, "0.0.0.0:80", model.TCP),
		lsn(dnsmasq, "127.0.0.1:53", model.UDP),
		lsn(dnsmasq, "127.0.0.1:53", model.TCP),
		lsn(dnsmasq, "0.0.0.0:0", model.UDP),
	}
}

func TestGetProcessesByPort(t *testing.T) {
	fakeSnapshot(t, sample(), nil)

	got, err := GetProcessesByPort(80)
	require.NoError(t, err)
	assert.Equal(t, []model.Process{nginx, worker}, got)

	got, err = GetProcessesByPort(53)
	require.NoError(t, err)
	assert.Equal(t, []model.Process{dnsmasq}, got)

	got, err = GetProcessesByPort(8080)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetPortsByPID(t *testing.T) {
	fakeSnapshot(t, sample(), nil)

	got, err := GetPortsByPID(10)
	require.NoError(t, err)
	assert.Equal(t, []uint16{80, 443}, got)

	got, err = GetPortsByPID(20)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0, 53}, got)

	got, err = GetPortsByPID(99)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetPortsByProcessName(t *testing.T) {
	fakeSnapshot(t, sample(), nil)

	got, err := GetPortsByProcessName("nginx")
	require.NoError(t, err)
	assert.Equal(t, []uint16{80, 443}, got)

	got, err = GetPortsByProcessName("NGINX")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetProcessByPort(t *testing.T) {
	fakeSnapshot(t, sample(), nil)

	got, err := GetProcessByPort(53, model.UDP)
	require.NoError(t, err)
	assert.Equal(t, dnsmasq, got)

	_, err = GetProcessByPort(443, model.UDP)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestErrorsPassThrough(t *testing.T) {
	srcErr := model.NewSourceError("/proc/net/tcp", errors.New("permission denied"))
	fakeSnapshot(t, nil, srcErr)

	_, err := GetAll()
	assert.Same(t, srcErr, err)
	_, err = GetProcessesByPort(80)
	assert.ErrorIs(t, err, model.ErrSourceUnavailable)
	_, err = GetPortsByPID(1)
	assert.ErrorIs(t, err, model.ErrSourceUnavailable)
	_, err = GetPortsByProcessName("x")
	assert.ErrorIs(t, err, model.ErrSourceUnavailable)
	_, err = GetProcessByPort(80, model.TCP)
	assert.ErrorIs(t, err, model.ErrSourceUnavailable)
}

func TestProjectionsAgreeWithGetAll(t *testing.T) {
	fakeSnapshot(t, sample(), nil)

	all, err := GetAll()
	require.NoError(t, err)

	for _, l := range all {
		ports, err := GetPortsByPID(l.Process.PID)
		require.NoError(t, err)
		assert.Contains(t, ports, l.Socket.Port())

		ports, err = GetPortsByProcessName(l.Process.Name)
		require.NoError(t, err)
		assert.Contains(t, ports, l.Socket.Port())

		procs, err := GetProcessesByPort(l.Socket.Port())
		require.NoError(t, err)
		assert.Contains(t, procs, l.Process)

		p, err := GetProcessByPort(l.Socket.Port(), l.Protocol)
		require.NoError(t, err)
		assert.Contains(t, procs, p)
	}
}
