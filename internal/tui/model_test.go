package tui

import (
	"errors"
	"net/netip"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranshuparmar/listeners/pkg/model"
)

type fakeSource struct {
	snapshots [][]model.Listener
	err       error
	calls     int
}

func (f *fakeSource) GetAll() ([]model.Listener, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	i := min(f.calls, len(f.snapshots)) - 1
	return f.snapshots[i], nil
}

func (f *fakeSource) GetProcessByPort(uint16, model.Protocol) (model.Process, error) {
	return model.Process{}, model.ErrNotFound
}

func (f *fakeSource) GetProcessesByPort(uint16) ([]model.Process, error) { return nil, nil }
func (f *fakeSource) GetPortsByPID(uint32) ([]uint16, error)            { return nil, nil }
func (f *fakeSource) GetPortsByProcessName(string) ([]uint16, error)    { return nil, nil }

var (
	sshd    = model.Process{PID: 22, Name: "sshd", Path: "/usr/sbin/sshd"}
	dnsmasq = model.Process{PID: 53, Name: "dnsmasq", Path: "/usr/sbin/dnsmasq"}
	nginx   = model.Process{PID: 80, Name: "nginx", Path: "/usr/sbin/nginx"}

	fixture = []model.Listener{
		{Process: sshd, Socket: netip.MustParseAddrPort("0.0.0.0:22"), Protocol: model.TCP},
		{Process: dnsmasq, Socket: netip.MustParseAddrPort("127.0.0.1:53"), Protocol: model.UDP},
		{Process: nginx, Socket: netip.MustParseAddrPort("[::]:443"), Protocol: model.TCP},
		{Process: nginx, Socket: netip.MustParseAddrPort("0.0.0.0:80"), Protocol: model.TCP},
	}
)

func update(t *testing.T, m MainModel, msg tea.Msg) (MainModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(MainModel)
	require.True(t, ok)
	return nm, cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T, src *fakeSource) MainModel {
	t.Helper()
	m := InitialModel("v1.0.0", src)
	m, _ = update(t, m, m.refreshListeners()())
	require.False(t, m.loading)
	return m
}

func pids(m MainModel) []string {
	var out []string
	for _, r := range m.table.Rows() {
		out = append(out, r[0]+"/"+r[4])
	}
	return out
}

func TestSnapshotLoadsSortedRows(t *testing.T) {
	src := &fakeSource{snapshots: [][]model.Listener{fixture}}
	m := loaded(t, src)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, []string{"22/22", "53/53", "80/80", "80/443"}, pids(m))
	assert.Equal(t, "PID ↑", m.table.Columns()[0].Title)
	assert.False(t, m.takenAt.IsZero())
}

func TestFilterNarrowsRows(t *testing.T) {
	m := loaded(t, &fakeSource{snapshots: [][]model.Listener{fixture}})

	m, _ = update(t, m, key("/"))
	require.True(t, m.input.Focused())
	for _, r := range "udp" {
		m, _ = update(t, m, key(string(r)))
	}
	assert.Equal(t, []string{"53/53"}, pids(m))

	// keys go to the filter while it has focus
	m, _ = update(t, m, key("q"))
	assert.False(t, m.quitting)
	assert.Empty(t, m.filtered)

	m, _ = update(t, m, key("esc"))
	assert.False(t, m.input.Focused())
	assert.Equal(t, "udpq", m.input.Value())
}

func TestSortKeysToggleDirection(t *testing.T) {
	m := loaded(t, &fakeSource{snapshots: [][]model.Listener{fixture}})

	m, _ = update(t, m, key("o"))
	assert.Equal(t, []string{"22/22", "53/53", "80/80", "80/443"}, pids(m))
	assert.Equal(t, "Port ↑", m.table.Columns()[sortPort].Title)
	assert.Equal(t, "PID", m.table.Columns()[sortPID].Title)

	m, _ = update(t, m, key("o"))
	assert.Equal(t, []string{"80/443", "80/80", "53/53", "22/22"}, pids(m))
	assert.Equal(t, "Port ↓", m.table.Columns()[sortPort].Title)

	m, _ = update(t, m, key("n"))
	assert.Equal(t, []string{"53/53", "80/80", "80/443", "22/22"}, pids(m))
}

func TestManualRefreshKeepsSelection(t *testing.T) {
	ephemeral := model.Listener{
		Process:  model.Process{PID: 7, Name: "avahi"},
		Socket:   netip.MustParseAddrPort("0.0.0.0:5353"),
		Protocol: model.UDP,
	}
	second := append([]model.Listener{ephemeral}, fixture...)
	src := &fakeSource{snapshots: [][]model.Listener{fixture, second}}
	m := loaded(t, src)

	m, _ = update(t, m, key("down"))
	m, _ = update(t, m, key("down"))
	sel, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, nginx, sel.Process)

	m, cmd := update(t, m, key("r"))
	require.NotNil(t, cmd)
	assert.True(t, m.loading)
	m, _ = update(t, m, cmd())

	assert.Equal(t, 2, src.calls)
	assert.Len(t, m.filtered, 5)
	sel, ok = m.selected()
	require.True(t, ok)
	assert.Equal(t, fixture[3], sel)
}

func TestSnapshotErrorShownInStatus(t *testing.T) {
	src := &fakeSource{err: model.NewSourceError("/proc", errors.New("permission denied"))}
	m := InitialModel("", src)
	m, _ = update(t, m, m.refreshListeners()())

	assert.False(t, m.loading)
	assert.Equal(t, "Error: /proc: permission denied", m.statusMsg)
	assert.Contains(t, m.View(), "permission denied")

	m, _ = update(t, m, key("down"))
	assert.Empty(t, m.statusMsg)
}

func TestTerminateNeedsConfirmation(t *testing.T) {
	m := loaded(t, &fakeSource{snapshots: [][]model.Listener{fixture}})

	m, cmd := update(t, m, key("x"))
	assert.Nil(t, cmd)
	assert.Equal(t, uint32(22), m.pendingTerm)
	assert.Contains(t, m.View(), "Terminate PID 22? (y/n)")

	m, cmd = update(t, m, key("n"))
	assert.Nil(t, cmd)
	assert.Zero(t, m.pendingTerm)
	assert.Equal(t, "Cancelled", m.statusMsg)

	m, _ = update(t, m, key("x"))
	m, cmd = update(t, m, key("y"))
	assert.NotNil(t, cmd)
	assert.Zero(t, m.pendingTerm)
}

func TestTerminateResult(t *testing.T) {
	src := &fakeSource{snapshots: [][]model.Listener{fixture}}
	m := loaded(t, src)

	m, cmd := update(t, m, termResultMsg{pid: 22, err: errors.New("operation not permitted")})
	assert.Nil(t, cmd)
	assert.Equal(t, "Error: operation not permitted", m.statusMsg)

	m, cmd = update(t, m, termResultMsg{pid: 22})
	require.NotNil(t, cmd)
	assert.Equal(t, "Sent termination request to PID 22", m.statusMsg)
	assert.True(t, m.loading)
}

func TestWindowSizeAndPathTruncation(t *testing.T) {
	long := model.Listener{
		Process:  model.Process{PID: 9, Name: "svc", Path: "/opt/" + strings.Repeat("x", 100)},
		Socket:   netip.MustParseAddrPort("0.0.0.0:9000"),
		Protocol: model.TCP,
	}
	m := loaded(t, &fakeSource{snapshots: [][]model.Listener{{long}}})

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	pathWidth := 120 - 6 - fixedColumnsWidth
	assert.Equal(t, pathWidth, m.table.Columns()[sortPath].Width)
	assert.Equal(t, 30-11, m.table.Height())

	cell := m.table.Rows()[0][sortPath]
	assert.True(t, strings.HasSuffix(cell, "…"))
	assert.LessOrEqual(t, len([]rune(cell)), pathWidth)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 8})
	assert.Equal(t, 5, m.table.Height())
}

func TestHeaderClickSorts(t *testing.T) {
	m := loaded(t, &fakeSource{snapshots: [][]model.Listener{fixture}})

	m, _ = update(t, m, tea.MouseMsg{X: 2, Y: tableHeaderRow, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.True(t, m.sortDesc)
	assert.Equal(t, []string{"80/443", "80/80", "53/53", "22/22"}, pids(m))

	m, _ = update(t, m, tea.MouseMsg{X: 2, Y: inputRow, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.True(t, m.input.Focused())
}

func TestQuit(t *testing.T) {
	m := loaded(t, &fakeSource{snapshots: [][]model.Listener{fixture}})
	m, cmd := update(t, m, key("q"))
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestNoPeriodicRefresh(t *testing.T) {
	src := &fakeSource{snapshots: [][]model.Listener{fixture}}
	m := loaded(t, src)
	m, cmd := update(t, m, time.Now())
	assert.Nil(t, cmd)
	assert.Equal(t, 1, src.calls)
	assert.Len(t, m.filtered, len(fixture))
}
