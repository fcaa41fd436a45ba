// Package listeners reports which processes are bound to which local IP
// sockets.
//
// Every call takes a fresh snapshot of the host. Nothing is cached between
// calls, and results reflect the moment they were taken. Supported systems
// are Linux, macOS, Windows, FreeBSD, NetBSD and OpenBSD; elsewhere every
// call fails with model.ErrUnsupportedPlatform.
package listeners

import (
	"slices"

	"github.com/pranshuparmar/listeners/internal/proc"
	"github.com/pranshuparmar/listeners/pkg/model"
)

// Overridden in tests.
var (
	listAll     = proc.ListListeners
	findProcess = proc.FindProcess
)

// GetAll returns every (process, socket, protocol) binding on the host,
// deduplicated and sorted by pid, protocol, address and port. Sockets in any
// TCP state are included.
func GetAll() ([]model.Listener, error) {
	return listAll()
}

// GetProcessByPort returns a process bound to port with protocol proto.
// When several processes share the port, which one is returned is
// unspecified. It fails with model.ErrNotFound when nothing is bound.
func GetProcessByPort(port uint16, proto model.Protocol) (model.Process, error) {
	return findProcess(port, proto)
}

// GetProcessesByPort returns the distinct processes bound to port under
// either protocol.
func GetProcessesByPort(port uint16) ([]model.Process, error) {
	all, err := listAll()
	if err != nil {
		return nil, err
	}

	seen := make(map[model.Process]bool)
	var out []model.Process
	for _, l := range all {
		if l.Socket.Port() != port || seen[l.Process] {
			continue
		}
		seen[l.Process] = true
		out = append(out, l.Process)
	}
	return out, nil
}

// GetPortsByPID returns the distinct ports bound by pid, ascending.
func GetPortsByPID(pid uint32) ([]uint16, error) {
	return portsWhere(func(p model.Process) bool { return p.PID == pid })
}

// GetPortsByProcessName returns the distinct ports bound by processes
// named name, ascending.
func GetPortsByProcessName(name string) ([]uint16, error) {
	return portsWhere(func(p model.Process) bool { return p.Name == name })
}

func portsWhere(match func(model.Process) bool) ([]uint16, error) {
	all, err := listAll()
	if err != nil {
		return nil, err
	}

	var ports []uint16
	for _, l := range all {
		if match(l.Process) {
			ports = append(ports, l.Socket.Port())
		}
	}
	slices.Sort(ports)
	return slices.Compact(ports), nil
}
