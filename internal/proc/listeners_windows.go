//go:build windows

package proc

import "github.com/pranshuparmar/listeners/pkg/model"

// ListListeners returns every process bound to a TCP or UDP socket.
func ListListeners() ([]model.Listener, error) {
	entries, err := readOwnerTables(allTables)
	if err != nil {
		return nil, err
	}
	resolve, err := newWindowsResolver()
	if err != nil {
		return nil, err
	}
	return aggregate(entries, nil, newProcessCache(resolve)), nil
}

// FindProcess returns a process bound to port with protocol proto.
func FindProcess(port uint16, proto model.Protocol) (model.Process, error) {
	entries, err := readOwnerTables(tablesFor(proto))
	if err != nil {
		return model.Process{}, err
	}
	resolve, err := newWindowsResolver()
	if err != nil {
		return model.Process{}, err
	}
	return firstOwner(entries, port, proto, nil, newProcessCache(resolve))
}
