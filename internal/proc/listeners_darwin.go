//go:build darwin && cgo

package proc

import "github.com/pranshuparmar/listeners/pkg/model"

// ListListeners returns every process bound to a TCP or UDP socket.
// Processes whose descriptors cannot be inspected are skipped.
func ListListeners() ([]model.Listener, error) {
	pids, err := listPIDs()
	if err != nil {
		return nil, err
	}

	var entries []socketEntry
	for _, pid := range pids {
		entries = append(entries, pidSockets(pid)...)
	}
	return aggregate(entries, nil, newProcessCache(readProcess)), nil
}

// FindProcess returns a process bound to port with protocol proto.
func FindProcess(port uint16, proto model.Protocol) (model.Process, error) {
	pids, err := listPIDs()
	if err != nil {
		return model.Process{}, err
	}

	cache := newProcessCache(readProcess)
	for _, pid := range pids {
		if p, err := firstOwner(pidSockets(pid), port, proto, nil, cache); err == nil {
			return p, nil
		}
	}
	return model.Process{}, model.ErrNotFound
}

func pidSockets(pid uint32) []socketEntry {
	fds, err := socketFDs(pid)
	if err != nil {
		return nil
	}

	var entries []socketEntry
	for _, fd := range fds {
		if e, ok := socketEndpoint(pid, fd); ok {
			entries = append(entries, socketEntry{endpoint: e, key: pidKey(pid)})
		}
	}
	return entries
}
