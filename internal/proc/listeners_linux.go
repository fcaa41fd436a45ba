//go:build linux

package proc

import (
	"slices"

	"github.com/pranshuparmar/listeners/pkg/model"
)

// ListListeners returns every process bound to a TCP or UDP socket.
func ListListeners() ([]model.Listener, error) {
	return hostProc.listListeners()
}

// FindProcess returns a process bound to port with protocol proto.
func FindProcess(port uint16, proto model.Protocol) (model.Process, error) {
	return hostProc.findProcess(port, proto)
}

func (p procfs) listListeners() ([]model.Listener, error) {
	entries, err := p.readTables(netTables)
	if err != nil {
		return nil, err
	}

	pids, err := p.pids()
	if err != nil {
		return nil, err
	}

	o := make(owners)
	for _, pid := range pids {
		for _, inode := range p.socketInodes(pid) {
			o.add(inodeKey(inode), pid)
		}
	}

	return aggregate(entries, o, newProcessCache(p.readProcess)), nil
}

func (p procfs) findProcess(port uint16, proto model.Protocol) (model.Process, error) {
	entries, err := p.readTables(tablesFor(proto))
	if err != nil {
		return model.Process{}, err
	}

	var wanted []uint64
	for _, e := range entries {
		if e.endpoint.Socket.Port() == port {
			wanted = append(wanted, e.key.value)
		}
	}
	if len(wanted) == 0 {
		return model.Process{}, model.ErrNotFound
	}

	pids, err := p.pids()
	if err != nil {
		return model.Process{}, err
	}

	for _, pid := range pids {
		for _, inode := range p.socketInodes(pid) {
			if !slices.Contains(wanted, inode) {
				continue
			}
			if proc, ok := p.readProcess(pid); ok {
				return proc, nil
			}
			break
		}
	}
	return model.Process{}, model.ErrNotFound
}

func (p procfs) readTables(tables []netTable) ([]socketEntry, error) {
	var entries []socketEntry
	for _, t := range tables {
		e, err := p.readTable(t)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e...)
	}
	return entries, nil
}
