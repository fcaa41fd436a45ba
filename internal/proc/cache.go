package proc

import "github.com/pranshuparmar/listeners/pkg/model"

// resolveFunc reads name and path for pid. ok is false when the process
// vanished or its name is unreadable.
type resolveFunc func(pid uint32) (p model.Process, ok bool)

type cacheEntry struct {
	proc model.Process
	ok   bool
}

// processCache memoizes resolveFunc for the duration of one call, failures
// included.
type processCache struct {
	resolve resolveFunc
	entries map[uint32]cacheEntry
}

func newProcessCache(resolve resolveFunc) *processCache {
	return &processCache{resolve: resolve, entries: make(map[uint32]cacheEntry)}
}

func (c *processCache) lookup(pid uint32) (model.Process, bool) {
	if e, ok := c.entries[pid]; ok {
		return e.proc, e.ok
	}
	p, ok := c.resolve(pid)
	if ok && p.Name == "" {
		ok = false
	}
	if ok {
		p.PID = pid
	}
	c.entries[pid] = cacheEntry{proc: p, ok: ok}
	return p, ok
}

// snapshotResolver resolves pids from one process-name snapshot. A snapshot
// failure is a SourceError for source; path failures leave Path empty.
func snapshotResolver(source string, snapshot func() (map[uint32]string, error), path func(pid uint32) string) (resolveFunc, error) {
	names, err := snapshot()
	if err != nil {
		return nil, model.NewSourceError(source, err)
	}
	return func(pid uint32) (model.Process, bool) {
		name := names[pid]
		if name == "" {
			return model.Process{}, false
		}
		return model.Process{PID: pid, Name: name, Path: path(pid)}, true
	}, nil
}
