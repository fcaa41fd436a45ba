package proc

import (
	"net/netip"
	"slices"

	"github.com/pranshuparmar/listeners/pkg/model"
)

// keyKind tells which OS object a socket entry is correlated through.
type keyKind uint8

const (
	keyPID    keyKind = iota // the OS reported the owning pid directly
	keyInode                 // Linux socket inode
	keyKVAddr                // BSD kernel address of the socket
)

type correlationKey struct {
	kind  keyKind
	value uint64
}

func pidKey(pid uint32) correlationKey { return correlationKey{kind: keyPID, value: uint64(pid)} }
func inodeKey(inode uint64) correlationKey { return correlationKey{kind: keyInode, value: inode} }
func kvaddrKey(kvaddr uint64) correlationKey { return correlationKey{kind: keyKVAddr, value: kvaddr} }

// socketEntry is one row read from an OS socket table.
type socketEntry struct {
	endpoint model.Endpoint
	key      correlationKey
}

// owners maps inode or kvaddr keys to the pid holding them. pid keys
// resolve to themselves.
type owners map[correlationKey]uint32

func (o owners) add(k correlationKey, pid uint32) {
	if _, ok := o[k]; !ok {
		o[k] = pid
	}
}

func (o owners) lookup(k correlationKey) (uint32, bool) {
	if k.kind == keyPID {
		return uint32(k.value), k.value != 0
	}
	pid, ok := o[k]
	return pid, ok && pid != 0
}

// aggregate joins entries to their owners and resolves each pid once.
// Entries without an owner, and owners whose process cannot be resolved,
// are dropped.
func aggregate(entries []socketEntry, o owners, cache *processCache) []model.Listener {
	set := make(listenerSet)
	for _, e := range entries {
		pid, ok := o.lookup(e.key)
		if !ok {
			continue
		}
		p, ok := cache.lookup(pid)
		if !ok {
			continue
		}
		set.add(p, e.endpoint)
	}
	return set.sorted()
}

// firstOwner returns the process holding the first entry bound to port
// with protocol proto.
func firstOwner(entries []socketEntry, port uint16, proto model.Protocol, o owners, cache *processCache) (model.Process, error) {
	for _, e := range entries {
		if e.endpoint.Protocol != proto || e.endpoint.Socket.Port() != port {
			continue
		}
		pid, ok := o.lookup(e.key)
		if !ok {
			continue
		}
		if p, ok := cache.lookup(pid); ok {
			return p, nil
		}
	}
	return model.Process{}, model.ErrNotFound
}

type listenerSet map[model.Listener]struct{}

func (s listenerSet) add(p model.Process, e model.Endpoint) {
	s[model.Listener{Process: p, Socket: e.Socket, Protocol: e.Protocol}] = struct{}{}
}

func (s listenerSet) sorted() []model.Listener {
	out := make([]model.Listener, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	slices.SortFunc(out, model.Listener.Compare)
	return out
}

// ipFromBytes builds an address from raw network-order bytes. v6 selects a
// 16-byte address; otherwise the first four bytes are used.
func ipFromBytes(v6 bool, raw []byte) (netip.Addr, bool) {
	if v6 {
		if len(raw) < 16 {
			return netip.Addr{}, false
		}
		return netip.AddrFrom16([16]byte(raw[:16])), true
	}
	if len(raw) < 4 {
		return netip.Addr{}, false
	}
	return netip.AddrFrom4([4]byte(raw[:4])), true
}
