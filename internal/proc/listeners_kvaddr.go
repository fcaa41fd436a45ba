//go:build (freebsd || netbsd) && cgo

package proc

/*
#include <stdlib.h>
#include "listeners_bsd.h"
*/
import "C"

import (
	"unsafe"

	"github.com/pranshuparmar/listeners/pkg/model"
)

// ListListeners returns every process bound to a TCP or UDP socket.
// Sockets are joined to their owners through the kernel address of the
// socket, as recorded in the system file table.
func ListListeners() ([]model.Listener, error) {
	var entries []socketEntry
	for _, proto := range []model.Protocol{model.TCP, model.UDP} {
		e, err := kernelSockets(proto)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e...)
	}

	o, err := socketOwners()
	if err != nil {
		return nil, err
	}
	return aggregate(entries, o, newProcessCache(readProcess)), nil
}

// FindProcess returns a process bound to port with protocol proto.
func FindProcess(port uint16, proto model.Protocol) (model.Process, error) {
	entries, err := kernelSockets(proto)
	if err != nil {
		return model.Process{}, err
	}

	onPort := entries[:0]
	for _, e := range entries {
		if e.endpoint.Socket.Port() == port {
			onPort = append(onPort, e)
		}
	}
	if len(onPort) == 0 {
		return model.Process{}, model.ErrNotFound
	}

	o, err := socketOwners()
	if err != nil {
		return model.Process{}, err
	}
	return firstOwner(onPort, port, proto, o, newProcessCache(readProcess))
}

func kvaddrOf(s *C.lsn_socket) correlationKey {
	return kvaddrKey(uint64(s.kvaddr))
}

// socketOwners maps socket kernel addresses to the pid holding them.
func socketOwners() (owners, error) {
	var list *C.lsn_file
	var n C.size_t
	if rc, err := C.lsn_socket_files(&list, &n); rc != 0 {
		return nil, model.NewSourceError("kern.file", err)
	}
	defer C.free(unsafe.Pointer(list))

	o := make(owners)
	if list == nil {
		return o, nil
	}
	for _, f := range unsafe.Slice(list, int(n)) {
		if f.kvaddr != 0 && f.pid > 0 {
			o.add(kvaddrKey(uint64(f.kvaddr)), uint32(f.pid))
		}
	}
	return o, nil
}
