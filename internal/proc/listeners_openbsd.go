//go:build openbsd && cgo

package proc

/*
#include <stdlib.h>
#include "listeners_bsd.h"
*/
import "C"

import (
	"os/exec"
	"path/filepath"
	"unsafe"

	"github.com/pranshuparmar/listeners/pkg/model"
)

// bsdProc is one entry of the kernel process table.
type bsdProc struct {
	pid  uint32
	name string
}

// ListListeners returns every process bound to a TCP or UDP socket.
// OpenBSD reports sockets per process, so no correlation step is needed.
func ListListeners() ([]model.Listener, error) {
	procs, err := kernelProcs()
	if err != nil {
		return nil, err
	}

	set := make(listenerSet)
	for _, p := range procs {
		entries := pidSockets(p.pid)
		if len(entries) == 0 {
			continue
		}
		proc := model.Process{PID: p.pid, Name: p.name, Path: processPath(p)}
		for _, e := range entries {
			set.add(proc, e.endpoint)
		}
	}
	return set.sorted(), nil
}

// FindProcess returns a process bound to port with protocol proto.
func FindProcess(port uint16, proto model.Protocol) (model.Process, error) {
	procs, err := kernelProcs()
	if err != nil {
		return model.Process{}, err
	}

	for _, p := range procs {
		for _, e := range pidSockets(p.pid) {
			if e.endpoint.Protocol == proto && e.endpoint.Socket.Port() == port {
				return model.Process{PID: p.pid, Name: p.name, Path: processPath(p)}, nil
			}
		}
	}
	return model.Process{}, model.ErrNotFound
}

func kernelProcs() ([]bsdProc, error) {
	var list *C.lsn_proc
	var n C.size_t
	if rc, err := C.lsn_procs(&list, &n); rc != 0 {
		return nil, model.NewSourceError("kern.proc.all", err)
	}
	defer C.free(unsafe.Pointer(list))
	if list == nil {
		return nil, nil
	}

	var procs []bsdProc
	seen := make(map[uint32]bool)
	for _, p := range unsafe.Slice(list, int(n)) {
		// a pid can appear more than once in the table
		pid := uint32(p.pid)
		name := C.GoString(&p.name[0])
		if p.pid <= 0 || name == "" || seen[pid] {
			continue
		}
		seen[pid] = true
		procs = append(procs, bsdProc{pid: pid, name: name})
	}
	return procs, nil
}

// pidSockets lists the TCP/UDP sockets held by pid. A pid that cannot be
// inspected holds none.
func pidSockets(pid uint32) []socketEntry {
	var list *C.lsn_socket
	var n C.size_t
	if rc, _ := C.lsn_pid_sockets(C.pid_t(pid), &list, &n); rc != 0 {
		return nil
	}
	return takeSockets(list, n, func(*C.lsn_socket) correlationKey { return pidKey(pid) })
}

// processPath has no kernel source on OpenBSD. argv[0] is used when it is
// absolute, otherwise the name is looked up in PATH.
func processPath(p bsdProc) string {
	if argv0, ok := takeString(C.lsn_proc_argv0(C.pid_t(p.pid))); ok && filepath.IsAbs(argv0) {
		return argv0
	}
	if path, err := exec.LookPath(p.name); err == nil {
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	}
	return ""
}
