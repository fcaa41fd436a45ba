//go:build freebsd && cgo

package proc

/*
#include <stdlib.h>
#include <sys/types.h>
#include <netinet/in.h>
#include "listeners_bsd.h"

int lsn_pcblist(int protocol, lsn_socket **list, size_t *n);
*/
import "C"

import (
	"bytes"

	"golang.org/x/sys/unix"

	"github.com/pranshuparmar/listeners/pkg/model"
)

// kernelSockets reads the pcblist of proto. One list carries both IPv4
// and IPv6 sockets.
func kernelSockets(proto model.Protocol) ([]socketEntry, error) {
	cproto, source := C.int(C.IPPROTO_TCP), "net.inet.tcp.pcblist"
	if proto == model.UDP {
		cproto, source = C.int(C.IPPROTO_UDP), "net.inet.udp.pcblist"
	}

	var list *C.lsn_socket
	var n C.size_t
	if rc, err := C.lsn_pcblist(cproto, &list, &n); rc != 0 {
		return nil, model.NewSourceError(source, err)
	}
	return takeSockets(list, n, kvaddrOf), nil
}

func readProcess(pid uint32) (model.Process, bool) {
	name, ok := takeString(C.lsn_proc_name(C.pid_t(pid)))
	if !ok {
		return model.Process{}, false
	}

	path := ""
	if b, err := unix.SysctlRaw("kern.proc.pathname", int(pid)); err == nil {
		path = string(bytes.TrimRight(b, "\x00"))
	}
	return model.Process{PID: pid, Name: name, Path: path}, true
}
