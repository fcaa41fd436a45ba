//go:build netbsd && cgo

package proc

/*
#include <stdlib.h>
#include <sys/types.h>
#include "listeners_bsd.h"

int lsn_pcblist(const char *name, lsn_socket **list, size_t *n);
*/
import "C"

import (
	"unsafe"

	"github.com/pranshuparmar/listeners/pkg/model"
)

var pcblists = map[model.Protocol][]string{
	model.TCP: {"net.inet.tcp.pcblist", "net.inet6.tcp6.pcblist"},
	model.UDP: {"net.inet.udp.pcblist", "net.inet6.udp6.pcblist"},
}

// kernelSockets reads the IPv4 and IPv6 pcblists of proto.
func kernelSockets(proto model.Protocol) ([]socketEntry, error) {
	var entries []socketEntry
	for _, name := range pcblists[proto] {
		cname := C.CString(name)
		var list *C.lsn_socket
		var n C.size_t
		rc, err := C.lsn_pcblist(cname, &list, &n)
		C.free(unsafe.Pointer(cname))
		if rc != 0 {
			return nil, model.NewSourceError(name, err)
		}
		entries = append(entries, takeSockets(list, n, kvaddrOf)...)
	}
	return entries, nil
}

func readProcess(pid uint32) (model.Process, bool) {
	name, ok := takeString(C.lsn_proc_name(C.pid_t(pid)))
	if !ok {
		return model.Process{}, false
	}
	path, _ := takeString(C.lsn_proc_path(C.pid_t(pid)))
	return model.Process{PID: pid, Name: name, Path: path}, true
}
