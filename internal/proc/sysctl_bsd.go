//go:build (freebsd || netbsd || openbsd) && cgo

package proc

/*
#include <stdlib.h>
#include <sys/socket.h>
#include <netinet/in.h>
#include "listeners_bsd.h"
*/
import "C"

import (
	"net/netip"
	"unsafe"

	"github.com/pranshuparmar/listeners/pkg/model"
)

// takeSockets converts a C socket list and frees it. key picks the
// correlation key for each row.
func takeSockets(list *C.lsn_socket, n C.size_t, key func(s *C.lsn_socket) correlationKey) []socketEntry {
	defer C.free(unsafe.Pointer(list))
	if list == nil || n == 0 {
		return nil
	}

	rows := unsafe.Slice(list, int(n))
	entries := make([]socketEntry, 0, len(rows))
	for i := range rows {
		e, ok := bsdEndpoint(&rows[i])
		if !ok {
			continue
		}
		entries = append(entries, socketEntry{endpoint: e, key: key(&rows[i])})
	}
	return entries
}

func bsdEndpoint(s *C.lsn_socket) (model.Endpoint, bool) {
	var proto model.Protocol
	switch s.protocol {
	case C.IPPROTO_TCP:
		proto = model.TCP
	case C.IPPROTO_UDP:
		proto = model.UDP
	default:
		return model.Endpoint{}, false
	}

	var v6 bool
	switch s.family {
	case C.AF_INET:
	case C.AF_INET6:
		v6 = true
	default:
		return model.Endpoint{}, false
	}

	raw := C.GoBytes(unsafe.Pointer(&s.addr[0]), 16)
	addr, ok := ipFromBytes(v6, raw)
	if !ok {
		return model.Endpoint{}, false
	}
	return model.Endpoint{Socket: netip.AddrPortFrom(addr, uint16(s.port)), Protocol: proto}, true
}

// takeString copies and frees a strdup'd C string. A nil pointer reports
// false.
func takeString(p *C.char) (string, bool) {
	if p == nil {
		return "", false
	}
	defer C.free(unsafe.Pointer(p))
	return C.GoString(p), true
}
