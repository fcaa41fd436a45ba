//go:build darwin && cgo

package proc

/*
#include <libproc.h>
#include <sys/proc_info.h>
#include <sys/socket.h>
#include <netinet/in.h>
#include <arpa/inet.h>
#include <stdint.h>
#include <string.h>

typedef struct {
	int      family;
	int      protocol;
	uint16_t port;
	uint8_t  addr[16];
} lsn_inet;

// lsn_socket_endpoint fills out with the local endpoint of an IPv4 or IPv6
// TCP/UDP socket fd. Returns 0 on success, -1 for anything else.
static int lsn_socket_endpoint(int pid, int fd, lsn_inet *out) {
	struct socket_fdinfo si;
	int n = proc_pidfdinfo(pid, fd, PROC_PIDFDSOCKETINFO, &si, sizeof(si));
	if (n < (int)sizeof(si)) {
		return -1;
	}

	int family = si.psi.soi_family;
	int protocol = si.psi.soi_protocol;
	if (family != AF_INET && family != AF_INET6) {
		return -1;
	}

	struct in_sockinfo *insi;
	if (protocol == IPPROTO_TCP && si.psi.soi_kind == SOCKINFO_TCP) {
		insi = &si.psi.soi_proto.pri_tcp.tcpsi_ini;
	} else if (protocol == IPPROTO_UDP && si.psi.soi_kind == SOCKINFO_IN) {
		insi = &si.psi.soi_proto.pri_in;
	} else {
		return -1;
	}

	out->family = family;
	out->protocol = protocol;
	out->port = ntohs((uint16_t)insi->insi_lport);
	memset(out->addr, 0, sizeof(out->addr));
	if (family == AF_INET) {
		memcpy(out->addr, &insi->insi_laddr.ina_46.i46a_addr4, 4);
	} else {
		memcpy(out->addr, &insi->insi_laddr.ina_6, 16);
	}
	return 0;
}
*/
import "C"

import (
	"errors"
	"fmt"
	"net/netip"
	"unsafe"

	"github.com/pranshuparmar/listeners/pkg/model"
)

// listPIDs returns every pid known to the kernel.
func listPIDs() ([]uint32, error) {
	n := C.proc_listpids(C.PROC_ALL_PIDS, 0, nil, 0)
	if n <= 0 {
		return nil, model.NewSourceError("proc_listpids", errors.New("cannot size pid list"))
	}

	// headroom for processes started between the two calls
	buf := make([]C.int, int(n)/C.sizeof_int+64)
	n = C.proc_listpids(C.PROC_ALL_PIDS, 0, unsafe.Pointer(&buf[0]), C.int(len(buf)*C.sizeof_int))
	if n <= 0 {
		return nil, model.NewSourceError("proc_listpids", errors.New("cannot read pid list"))
	}

	count := int(n) / C.sizeof_int
	pids := make([]uint32, 0, count)
	for _, pid := range buf[:count] {
		if pid > 0 {
			pids = append(pids, uint32(pid))
		}
	}
	return pids, nil
}

// socketFDs lists the socket descriptors of pid.
func socketFDs(pid uint32) ([]C.int, error) {
	size := C.proc_pidinfo(C.int(pid), C.PROC_PIDLISTFDS, 0, nil, 0)
	if size <= 0 {
		return nil, fmt.Errorf("pid %d: cannot size fd list", pid)
	}

	fds := make([]C.struct_proc_fdinfo, int(size)/C.sizeof_struct_proc_fdinfo)
	if len(fds) == 0 {
		return nil, nil
	}
	size = C.proc_pidinfo(C.int(pid), C.PROC_PIDLISTFDS, 0, unsafe.Pointer(&fds[0]), C.int(len(fds)*C.sizeof_struct_proc_fdinfo))
	if size <= 0 {
		return nil, fmt.Errorf("pid %d: cannot read fd list", pid)
	}

	var out []C.int
	for _, fd := range fds[:int(size)/C.sizeof_struct_proc_fdinfo] {
		if fd.proc_fdtype == C.PROX_FDTYPE_SOCKET {
			out = append(out, fd.proc_fd)
		}
	}
	return out, nil
}

func socketEndpoint(pid uint32, fd C.int) (model.Endpoint, bool) {
	var in C.lsn_inet
	if C.lsn_socket_endpoint(C.int(pid), fd, &in) != 0 {
		return model.Endpoint{}, false
	}

	raw := C.GoBytes(unsafe.Pointer(&in.addr[0]), 16)
	addr, ok := ipFromBytes(in.family == C.AF_INET6, raw)
	if !ok {
		return model.Endpoint{}, false
	}

	proto := model.TCP
	if in.protocol == C.IPPROTO_UDP {
		proto = model.UDP
	}
	return model.Endpoint{Socket: netip.AddrPortFrom(addr, uint16(in.port)), Protocol: proto}, true
}

// readProcess resolves name with proc_name and path with proc_pidpath. A
// missing path leaves Path empty.
func readProcess(pid uint32) (model.Process, bool) {
	var name [2 * C.MAXCOMLEN]C.char
	if n := C.proc_name(C.int(pid), unsafe.Pointer(&name[0]), C.uint32_t(len(name))); n <= 0 {
		return model.Process{}, false
	}

	var path [C.PROC_PIDPATHINFO_MAXSIZE]C.char
	p := ""
	if n := C.proc_pidpath(C.int(pid), unsafe.Pointer(&path[0]), C.uint32_t(len(path))); n > 0 {
		p = C.GoStringN(&path[0], n)
	}
	return model.Process{PID: pid, Name: C.GoString(&name[0]), Path: p}, true
}
