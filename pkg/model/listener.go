package model

import (
	"fmt"
	"net/netip"
	"strings"
)

// Protocol is the transport protocol of a bound socket.
type Protocol uint8

const (
	TCP Protocol = iota
	UDP
)

func (p Protocol) String() string {
	switch p {
	case TCP:
		return "TCP"
	case UDP:
		return "UDP"
	default:
		return fmt.Sprintf("Protocol(%d)", uint8(p))
	}
}

// ParseProtocol accepts "tcp" or "udp" in any case.
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TCP":
		return TCP, nil
	case "UDP":
		return UDP, nil
	}
	return 0, fmt.Errorf("unknown protocol %q (want tcp or udp)", s)
}

func (p Protocol) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Protocol) UnmarshalText(b []byte) error {
	v, err := ParseProtocol(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Process identifies the owner of a socket.
type Process struct {
	PID  uint32 `json:"pid"`
	Name string `json:"name"`
	Path string `json:"path"`
}

func (p Process) String() string {
	return fmt.Sprintf("PID: %-10d Process name: %s", p.PID, p.Name)
}

// Endpoint is a local socket address paired with its protocol, as reported
// by the OS before ownership is known.
type Endpoint struct {
	Socket   netip.AddrPort
	Protocol Protocol
}

// Listener is one process bound to one local socket.
type Listener struct {
	Process  Process
	Socket   netip.AddrPort
	Protocol Protocol
}

func (l Listener) String() string {
	return fmt.Sprintf("%-55s Socket: %-30s Protocol: %s", l.Process.String(), l.Socket.String(), l.Protocol)
}

func (l Listener) Endpoint() Endpoint {
	return Endpoint{Socket: l.Socket, Protocol: l.Protocol}
}

// Compare orders listeners by pid, protocol, address and port.
func (l Listener) Compare(o Listener) int {
	switch {
	case l.Process.PID != o.Process.PID:
		if l.Process.PID < o.Process.PID {
			return -1
		}
		return 1
	case l.Protocol != o.Protocol:
		if l.Protocol < o.Protocol {
			return -1
		}
		return 1
	}
	if c := l.Socket.Compare(o.Socket); c != 0 {
		return c
	}
	if c := strings.Compare(l.Process.Name, o.Process.Name); c != 0 {
		return c
	}
	return strings.Compare(l.Process.Path, o.Process.Path)
}
