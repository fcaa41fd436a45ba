// Package target parses the command-line selectors that pick which part of a
// listener snapshot to report.
package target

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pranshuparmar/listeners/pkg/model"
)

type Kind int

const (
	All Kind = iota
	Port
	PID
	Name
)

func (k Kind) String() string {
	switch k {
	case All:
		return "all"
	case Port:
		return "port"
	case PID:
		return "pid"
	case Name:
		return "name"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Target selects listeners by port, pid or process name. For port targets
// Protocol is meaningful only when HasProtocol is set.
type Target struct {
	Kind        Kind
	Port        uint16
	Protocol    model.Protocol
	HasProtocol bool
	PID         uint32
	Name        string
}

// ParsePort accepts "8080", ":8080", "8080/tcp" and "8080/udp".
func ParsePort(s string) (Target, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), ":")
	portStr, protoStr, hasProto := strings.Cut(raw, "/")

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return Target{}, fmt.Errorf("invalid port %q: must be 0-65535", s)
	}

	t := Target{Kind: Port, Port: uint16(port)}
	if hasProto {
		if t.Protocol, err = model.ParseProtocol(protoStr); err != nil {
			return Target{}, err
		}
		t.HasProtocol = true
	}
	return t, nil
}

// WithProtocol sets the protocol of a port target from a flag value. An
// empty value leaves the target unchanged.
func (t Target) WithProtocol(s string) (Target, error) {
	if s == "" {
		return t, nil
	}
	proto, err := model.ParseProtocol(s)
	if err != nil {
		return Target{}, err
	}
	if t.HasProtocol && t.Protocol != proto {
		return Target{}, fmt.Errorf("conflicting protocols %s and %s", t.Protocol, proto)
	}
	t.Protocol, t.HasProtocol = proto, true
	return t, nil
}

// ParsePID accepts a positive decimal pid.
func ParsePID(s string) (Target, error) {
	pid, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil || pid == 0 {
		return Target{}, fmt.Errorf("invalid pid %q", s)
	}
	return Target{Kind: PID, PID: uint32(pid)}, nil
}

// ParseName accepts an exact, case-sensitive process name.
func ParseName(s string) (Target, error) {
	if s == "" {
		return Target{}, fmt.Errorf("process name must not be empty")
	}
	return Target{Kind: Name, Name: s}, nil
}

func (t Target) String() string {
	switch t.Kind {
	case Port:
		if t.HasProtocol {
			return fmt.Sprintf("port %d/%s", t.Port, strings.ToLower(t.Protocol.String()))
		}
		return fmt.Sprintf("port %d", t.Port)
	case PID:
		return fmt.Sprintf("pid %d", t.PID)
	case Name:
		return fmt.Sprintf("name %q", t.Name)
	}
	return "all listeners"
}
