// Package pipeline evaluates a target against one listener snapshot.
package pipeline

import (
	"strconv"
	"strings"

	"github.com/pranshuparmar/listeners/internal/target"
	"github.com/pranshuparmar/listeners/pkg/listeners"
	"github.com/pranshuparmar/listeners/pkg/model"
)

// Source is the listener API consumed by the CLI and the browser.
type Source interface {
	GetAll() ([]model.Listener, error)
	GetProcessByPort(port uint16, proto model.Protocol) (model.Process, error)
	GetProcessesByPort(port uint16) ([]model.Process, error)
	GetPortsByPID(pid uint32) ([]uint16, error)
	GetPortsByProcessName(name string) ([]uint16, error)
}

// Host reads the local machine.
type Host struct{}

func (Host) GetAll() ([]model.Listener, error) { return listeners.GetAll() }

func (Host) GetProcessByPort(port uint16, proto model.Protocol) (model.Process, error) {
	return listeners.GetProcessByPort(port, proto)
}

func (Host) GetProcessesByPort(port uint16) ([]model.Process, error) {
	return listeners.GetProcessesByPort(port)
}

func (Host) GetPortsByPID(pid uint32) ([]uint16, error) { return listeners.GetPortsByPID(pid) }

func (Host) GetPortsByProcessName(name string) ([]uint16, error) {
	return listeners.GetPortsByProcessName(name)
}

// Result holds whichever projection the target asked for. Exactly one of
// the slices is set.
type Result struct {
	Target    target.Target
	Listeners []model.Listener
	Processes []model.Process
	Ports     []uint16
}

// Run evaluates t against src.
//
//	all          -> Listeners
//	port/proto   -> Processes (one entry)
//	port         -> Processes (every owner)
//	pid, name    -> Ports
func Run(src Source, t target.Target) (Result, error) {
	res := Result{Target: t}
	var err error

	switch t.Kind {
	case target.Port:
		if t.HasProtocol {
			var p model.Process
			if p, err = src.GetProcessByPort(t.Port, t.Protocol); err == nil {
				res.Processes = []model.Process{p}
			}
		} else {
			res.Processes, err = src.GetProcessesByPort(t.Port)
		}
	case target.PID:
		res.Ports, err = src.GetPortsByPID(t.PID)
	case target.Name:
		res.Ports, err = src.GetPortsByProcessName(t.Name)
	default:
		res.Listeners, err = src.GetAll()
	}
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// Filter keeps listeners whose pid, name, path, socket or protocol contain
// term, ignoring case. An empty term keeps everything.
func Filter(ls []model.Listener, term string) []model.Listener {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return ls
	}

	var out []model.Listener
	for _, l := range ls {
		if Matches(l, term) {
			out = append(out, l)
		}
	}
	return out
}

// Matches reports whether l contains the lower-cased term.
func Matches(l model.Listener, term string) bool {
	fields := []string{
		strconv.FormatUint(uint64(l.Process.PID), 10),
		strings.ToLower(l.Process.Name),
		strings.ToLower(l.Process.Path),
		strings.ToLower(l.Socket.String()),
		strings.ToLower(l.Protocol.String()),
	}
	for _, f := range fields {
		if strings.Contains(f, term) {
			return true
		}
	}
	return false
}
