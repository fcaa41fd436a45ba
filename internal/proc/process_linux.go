//go:build linux

package proc

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/pranshuparmar/listeners/pkg/model"
)

// procfs reads process and socket state from a procfs mount.
type procfs struct {
	root string
}

var hostProc = procfs{root: "/proc"}

// pids lists numeric entries of the procfs root in ascending order.
func (p procfs) pids() ([]uint32, error) {
	entries, err := os.ReadDir(p.root)
	if err != nil {
		return nil, model.NewSourceError(p.root, err)
	}

	pids := make([]uint32, 0, len(entries))
	for _, e := range entries {
		pid, err := strconv.ParseUint(e.Name(), 10, 32)
		if err != nil || pid == 0 {
			continue
		}
		pids = append(pids, uint32(pid))
	}
	slices.Sort(pids)
	return pids, nil
}

// socketInodes returns the inodes of every socket fd held by pid. A pid
// that vanished or whose fd table is unreadable holds none.
func (p procfs) socketInodes(pid uint32) []uint64 {
	fdPath := filepath.Join(p.root, strconv.FormatUint(uint64(pid), 10), "fd")
	fds, err := os.ReadDir(fdPath)
	if err != nil {
		return nil
	}

	var inodes []uint64
	for _, fd := range fds {
		link, err := os.Readlink(filepath.Join(fdPath, fd.Name()))
		if err != nil {
			continue
		}
		if inode, ok := parseSocketLink(link); ok {
			inodes = append(inodes, inode)
		}
	}
	return inodes
}

func parseSocketLink(link string) (uint64, bool) {
	rest, ok := strings.CutPrefix(link, "socket:[")
	if !ok {
		return 0, false
	}
	rest, ok = strings.CutSuffix(rest, "]")
	if !ok {
		return 0, false
	}
	inode, err := strconv.ParseUint(rest, 10, 64)
	return inode, err == nil
}

// readProcess resolves name from stat and path from the exe link. An
// unreadable exe link leaves the path empty.
func (p procfs) readProcess(pid uint32) (model.Process, bool) {
	dir := filepath.Join(p.root, strconv.FormatUint(uint64(pid), 10))

	stat, err := os.ReadFile(filepath.Join(dir, "stat"))
	if err != nil {
		return model.Process{}, false
	}
	name, err := parseComm(string(stat))
	if err != nil {
		return model.Process{}, false
	}

	path, err := os.Readlink(filepath.Join(dir, "exe"))
	if err != nil {
		path = ""
	}
	return model.Process{PID: pid, Name: name, Path: path}, true
}

// parseComm extracts the command name from a stat line. The name may hold
// spaces and parentheses, so it runs from the first '(' to the last ')'.
func parseComm(stat string) (string, error) {
	open := strings.Index(stat, "(")
	close := strings.LastIndex(stat, ")")
	if open < 0 || close <= open {
		return "", fmt.Errorf("malformed stat line %q", stat)
	}
	name := stat[open+1 : close]
	if name == "" {
		return "", fmt.Errorf("empty comm in stat line %q", stat)
	}
	return name, nil
}
