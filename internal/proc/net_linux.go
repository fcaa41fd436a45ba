//go:build linux

package proc

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"io/fs"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pranshuparmar/listeners/pkg/model"
)

// Columns of /proc/net/{tcp,udp}[6] rows.
const (
	fieldLocalAddress = 1
	fieldInode        = 9
	minFields         = 10
)

type netTable struct {
	name  string
	proto model.Protocol
	v6    bool
}

var netTables = []netTable{
	{name: "tcp", proto: model.TCP},
	{name: "tcp6", proto: model.TCP, v6: true},
	{name: "udp", proto: model.UDP},
	{name: "udp6", proto: model.UDP, v6: true},
}

func tablesFor(proto model.Protocol) []netTable {
	var out []netTable
	for _, t := range netTables {
		if t.proto == proto {
			out = append(out, t)
		}
	}
	return out
}

// readTable reads one socket table. The IPv6 tables are absent when the
// kernel runs without IPv6; that reads as an empty table.
func (p procfs) readTable(t netTable) ([]socketEntry, error) {
	path := filepath.Join(p.root, "net", t.name)
	f, err := os.Open(path)
	if err != nil {
		if t.v6 && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, model.NewSourceError(path, err)
	}
	defer f.Close()

	entries, err := parseNetTable(f, t.proto, t.v6)
	if err != nil {
		return nil, model.NewSourceError(path, err)
	}
	return entries, nil
}

// parseNetTable parses rows in every TCP state. Rows that do not parse, and
// rows with inode 0 (no owning socket), are skipped.
func parseNetTable(r io.Reader, proto model.Protocol, v6 bool) ([]socketEntry, error) {
	var entries []socketEntry

	scanner := bufio.NewScanner(r)
	scanner.Scan() // skip header

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < minFields {
			continue
		}

		socket, ok := parseLocalAddress(fields[fieldLocalAddress], v6)
		if !ok {
			continue
		}
		inode, err := strconv.ParseUint(fields[fieldInode], 10, 64)
		if err != nil || inode == 0 {
			continue
		}

		entries = append(entries, socketEntry{
			endpoint: model.Endpoint{Socket: socket, Protocol: proto},
			key:      inodeKey(inode),
		})
	}
	return entries, scanner.Err()
}

// parseLocalAddress decodes "ADDR:PORT". The kernel prints the address as
// host-order 32-bit words, so writing each word back in native order
// recovers the network-order bytes on any endianness.
func parseLocalAddress(raw string, v6 bool) (netip.AddrPort, bool) {
	ipHex, portHex, ok := strings.Cut(raw, ":")
	if !ok || len(portHex) != 4 {
		return netip.AddrPort{}, false
	}
	port, err := strconv.ParseUint(portHex, 16, 16)
	if err != nil {
		return netip.AddrPort{}, false
	}

	words := 1
	if v6 {
		words = 4
	}
	if len(ipHex) != words*8 {
		return netip.AddrPort{}, false
	}

	var b [16]byte
	for i := 0; i < words; i++ {
		w, err := strconv.ParseUint(ipHex[i*8:(i+1)*8], 16, 32)
		if err != nil {
			return netip.AddrPort{}, false
		}
		binary.NativeEndian.PutUint32(b[i*4:], uint32(w))
	}

	addr, _ := ipFromBytes(v6, b[:])
	return netip.AddrPortFrom(addr, uint16(port)), true
}
