//go:build windows

package proc

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/pranshuparmar/listeners/pkg/model"
)

const (
	tcpTableOwnerPIDAll = 5 // TCP_TABLE_OWNER_PID_ALL
	udpTableOwnerPID    = 1 // UDP_TABLE_OWNER_PID

	maxTableAttempts = 100
)

var (
	modiphlpapi             = windows.NewLazySystemDLL("iphlpapi.dll")
	procGetExtendedTcpTable = modiphlpapi.NewProc("GetExtendedTcpTable")
	procGetExtendedUdpTable = modiphlpapi.NewProc("GetExtendedUdpTable")
)

type ownerTable struct {
	proc   *windows.LazyProc
	family uint32
	class  uint32
	rows   rowLayout
}

var (
	tcp4Table = ownerTable{proc: procGetExtendedTcpTable, family: windows.AF_INET, class: tcpTableOwnerPIDAll, rows: tcp4Rows}
	tcp6Table = ownerTable{proc: procGetExtendedTcpTable, family: windows.AF_INET6, class: tcpTableOwnerPIDAll, rows: tcp6Rows}
	udp4Table = ownerTable{proc: procGetExtendedUdpTable, family: windows.AF_INET, class: udpTableOwnerPID, rows: udp4Rows}
	udp6Table = ownerTable{proc: procGetExtendedUdpTable, family: windows.AF_INET6, class: udpTableOwnerPID, rows: udp6Rows}

	allTables = []ownerTable{tcp4Table, tcp6Table, udp4Table, udp6Table}
)

func tablesFor(proto model.Protocol) []ownerTable {
	if proto == model.UDP {
		return []ownerTable{udp4Table, udp6Table}
	}
	return []ownerTable{tcp4Table, tcp6Table}
}

// fetch grows the buffer until the table fits. The table can grow between
// the size probe and the fill call, hence the loop.
func (t ownerTable) fetch() ([]byte, error) {
	if err := t.proc.Find(); err != nil {
		return nil, model.NewSourceError(t.proc.Name, err)
	}

	var size uint32
	var buf []byte
	for attempt := 0; attempt < maxTableAttempts; attempt++ {
		var ptr uintptr
		if len(buf) > 0 {
			ptr = uintptr(unsafe.Pointer(&buf[0]))
		}
		r, _, _ := t.proc.Call(
			ptr,
			uintptr(unsafe.Pointer(&size)),
			0, // unsorted
			uintptr(t.family),
			uintptr(t.class),
			0,
		)
		switch windows.Errno(r) {
		case windows.ERROR_SUCCESS:
			return buf[:min(int(size), len(buf))], nil
		case windows.ERROR_INSUFFICIENT_BUFFER:
			buf = make([]byte, size)
		default:
			return nil, model.NewSourceError(t.proc.Name, windows.Errno(r))
		}
	}
	return nil, model.NewSourceError(t.proc.Name,
		fmt.Errorf("table kept growing after %d attempts", maxTableAttempts))
}

func (t ownerTable) entries() ([]socketEntry, error) {
	buf, err := t.fetch()
	if err != nil {
		return nil, err
	}
	entries, err := decodeOwnerPIDTable(buf, t.rows)
	if err != nil {
		return nil, model.NewSourceError(t.proc.Name, err)
	}
	return entries, nil
}

func readOwnerTables(tables []ownerTable) ([]socketEntry, error) {
	var entries []socketEntry
	for _, t := range tables {
		e, err := t.entries()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e...)
	}
	return entries, nil
}
