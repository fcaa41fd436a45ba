package proc

import (
	"encoding/binary"
	"fmt"
	"net/netip"

	"github.com/pranshuparmar/listeners/pkg/model"
)

// rowLayout describes one MIB_*ROW_OWNER_PID structure as returned by
// GetExtendedTcpTable and GetExtendedUdpTable. Tables start with a DWORD
// row count followed by packed rows.
type rowLayout struct {
	name    string
	size    int
	addrOff int
	v6      bool
	portOff int
	pidOff  int
	proto   model.Protocol
}

var (
	tcp4Rows = rowLayout{name: "MIB_TCPROW_OWNER_PID", size: 24, addrOff: 4, portOff: 8, pidOff: 20, proto: model.TCP}
	tcp6Rows = rowLayout{name: "MIB_TCP6ROW_OWNER_PID", size: 56, addrOff: 0, v6: true, portOff: 20, pidOff: 52, proto: model.TCP}
	udp4Rows = rowLayout{name: "MIB_UDPROW_OWNER_PID", size: 12, addrOff: 0, portOff: 4, pidOff: 8, proto: model.UDP}
	udp6Rows = rowLayout{name: "MIB_UDP6ROW_OWNER_PID", size: 28, addrOff: 0, v6: true, portOff: 20, pidOff: 24, proto: model.UDP}
)

const tableHeaderSize = 4

// decodeOwnerPIDTable decodes a raw owner-pid table. Addresses are stored
// in network order; the port is the low 16 bits of a DWORD in network
// order, so only its first two bytes matter.
func decodeOwnerPIDTable(buf []byte, l rowLayout) ([]socketEntry, error) {
	// the size probe can succeed outright with nothing to return
	if len(buf) == 0 {
		return nil, nil
	}
	if len(buf) < tableHeaderSize {
		return nil, fmt.Errorf("%s table: short buffer (%d bytes)", l.name, len(buf))
	}
	n := int(binary.LittleEndian.Uint32(buf))
	if n < 0 || n > (len(buf)-tableHeaderSize)/l.size {
		return nil, fmt.Errorf("%s table: %d rows do not fit in %d bytes", l.name, n, len(buf))
	}

	entries := make([]socketEntry, 0, n)
	for i := 0; i < n; i++ {
		row := buf[tableHeaderSize+i*l.size : tableHeaderSize+(i+1)*l.size]

		addr, ok := ipFromBytes(l.v6, row[l.addrOff:])
		if !ok {
			continue
		}
		port := uint16(row[l.portOff])<<8 | uint16(row[l.portOff+1])
		pid := binary.LittleEndian.Uint32(row[l.pidOff:])

		entries = append(entries, socketEntry{
			endpoint: model.Endpoint{Socket: netip.AddrPortFrom(addr, port), Protocol: l.proto},
			key:      pidKey(pid),
		})
	}
	return entries, nil
}
