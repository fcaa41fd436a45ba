package proc

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranshuparmar/listeners/pkg/model"
)

type fakeRow struct {
	addr []byte
	port uint16
	pid  uint32
}

// buildTable lays rows out the way iphlpapi does: little-endian DWORDs,
// network-order address bytes, port in the first two bytes of its DWORD.
func buildTable(l rowLayout, rows ...fakeRow) []byte {
	buf := make([]byte, tableHeaderSize+len(rows)*l.size)
	binary.LittleEndian.PutUint32(buf, uint32(len(rows)))
	for i, r := range rows {
		row := buf[tableHeaderSize+i*l.size:]
		copy(row[l.addrOff:], r.addr)
		row[l.portOff] = byte(r.port >> 8)
		row[l.portOff+1] = byte(r.port)
		binary.LittleEndian.PutUint32(row[l.pidOff:], r.pid)
	}
	return buf
}

func TestDecodeTCP4Table(t *testing.T) {
	buf := buildTable(tcp4Rows,
		fakeRow{addr: []byte{0, 0, 0, 0}, port: 135, pid: 888},
		fakeRow{addr: []byte{127, 0, 0, 1}, port: 51189, pid: 455},
	)
	// state DWORD lives before the address and must not leak into it
	binary.LittleEndian.PutUint32(buf[tableHeaderSize:], 2)

	entries, err := decodeOwnerPIDTable(buf, tcp4Rows)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "0.0.0.0:135", entries[0].endpoint.Socket.String())
	assert.Equal(t, model.TCP, entries[0].endpoint.Protocol)
	assert.Equal(t, pidKey(888), entries[0].key)
	assert.Equal(t, "127.0.0.1:51189", entries[1].endpoint.Socket.String())
	assert.Equal(t, pidKey(455), entries[1].key)
}

func TestDecodeTCP6Table(t *testing.T) {
	addr := make([]byte, 16)
	addr[15] = 1
	entries, err := decodeOwnerPIDTable(buildTable(tcp6Rows, fakeRow{addr: addr, port: 3306, pid: 12}), tcp6Rows)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "[::1]:3306", entries[0].endpoint.Socket.String())
	assert.Equal(t, model.TCP, entries[0].endpoint.Protocol)
}

func TestDecodeUDPTables(t *testing.T) {
	entries, err := decodeOwnerPIDTable(buildTable(udp4Rows, fakeRow{addr: []byte{10, 0, 0, 1}, port: 53, pid: 4}), udp4Rows)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "10.0.0.1:53", entries[0].endpoint.Socket.String())
	assert.Equal(t, model.UDP, entries[0].endpoint.Protocol)

	mapped := []byte{10: 0xff, 11: 0xff, 12: 192, 13: 168, 14: 0, 15: 1}
	entries, err = decodeOwnerPIDTable(buildTable(udp6Rows, fakeRow{addr: mapped, port: 0, pid: 4}), udp6Rows)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].endpoint.Socket.Addr().Is4In6())
	assert.Equal(t, uint16(0), entries[0].endpoint.Socket.Port())
}

func TestDecodeEmptyTable(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{name: "zero rows", buf: buildTable(udp6Rows)},
		{name: "no buffer", buf: nil},
		{name: "zero bytes", buf: []byte{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := decodeOwnerPIDTable(tt.buf, udp6Rows)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestDecodeTruncatedTable(t *testing.T) {
	buf := buildTable(tcp4Rows, fakeRow{addr: []byte{1, 2, 3, 4}, port: 1, pid: 1})
	_, err := decodeOwnerPIDTable(buf[:len(buf)-1], tcp4Rows)
	assert.Error(t, err)

	_, err = decodeOwnerPIDTable([]byte{1, 0}, tcp4Rows)
	assert.Error(t, err)
}

func TestRowLayoutSizes(t *testing.T) {
	for _, l := range []rowLayout{tcp4Rows, tcp6Rows, udp4Rows, udp6Rows} {
		assert.LessOrEqual(t, l.pidOff+4, l.size, l.name)
		assert.LessOrEqual(t, l.portOff+4, l.size, l.name)
	}
}
