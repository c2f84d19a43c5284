package codec

import "encoding/binary"

func slot(payload []byte) []byte {
	b := binary.LittleEndian.AppendUint32(nil, uint32(len(payload)))
	return append(b, payload...)
}

func u32(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

func field(name string, value []byte) []byte {
	return slot(append([]byte(name+"="), value...))
}

func header(fields ...[]byte) []byte {
	var b []byte
	for _, f := range fields {
		b = append(b, f...)
	}
	return b
}

func indexHeader(ver, conn, count uint32) []byte {
	return header(
		field("op", []byte{OpIndexData}),
		field("ver", u32(ver)),
		field("conn", u32(conn)),
		field("count", u32(count)),
	)
}

func indexData(entries ...IndexDataEntry) []byte {
	var payload []byte
	for _, e := range entries {
		payload = e.AppendTo(payload)
	}
	return slot(payload)
}
