package bag

import (
	"encoding/binary"

	"github.com/ssargent/bagindex/pkg/codec"
)

func slot(payload []byte) []byte {
	return append(binary.LittleEndian.AppendUint32(nil, uint32(len(payload))), payload...)
}

func u32(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

func field(name string, value []byte) []byte {
	return slot(append([]byte(name+"="), value...))
}

// record encodes one record: the fields form the header block, data is the
// data block payload.
func record(data []byte, fields ...[]byte) []byte {
	var h []byte
	for _, f := range fields {
		h = append(h, f...)
	}
	return append(slot(h), slot(data)...)
}

func opField(op byte) []byte {
	return field("op", []byte{op})
}

func chunkRecord(payload []byte) []byte {
	return record(payload, opField(OpChunk), field("compression", []byte("none")), field("size", u32(uint32(len(payload)))))
}

func connectionRecord(conn uint32, topic string) []byte {
	return record([]byte("type=std_msgs/String"), opField(OpConnection), field("conn", u32(conn)), field("topic", []byte(topic)))
}

func indexDataRecord(conn uint32, entries ...codec.IndexDataEntry) []byte {
	var payload []byte
	for _, e := range entries {
		payload = e.AppendTo(payload)
	}
	return record(payload,
		opField(OpIndexData),
		field("ver", u32(1)),
		field("conn", u32(conn)),
		field("count", u32(uint32(len(entries)))),
	)
}

func bagOf(records ...[]byte) []byte {
	buf := []byte(VersionLine)
	for _, r := range records {
		buf = append(buf, r...)
	}
	return buf
}
