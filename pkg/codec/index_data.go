package codec

import (
	"encoding/binary"
	"fmt"
	"time"
)

// OpIndexData is the op code of an index data record.
const OpIndexData byte = 0x04

const (
	indexDataVersion   = 1
	indexDataEntrySize = 12 // secs(4) + nsecs(4) + offset(4)
)

// IndexData describes the offsets of the messages of one connection inside
// the uncompressed payload of the preceding chunk record.
//
// The entries alias the data block the record was decoded from.
type IndexData struct {
	Ver    uint32 // record version, always 1
	ConnID uint32 // connection the indexed messages belong to
	data   []byte
}

// Op returns OpIndexData.
func (d *IndexData) Op() byte {
	return OpIndexData
}

// Len returns the number of entries.
func (d *IndexData) Len() int {
	return len(d.data) / indexDataEntrySize
}

// Entries returns a fresh iterator over the entries in data block order.
func (d *IndexData) Entries() *IndexDataEntryIterator {
	return &IndexDataEntryIterator{cursor: NewCursor(d.data)}
}

// All collects every entry into a new slice.
func (d *IndexData) All() ([]IndexDataEntry, error) {
	entries := make([]IndexDataEntry, 0, d.Len())
	it := d.Entries()
	for it.Next() {
		entries = append(entries, it.Entry())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// IndexDataHeader accumulates the header fields of an index data record.
type IndexDataHeader struct {
	Ver    FieldU32
	ConnID FieldU32
	Count  FieldU32
}

// ProcessField implements Header.
func (h *IndexDataHeader) ProcessField(name string, value []byte) error {
	switch name {
	case "ver":
		return h.Ver.Set(name, value)
	case "conn":
		return h.ConnID.Set(name, value)
	case "count":
		return h.Count.Set(name, value)
	}
	return nil
}

// ReadData implements Decoder. The data block is a single slot holding
// count 12-byte entries.
func (h *IndexDataHeader) ReadData(c *Cursor) (*IndexData, error) {
	ver, err := h.Ver.Require("ver")
	if err != nil {
		return nil, err
	}
	conn, err := h.ConnID.Require("conn")
	if err != nil {
		return nil, err
	}
	count, err := h.Count.Require("count")
	if err != nil {
		return nil, err
	}
	if ver != indexDataVersion {
		return nil, fmt.Errorf("%w: index data version %d", ErrUnsupportedVersion, ver)
	}

	start := c.Pos()
	n, err := c.NextU32()
	if err != nil {
		return nil, err
	}
	if n%indexDataEntrySize != 0 {
		c.pos = start
		return nil, fmt.Errorf("%w: index data length %d is not a multiple of %d", ErrInvalidRecord, n, indexDataEntrySize)
	}
	if n/indexDataEntrySize != count {
		c.pos = start
		return nil, fmt.Errorf("%w: index data holds %d entries, header count is %d", ErrInvalidRecord, n/indexDataEntrySize, count)
	}
	data, err := c.NextBytes(int(n))
	if err != nil {
		c.pos = start
		return nil, err
	}

	return &IndexData{Ver: ver, ConnID: conn, data: data}, nil
}

// DecodeIndexData decodes an index data record from its header block and its
// data block (including the data length prefix).
func DecodeIndexData(header, data []byte) (*IndexData, error) {
	return Decode[*IndexData](&IndexDataHeader{}, header, NewCursor(data))
}

// IndexDataEntry locates one message in the uncompressed chunk payload.
type IndexDataEntry struct {
	Time   uint64 // receive time in nanoseconds
	Offset uint32 // offset of the message data record in the chunk payload
}

// Timestamp returns Time as a time.Time.
func (e IndexDataEntry) Timestamp() time.Time {
	return time.Unix(0, int64(e.Time))
}

// AppendTo appends the 12-byte wire form of e to dst.
func (e IndexDataEntry) AppendTo(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(e.Time/1_000_000_000))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(e.Time%1_000_000_000))
	return binary.LittleEndian.AppendUint32(dst, e.Offset)
}

// IndexDataEntryIterator walks the entries of an IndexData record.
type IndexDataEntryIterator struct {
	cursor *Cursor
	entry  IndexDataEntry
	err    error
}

// Next advances to the next entry. It returns false when the entries are
// exhausted or a partial entry is found; check Err to tell them apart.
func (it *IndexDataEntryIterator) Next() bool {
	if it.err != nil || it.cursor.Left() == 0 {
		return false
	}
	if it.cursor.Left() < indexDataEntrySize {
		it.err = fmt.Errorf("%w: %d trailing bytes after index entries", ErrInvalidRecord, it.cursor.Left())
		return false
	}

	t, err := it.cursor.NextTime()
	if err != nil {
		it.err = err
		return false
	}
	off, err := it.cursor.NextU32()
	if err != nil {
		it.err = err
		return false
	}
	it.entry = IndexDataEntry{Time: t, Offset: off}
	return true
}

// Entry returns the current entry.
func (it *IndexDataEntryIterator) Entry() IndexDataEntry {
	return it.entry
}

// Err returns the error that stopped the iteration, if any.
func (it *IndexDataEntryIterator) Err() error {
	return it.err
}
