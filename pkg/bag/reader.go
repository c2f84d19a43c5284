package bag

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ssargent/bagindex/pkg/codec"
)

// VersionLine opens every bag this package reads.
const VersionLine = "#ROSBAG V2.0\n"

var (
	// ErrNotABag reports a buffer that does not start with VersionLine.
	ErrNotABag = errors.New("not a bag file")
	// ErrUnsupportedOp reports a record kind with no decoder.
	ErrUnsupportedOp = errors.New("unsupported op")
)

// RawRecord is one undecoded record. Header and Data alias the scanned buffer.
type RawRecord struct {
	Op     byte   // value of the header's op field
	Header []byte // header block, without its length prefix
	Data   []byte // data block, without its length prefix
	Pos    int    // offset of the record in the buffer

	dataSlot []byte // data block with its length prefix
}

// DataCursor returns a cursor positioned on the data block's length prefix,
// which is where codec decoders expect to start.
func (r RawRecord) DataCursor() *codec.Cursor {
	return codec.NewCursor(r.dataSlot)
}

// Size returns the encoded size of the record.
func (r RawRecord) Size() int {
	return 4 + len(r.Header) + len(r.dataSlot)
}

// Reader iterates over the records of a buffer.
type Reader struct {
	buf    []byte
	cursor *codec.Cursor
	record RawRecord
	err    error
}

// Open checks the version line of buf and returns a Reader over the records
// that follow it.
func Open(buf []byte) (*Reader, error) {
	if !bytes.HasPrefix(buf, []byte(VersionLine)) {
		return nil, ErrNotABag
	}
	r := NewReader(buf)
	if err := r.cursor.Seek(len(VersionLine)); err != nil {
		return nil, err
	}
	return r, nil
}

// NewReader returns a Reader over buf, which must hold records only.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf, cursor: codec.NewCursor(buf)}
}

// Next reads the next record. It returns false at the end of the buffer or on
// error; a malformed record ends the iteration since the following records
// cannot be located.
func (r *Reader) Next() bool {
	if r.err != nil || r.cursor.Left() == 0 {
		return false
	}

	pos := r.cursor.Pos()
	header, err := r.cursor.NextChunk()
	if err != nil {
		r.err = fmt.Errorf("record at %d: header: %w", pos, err)
		return false
	}
	dataPos := r.cursor.Pos()
	data, err := r.cursor.NextChunk()
	if err != nil {
		r.err = fmt.Errorf("record at %d: data: %w", pos, err)
		return false
	}
	op, err := ReadOp(header)
	if err != nil {
		r.err = fmt.Errorf("record at %d: %w", pos, err)
		return false
	}

	r.record = RawRecord{
		Op:       op,
		Header:   header,
		Data:     data,
		Pos:      pos,
		dataSlot: r.buf[dataPos:r.cursor.Pos()],
	}
	return true
}

// Record returns the current record.
func (r *Reader) Record() RawRecord {
	return r.record
}

// Err returns the error that stopped the iteration, if any.
func (r *Reader) Err() error {
	return r.err
}

// Pos returns the offset of the next record.
func (r *Reader) Pos() int {
	return r.cursor.Pos()
}

// opHeader picks the op field out of a header and ignores the rest.
type opHeader struct {
	op codec.FieldU8
}

func (h *opHeader) ProcessField(name string, value []byte) error {
	if name == "op" {
		return h.op.Set(name, value)
	}
	return nil
}

// ReadOp returns the op field of a header block.
func ReadOp(header []byte) (byte, error) {
	h := &opHeader{}
	if err := codec.ReadHeader(header, h); err != nil {
		return 0, err
	}
	return h.op.Require("op")
}
