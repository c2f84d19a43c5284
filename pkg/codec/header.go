package codec

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// HeaderFieldIterator walks the fields of a record header block.
//
// A header block is a sequence of length-prefixed slots, each holding
// <name>=<value>. The name ends at the first '=' and must be valid UTF-8; the
// value is returned as raw bytes aliasing the block.
//
//	it := NewHeaderFieldIterator(block)
//	for it.Next() {
//	    use(it.Name(), it.Value())
//	}
//	if err := it.Err(); err != nil { ... }
//
// The iterator stops at the first malformed field and never resynchronizes.
type HeaderFieldIterator struct {
	cursor *Cursor
	name   string
	value  []byte
	err    error
}

// NewHeaderFieldIterator returns an iterator over the fields of block.
func NewHeaderFieldIterator(block []byte) *HeaderFieldIterator {
	return &HeaderFieldIterator{cursor: NewCursor(block)}
}

// Next advances to the next field. It returns false at the end of the block
// or after an error; check Err to tell them apart.
func (it *HeaderFieldIterator) Next() bool {
	if it.err != nil || it.cursor.Left() == 0 {
		return false
	}

	pos := it.cursor.Pos()
	slot, err := it.cursor.NextChunk()
	if err != nil {
		it.fail(err)
		return false
	}

	i := bytes.IndexByte(slot, '=')
	if i < 0 {
		it.fail(fmt.Errorf("%w: header field at %d has no '='", ErrInvalidRecord, pos))
		return false
	}
	if !utf8.Valid(slot[:i]) {
		it.fail(fmt.Errorf("%w: header field name at %d is not valid UTF-8", ErrInvalidRecord, pos))
		return false
	}

	it.name = string(slot[:i])
	it.value = slot[i+1:]
	return true
}

// Name returns the name of the current field.
func (it *HeaderFieldIterator) Name() string {
	return it.name
}

// Value returns the raw value of the current field.
func (it *HeaderFieldIterator) Value() []byte {
	return it.value
}

// Err returns the error that stopped the iteration, if any.
func (it *HeaderFieldIterator) Err() error {
	return it.err
}

func (it *HeaderFieldIterator) fail(err error) {
	it.err = err
	it.name = ""
	it.value = nil
}
