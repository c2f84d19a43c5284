package codec

import (
	"encoding/binary"
	"fmt"
)

// Cursor is a bounds-checked sequential reader over a borrowed byte slice.
//
// Every read returns a sub-slice of the original buffer; nothing is copied.
// The buffer must not be modified while the cursor or any slice it returned
// is in use. A failed read never moves the cursor.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor returns a cursor positioned at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Seek moves the cursor to pos. Seeking to Len() is allowed.
func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.data) {
		return fmt.Errorf("%w: seek to %d, len %d", ErrOutOfBounds, pos, len(c.data))
	}
	c.pos = pos
	return nil
}

// Pos returns the current position.
func (c *Cursor) Pos() int {
	return c.pos
}

// Len returns the length of the underlying buffer.
func (c *Cursor) Len() int {
	return len(c.data)
}

// Left returns the number of unread bytes.
func (c *Cursor) Left() int {
	return len(c.data) - c.pos
}

// NextBytes returns the next n bytes and advances past them.
func (c *Cursor) NextBytes(n int) ([]byte, error) {
	// n > Left() rather than pos+n > len keeps the check overflow free
	if n < 0 || n > c.Left() {
		return nil, fmt.Errorf("%w: need %d bytes at %d, have %d", ErrOutOfBounds, n, c.pos, c.Left())
	}
	s := c.pos
	c.pos += n
	return c.data[s:c.pos:c.pos], nil
}

// NextU32 reads a little-endian uint32.
func (c *Cursor) NextU32() (uint32, error) {
	b, err := c.NextBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// NextChunk reads a length-prefixed slot: a little-endian uint32 length L
// followed by L bytes, and returns the L payload bytes.
// On a truncated payload the cursor is left before the length prefix.
func (c *Cursor) NextChunk() ([]byte, error) {
	start := c.pos
	n, err := c.NextU32()
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(c.Left()) {
		c.pos = start
		return nil, fmt.Errorf("%w: slot of %d bytes at %d, have %d", ErrOutOfBounds, n, start, c.Left()-4)
	}
	return c.NextBytes(int(n))
}

// NextTime reads a timestamp stored as seconds then nanoseconds, two
// little-endian uint32 values, and returns it as nanoseconds.
func (c *Cursor) NextTime() (uint64, error) {
	start := c.pos
	s, err := c.NextU32()
	if err != nil {
		return 0, err
	}
	ns, err := c.NextU32()
	if err != nil {
		c.pos = start
		return 0, err
	}
	return 1_000_000_000*uint64(s) + uint64(ns), nil
}
