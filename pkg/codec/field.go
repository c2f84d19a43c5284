package codec

import (
	"encoding/binary"
	"fmt"
)

// FieldU32 is a set-once header slot holding a little-endian uint32 value.
// The zero value is unset.
type FieldU32 struct {
	val uint32
	ok  bool
}

// Set parses value into the slot. It fails with ErrInvalidRecord if value is
// not exactly 4 bytes or the slot was already set (a duplicate field).
func (f *FieldU32) Set(name string, value []byte) error {
	if f.ok {
		return duplicateField(name)
	}
	if len(value) != 4 {
		return fieldSize(name, len(value), 4)
	}
	f.val = binary.LittleEndian.Uint32(value)
	f.ok = true
	return nil
}

// Get returns the value and whether it was set.
func (f FieldU32) Get() (uint32, bool) {
	return f.val, f.ok
}

// Require returns the value, or ErrInvalidHeader if it was never set.
func (f FieldU32) Require(name string) (uint32, error) {
	if !f.ok {
		return 0, missingField(name)
	}
	return f.val, nil
}

// FieldU8 is a set-once single byte header slot, used for the op code.
type FieldU8 struct {
	val byte
	ok  bool
}

// Set stores value, which must be exactly one byte.
func (f *FieldU8) Set(name string, value []byte) error {
	if f.ok {
		return duplicateField(name)
	}
	if len(value) != 1 {
		return fieldSize(name, len(value), 1)
	}
	f.val = value[0]
	f.ok = true
	return nil
}

// Get returns the value and whether it was set.
func (f FieldU8) Get() (byte, bool) {
	return f.val, f.ok
}

// Require returns the value, or ErrInvalidHeader if it was never set.
func (f FieldU8) Require(name string) (byte, error) {
	if !f.ok {
		return 0, missingField(name)
	}
	return f.val, nil
}

// FieldTime is a set-once timestamp slot: seconds then nanoseconds, both
// little-endian uint32, stored as nanoseconds.
type FieldTime struct {
	val uint64
	ok  bool
}

// Set parses an 8-byte timestamp value.
func (f *FieldTime) Set(name string, value []byte) error {
	if f.ok {
		return duplicateField(name)
	}
	if len(value) != 8 {
		return fieldSize(name, len(value), 8)
	}
	t, err := NewCursor(value).NextTime()
	if err != nil {
		return err
	}
	f.val = t
	f.ok = true
	return nil
}

// Get returns the value in nanoseconds and whether it was set.
func (f FieldTime) Get() (uint64, bool) {
	return f.val, f.ok
}

// Require returns the value, or ErrInvalidHeader if it was never set.
func (f FieldTime) Require(name string) (uint64, error) {
	if !f.ok {
		return 0, missingField(name)
	}
	return f.val, nil
}

func duplicateField(name string) error {
	return fmt.Errorf("%w: duplicate header field %q", ErrInvalidRecord, name)
}

func fieldSize(name string, got, want int) error {
	return fmt.Errorf("%w: header field %q is %d bytes, want %d", ErrInvalidRecord, name, got, want)
}

func missingField(name string) error {
	return fmt.Errorf("%w: missing header field %q", ErrInvalidHeader, name)
}
