package codec

import "errors"

// Decode errors. Every error returned by this package wraps exactly one of
// these, so callers can branch with errors.Is.
var (
	// ErrOutOfBounds reports a read past the end of the buffer.
	ErrOutOfBounds = errors.New("read out of bounds")
	// ErrInvalidRecord reports a malformed length, count, field value or a
	// duplicate header field.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrInvalidHeader reports a mandatory header field that was never set.
	ErrInvalidHeader = errors.New("invalid header")
	// ErrUnsupportedVersion reports a record version this decoder does not implement.
	ErrUnsupportedVersion = errors.New("unsupported version")
)
