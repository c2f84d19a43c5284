package bag

import (
	"errors"
	"fmt"

	"github.com/ssargent/bagindex/pkg/codec"
)

// Op codes of the record kinds found in a bag.
const (
	OpMessageData byte = 0x02
	OpBagHeader   byte = 0x03
	OpIndexData        = codec.OpIndexData
	OpChunk       byte = 0x05
	OpChunkInfo   byte = 0x06
	OpConnection  byte = 0x07
)

var opNames = map[byte]string{
	OpMessageData: "message_data",
	OpBagHeader:   "bag_header",
	OpIndexData:   "index_data",
	OpChunk:       "chunk",
	OpChunkInfo:   "chunk_info",
	OpConnection:  "connection",
}

// OpName returns a short name for op, used in logs, metrics and output.
func OpName(op byte) string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("op_0x%02x", op)
}

type decodeFunc func(header []byte, data *codec.Cursor) (codec.Record, error)

// decoders maps an op code to the decoder of that record kind.
var decoders = map[byte]decodeFunc{
	OpIndexData: func(header []byte, data *codec.Cursor) (codec.Record, error) {
		return codec.Decode[*codec.IndexData](&codec.IndexDataHeader{}, header, data)
	},
}

// Supported reports whether Decode understands records with this op.
func Supported(op byte) bool {
	_, ok := decoders[op]
	return ok
}

// Decode decodes a raw record into its typed form. Use a type switch on the
// result to get at the concrete record:
//
//	switch rec := rec.(type) {
//	case *codec.IndexData:
//	    ...
//	}
func Decode(r RawRecord) (codec.Record, error) {
	decode, ok := decoders[r.Op]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOp, OpName(r.Op))
	}
	rec, err := decode(r.Header, r.DataCursor())
	if err != nil {
		return nil, fmt.Errorf("%s record at %d: %w", OpName(r.Op), r.Pos, err)
	}
	return rec, nil
}

// ErrorKind returns a short label for the decode error class of err.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, codec.ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, codec.ErrInvalidRecord):
		return "invalid_record"
	case errors.Is(err, codec.ErrInvalidHeader):
		return "invalid_header"
	case errors.Is(err, codec.ErrUnsupportedVersion):
		return "unsupported_version"
	case errors.Is(err, ErrUnsupportedOp):
		return "unsupported_op"
	case errors.Is(err, ErrNotABag):
		return "not_a_bag"
	}
	return "unknown"
}
