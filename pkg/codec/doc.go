// Package codec decodes the records of a ROS bag style container.
//
// A bag record is a header block followed by a data block. Both are
// length-prefixed slots, and the header block is itself a sequence of slots,
// one per field:
//
//	record: [HeaderLen(4)][Header][DataLen(4)][Data]
//	header: [FieldLen(4)][name=value] [FieldLen(4)][name=value] ...
//
// All integers are little-endian. Field names are UTF-8 text ending at the
// first '='; values are raw bytes whose encoding depends on the field.
//
// # Decoding
//
// Decoding is done in two phases. Every field of the header block is fed to a
// record kind's Header accumulator, then ReadData consumes the data block and
// validates it against what the header declared:
//
//	rec, err := codec.Decode[*codec.IndexData](&codec.IndexDataHeader{}, header, codec.NewCursor(data))
//
// or, for index data records, simply:
//
//	rec, err := codec.DecodeIndexData(header, data)
//
// Unknown header fields are ignored. A field given twice is ErrInvalidRecord, a
// mandatory field never given is ErrInvalidHeader.
//
// Choosing the record kind from a header's op field is left to the caller;
// see package bag.
//
// # Index Data Records
//
// An index data record (op 0x04) maps message timestamps to offsets inside the
// uncompressed payload of the preceding chunk, for one connection:
//
//	header: ver=1, conn=<u32>, count=<u32>
//	data:   [Len(4)] count * [Secs(4)][Nsecs(4)][Offset(4)]
//
// # Memory
//
// Nothing is copied. Cursors, field values, records and entries all alias the
// buffer they were decoded from, so that buffer must stay alive and unmodified
// while they are in use. Decoding never writes to the buffer, so any number of
// goroutines may decode the same buffer at once.
//
// # Errors
//
// Every error wraps one of ErrOutOfBounds, ErrInvalidRecord, ErrInvalidHeader
// or ErrUnsupportedVersion. Decoding stops at the first error; iterators report
// it through Err and do not resume.
package codec
