// Package bag walks the records of an in-memory bag and hands them to the
// decoders in package codec.
//
// A bag starts with the version line "#ROSBAG V2.0\n" followed by records
// laid out back to back, each a header slot and a data slot. The header of
// every record carries a one byte "op" field naming its kind. Reader splits a
// buffer into RawRecords, Decode turns a RawRecord into a typed codec.Record
// for the kinds this module understands, and Scan does both for a whole bag
// while building an Index of message offsets per connection.
//
// Like package codec, nothing here copies the buffer: RawRecords, decoded
// records and Index entries alias it.
package bag
