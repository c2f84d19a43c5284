package codec

// Record is a decoded record of one kind, identified by its op code.
type Record interface {
	Op() byte
}

// Header accumulates the fields of one record header.
//
// ProcessField is called once per field in block order. Implementations must
// ignore names they do not know so newer writers can add fields.
type Header interface {
	ProcessField(name string, value []byte) error
}

// Decoder is the two-phase contract every record kind implements: a Header
// that collects fields, then ReadData which validates the collected fields
// against the data block and builds the record.
type Decoder[R Record] interface {
	Header
	// ReadData consumes the data block starting at c. The returned record
	// may alias the bytes behind c.
	ReadData(c *Cursor) (R, error)
}

// ReadHeader feeds every field of block to h, stopping at the first error.
func ReadHeader(block []byte, h Header) error {
	it := NewHeaderFieldIterator(block)
	for it.Next() {
		if err := h.ProcessField(it.Name(), it.Value()); err != nil {
			return err
		}
	}
	return it.Err()
}

// Decode runs the header phase of d over header and then the data phase over
// data.
func Decode[R Record](d Decoder[R], header []byte, data *Cursor) (R, error) {
	if err := ReadHeader(header, d); err != nil {
		var zero R
		return zero, err
	}
	return d.ReadData(data)
}
