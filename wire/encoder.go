package wire

import (
	"github.com/lumera-tools/protolite/record"
)

// Encoder handles low-level protobuf wire format encoding
type Encoder struct {
	buf   []byte
	depth int
	opts  Options
}

// NewEncoder creates a new wire format encoder
func NewEncoder() *Encoder {
	return &Encoder{
		buf: make([]byte, 0),
	}
}

// NewEncoderWithOptions creates an encoder honoring opts
func NewEncoderWithOptions(opts Options) *Encoder {
	return &Encoder{
		buf:  make([]byte, 0),
		opts: opts,
	}
}

// Bytes returns the encoded bytes
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Reset clears the encoder buffer
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// nested returns an encoder for a submessage one level deeper
func (e *Encoder) nested() *Encoder {
	return &Encoder{
		buf:   make([]byte, 0),
		depth: e.depth + 1,
		opts:  e.opts,
	}
}

// EncodeMessage encodes a record with default options - main entry point
func EncodeMessage(rec *record.Record) ([]byte, error) {
	return Options{}.Marshal(rec)
}
