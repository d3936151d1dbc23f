package wire

import (
	"github.com/lumera-tools/protolite/record"
	"github.com/lumera-tools/protolite/schema"
)

// DefaultMaxDepth bounds message nesting when Options.MaxDepth is unset.
const DefaultMaxDepth = 100

// Options controls optional codec behaviors. The zero value is ready to use;
// options travel with each call, nothing is configured process-wide.
type Options struct {
	// MaxDepth bounds how deeply messages may nest, on decode and on encode.
	// Zero or negative selects DefaultMaxDepth.
	MaxDepth int

	// StrictPacking: when true, a repeated scalar field arriving in packed
	// (length-delimited) form is treated like any other wire type mismatch
	// and skipped. When false (default), packed payloads are unpacked.
	StrictPacking bool
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// Marshal encodes rec into a new buffer.
func (o Options) Marshal(rec *record.Record) ([]byte, error) {
	encoder := NewEncoderWithOptions(o)
	if err := encoder.EncodeMessage(rec); err != nil {
		return nil, err
	}
	return encoder.Bytes(), nil
}

// Unmarshal decodes data as one msg. It returns either a complete record or an
// error, never a partially decoded record.
func (o Options) Unmarshal(data []byte, msg *schema.Message) (*record.Record, error) {
	decoder := NewDecoderWithOptions(data, o)
	return decoder.DecodeWithSchema(msg)
}
