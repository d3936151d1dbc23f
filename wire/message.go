package wire

import (
	"fmt"

	"github.com/lumera-tools/protolite/record"
	"github.com/lumera-tools/protolite/schema"
)

// MessageDecoder handles message decoding operations
type MessageDecoder struct {
	decoder *Decoder
}

// MessageEncoder handles message encoding operations
type MessageEncoder struct {
	encoder *Encoder
}

// NewMessageDecoder creates a new message decoder
func NewMessageDecoder(d *Decoder) *MessageDecoder {
	return &MessageDecoder{decoder: d}
}

// NewMessageEncoder creates a new message encoder
func NewMessageEncoder(e *Encoder) *MessageEncoder {
	return &MessageEncoder{encoder: e}
}

// DECODER METHODS

// DecodeMessage decodes a length-delimited nested message
func (md *MessageDecoder) DecodeMessage(msg *schema.Message) (*record.Record, error) {
	d := md.decoder
	length, err := NewBytesDecoder(d).DecodeLength()
	if err != nil {
		return nil, fmt.Errorf("failed to decode message length: %w", err)
	}

	nested := d.sub(length)
	d.pos += length
	return nested.DecodeWithSchema(msg)
}

// ENCODER METHODS

// EncodeMessage appends the fields of rec in descriptor order. Singular
// fields holding their default and empty repeated fields emit nothing.
func (me *MessageEncoder) EncodeMessage(rec *record.Record) error {
	if me.encoder.depth > me.encoder.opts.maxDepth() {
		return fmt.Errorf("%w: limit %d", ErrDepthExceeded, me.encoder.opts.maxDepth())
	}

	for _, field := range rec.Descriptor().Fields {
		if rec.IsDefault(field) {
			continue
		}

		value := rec.GetField(field)
		if !field.IsRepeated() {
			if err := me.encodeField(field, value); err != nil {
				return WrapField(err, field.Name)
			}
			continue
		}

		// one tag per element, never packed
		for i, element := range value.([]any) {
			if err := me.encodeField(field, element); err != nil {
				return WrapField(WrapIndex(err, i), field.Name)
			}
		}
	}
	return nil
}

// encodeField writes the tag and payload of one value
func (me *MessageEncoder) encodeField(field *schema.Field, value any) error {
	e := me.encoder
	ve := NewVarintEncoder(e)

	if field.Kind == schema.KindMessage {
		// encode first so a failing submessage leaves no dangling tag
		nested := e.nested()
		if err := NewMessageEncoder(nested).EncodeMessage(value.(*record.Record)); err != nil {
			return err
		}
		ve.EncodeTag(FieldNumber(field.Number), WireBytes)
		e.EncodeBytes(nested.Bytes())
		return nil
	}

	// range errors must not leave a dangling tag either
	if field.Kind.Is64Bit() {
		if err := checkSafe(value); err != nil {
			return err
		}
	}

	ve.EncodeTag(FieldNumber(field.Number), field.WireType())

	switch field.Kind {
	case schema.KindBool:
		ve.EncodeBool(value.(bool))
	case schema.KindInt32:
		ve.EncodeInt32(value.(int32))
	case schema.KindInt64:
		return ve.EncodeInt64(value.(int64))
	case schema.KindUint64:
		return ve.EncodeUint64(value.(uint64))
	case schema.KindEnum:
		ve.EncodeEnum(value.(record.EnumValue).Number)
	case schema.KindDouble:
		NewFixedEncoder(e).EncodeFloat64(value.(float64))
	case schema.KindString:
		e.EncodeString(value.(string))
	case schema.KindBytes:
		e.EncodeBytes(value.([]byte))
	default:
		return fmt.Errorf("unsupported field kind: %s", field.Kind)
	}
	return nil
}

// Convenience methods for direct access

// DecodeMessage - convenience method for main decoder
func (d *Decoder) DecodeMessage(msg *schema.Message) (*record.Record, error) {
	md := NewMessageDecoder(d)
	return md.DecodeMessage(msg)
}

// EncodeMessage - convenience method for main encoder
func (e *Encoder) EncodeMessage(rec *record.Record) error {
	me := NewMessageEncoder(e)
	return me.EncodeMessage(rec)
}
