package wire

import (
	"fmt"

	"github.com/lumera-tools/protolite/record"
	"github.com/lumera-tools/protolite/schema"
)

// Decoder handles low-level protobuf wire format decoding. It reads buf
// from pos up to end, the effective end of the current message.
type Decoder struct {
	buf   []byte
	pos   int
	end   int
	depth int
	opts  Options
}

// NewDecoder creates a new wire format decoder
func NewDecoder(data []byte) *Decoder {
	return &Decoder{
		buf: data,
		pos: 0,
		end: len(data),
	}
}

// NewDecoderWithOptions creates a decoder honoring opts
func NewDecoderWithOptions(data []byte, opts Options) *Decoder {
	return &Decoder{
		buf:  data,
		pos:  0,
		end:  len(data),
		opts: opts,
	}
}

// Pos returns the read position.
func (d *Decoder) Pos() int { return d.pos }

// Remaining returns the number of unread bytes before the effective end.
func (d *Decoder) Remaining() int { return d.end - d.pos }

// sub returns a decoder bounded to the next n bytes, one nesting level deeper.
// The caller advances d past those bytes.
func (d *Decoder) sub(n int) *Decoder {
	return &Decoder{
		buf:   d.buf,
		pos:   d.pos,
		end:   d.pos + n,
		depth: d.depth + 1,
		opts:  d.opts,
	}
}

// DecodeMessage decodes protobuf bytes using schema with default options - main entry point
func DecodeMessage(data []byte, msg *schema.Message) (*record.Record, error) {
	return Options{}.Unmarshal(data, msg)
}

// DecodeWithSchema decodes one message from the current position up to the
// effective end. Decoding stops early, without error, on a zero tag or an
// end-group tag; whatever follows is left unread.
func (d *Decoder) DecodeWithSchema(msg *schema.Message) (*record.Record, error) {
	if d.depth > d.opts.maxDepth() {
		return nil, fmt.Errorf("%w: limit %d", ErrDepthExceeded, d.opts.maxDepth())
	}

	result := record.New(msg)

	for d.pos < d.end {
		tagOffset := d.pos
		tag, err := d.DecodeVarint()
		if err != nil {
			return nil, fmt.Errorf("failed to decode tag of %s at offset %d: %w", msg.Name, tagOffset, err)
		}
		if tag == 0 {
			break
		}

		fieldNumber, wireType := ParseTag(Tag(tag))

		var field *schema.Field
		if fieldNumber <= schema.MaxFieldNumber {
			field = msg.FieldByNumber(int32(fieldNumber))
		}

		if field != nil {
			handled, err := d.decodeField(result, field, wireType)
			if err != nil {
				return nil, WrapField(err, field.Name)
			}
			if handled {
				continue
			}
		}

		// Unknown field, or known field carrying another wire type
		if wireType == WireEndGroup {
			break
		}
		if err := d.skipField(wireType); err != nil {
			return nil, fmt.Errorf("failed to skip field %d of %s: %w", fieldNumber, msg.Name, err)
		}
	}

	return result, nil
}

// decodeField decodes one occurrence of a known field into rec. It reports
// false, consuming nothing, when the wire type does not match the field.
func (d *Decoder) decodeField(rec *record.Record, field *schema.Field, wireType WireType) (bool, error) {
	if wireType != field.WireType() {
		if field.IsRepeated() && wireType == WireBytes && field.Kind.Packable() && !d.opts.StrictPacking {
			return true, d.decodePacked(rec, field)
		}
		return false, nil
	}

	value, err := d.DecodeTypedField(field)
	if err != nil {
		if field.IsRepeated() {
			err = WrapIndex(err, len(rec.GetField(field).([]any)))
		}
		return true, err
	}

	if !field.IsRepeated() {
		return true, rec.SetField(field, value)
	}
	if field.Kind == schema.KindMessage && field.Message().MapEntry {
		return true, mergeMapEntry(rec, field, value.(*record.Record))
	}
	return true, rec.AppendField(field, value)
}

// decodePacked unpacks a length-delimited run of varint or fixed values.
func (d *Decoder) decodePacked(rec *record.Record, field *schema.Field) error {
	bd := NewBytesDecoder(d)
	length, err := bd.DecodeLength()
	if err != nil {
		return err
	}

	packed := d.sub(length)
	d.pos += length
	for i := 0; packed.pos < packed.end; i++ {
		value, err := packed.DecodeTypedField(field)
		if err != nil {
			return WrapIndex(err, i)
		}
		if err := rec.AppendField(field, value); err != nil {
			return err
		}
	}
	return nil
}

// DecodeTypedField decodes one value of the field's kind from the current position
func (d *Decoder) DecodeTypedField(field *schema.Field) (any, error) {
	switch field.Kind {
	case schema.KindBool:
		return NewVarintDecoder(d).DecodeBool()
	case schema.KindInt32:
		return NewVarintDecoder(d).DecodeInt32()
	case schema.KindInt64:
		return NewVarintDecoder(d).DecodeInt64()
	case schema.KindUint64:
		return NewVarintDecoder(d).DecodeUint64()
	case schema.KindEnum:
		n, err := NewVarintDecoder(d).DecodeEnum()
		if err != nil {
			return nil, err
		}
		return record.ResolveEnum(field.Enum(), n), nil
	case schema.KindDouble:
		return NewFixedDecoder(d).DecodeFloat64()
	case schema.KindString:
		return NewBytesDecoder(d).DecodeString()
	case schema.KindBytes:
		return NewBytesDecoder(d).DecodeBytes()
	case schema.KindMessage:
		return NewMessageDecoder(d).DecodeMessage(field.Message())
	default:
		return nil, fmt.Errorf("unsupported field kind: %s", field.Kind)
	}
}

// skipField skips a field based on wire type
func (d *Decoder) skipField(wireType WireType) error {
	switch wireType {
	case WireVarint:
		return NewVarintDecoder(d).SkipVarint()
	case WireFixed64:
		if d.end-d.pos < 8 {
			return fmt.Errorf("%w: not enough data to skip fixed64", ErrTruncated)
		}
		d.pos += 8
		return nil
	case WireBytes:
		return NewBytesDecoder(d).SkipBytes()
	case WireFixed32:
		if d.end-d.pos < 4 {
			return fmt.Errorf("%w: not enough data to skip fixed32", ErrTruncated)
		}
		d.pos += 4
		return nil
	case WireStartGroup:
		return d.skipGroup()
	default:
		return fmt.Errorf("%w: %d", ErrInvalidWireType, wireType)
	}
}

// skipGroup consumes a group body through its matching end-group tag.
func (d *Decoder) skipGroup() error {
	for open := 1; open > 0; {
		tag, err := d.DecodeVarint()
		if err != nil {
			return fmt.Errorf("unterminated group: %w", err)
		}
		_, wireType := ParseTag(Tag(tag))
		switch wireType {
		case WireStartGroup:
			open++
		case WireEndGroup:
			open--
		default:
			if err := d.skipField(wireType); err != nil {
				return err
			}
		}
	}
	return nil
}

// DecodeField decodes a single field from the current position without a schema.
// It returns nil at the effective end of input.
func (d *Decoder) DecodeField() (*Value, error) {
	if d.pos >= d.end {
		return nil, nil
	}

	offset := d.pos
	tag, err := d.DecodeVarint()
	if err != nil {
		return nil, err
	}

	fieldNumber, wireType := ParseTag(Tag(tag))

	data, err := d.decodeRawValue(wireType)
	if err != nil {
		return nil, fmt.Errorf("field %d at offset %d: %w", fieldNumber, offset, err)
	}

	return &Value{
		FieldNumber: fieldNumber,
		WireType:    wireType,
		Offset:      offset,
		Data:        data,
	}, nil
}

// decodeRawValue decodes without type information
func (d *Decoder) decodeRawValue(wireType WireType) (interface{}, error) {
	switch wireType {
	case WireVarint:
		return d.DecodeVarint()
	case WireFixed64:
		return d.DecodeFixed64()
	case WireBytes:
		return d.DecodeBytes()
	case WireFixed32:
		v, err := d.DecodeFixed32()
		return uint64(v), err
	case WireStartGroup, WireEndGroup:
		// group markers carry no payload
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidWireType, wireType)
	}
}
