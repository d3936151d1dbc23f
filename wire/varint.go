package wire

import "fmt"

// VarintDecoder handles varint decoding operations
type VarintDecoder struct {
	decoder *Decoder
}

// VarintEncoder handles varint encoding operations
type VarintEncoder struct {
	encoder *Encoder
}

// NewVarintDecoder creates a new varint decoder
func NewVarintDecoder(d *Decoder) *VarintDecoder {
	return &VarintDecoder{decoder: d}
}

// NewVarintEncoder creates a new varint encoder
func NewVarintEncoder(e *Encoder) *VarintEncoder {
	return &VarintEncoder{encoder: e}
}

// DECODER METHODS

// DecodeVarint decodes a varint from the current position
func (vd *VarintDecoder) DecodeVarint() (uint64, error) {
	d := vd.decoder
	var result uint64
	var shift uint

	for i := 0; i < 10; i++ { // Max 10 bytes for 64-bit varint
		if d.pos >= d.end {
			return 0, fmt.Errorf("%w: varint ends after %d bytes", ErrTruncated, i)
		}

		b := d.buf[d.pos]
		d.pos++

		// the tenth byte may only contribute the top bit
		if i == 9 && b > 1 {
			return 0, ErrVarintOverflow
		}

		result |= uint64(b&0x7F) << shift

		if (b & 0x80) == 0 {
			return result, nil
		}

		shift += 7
	}

	return 0, ErrVarintOverflow
}

// DecodeInt32 decodes a varint as int32, keeping the low 32 bits
func (vd *VarintDecoder) DecodeInt32() (int32, error) {
	v, err := vd.DecodeVarint()
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// DecodeInt64 decodes a varint as int64 inside the safe integer range
func (vd *VarintDecoder) DecodeInt64() (int64, error) {
	v, err := vd.DecodeVarint()
	if err != nil {
		return 0, err
	}
	n := int64(v)
	if err := CheckSafeInt64(n); err != nil {
		return 0, err
	}
	return n, nil
}

// DecodeUint64 decodes a varint as uint64 inside the safe integer range
func (vd *VarintDecoder) DecodeUint64() (uint64, error) {
	v, err := vd.DecodeVarint()
	if err != nil {
		return 0, err
	}
	if err := CheckSafeUint64(v); err != nil {
		return 0, err
	}
	return v, nil
}

// DecodeBool decodes a varint as bool
func (vd *VarintDecoder) DecodeBool() (bool, error) {
	v, err := vd.DecodeVarint()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// DecodeEnum decodes a varint as enum ordinal
func (vd *VarintDecoder) DecodeEnum() (int32, error) {
	return vd.DecodeInt32()
}

// SkipVarint skips over a varint without decoding it
func (vd *VarintDecoder) SkipVarint() error {
	d := vd.decoder
	for i := 0; i < 10; i++ {
		if d.pos >= d.end {
			return fmt.Errorf("%w: varint ends after %d bytes", ErrTruncated, i)
		}

		b := d.buf[d.pos]
		d.pos++

		if (b & 0x80) == 0 {
			return nil
		}
	}
	return ErrVarintOverflow
}

// ENCODER METHODS

// EncodeVarint encodes a uint64 as varint
func (ve *VarintEncoder) EncodeVarint(v uint64) {
	for v >= 0x80 {
		ve.encoder.buf = append(ve.encoder.buf, byte(v)|0x80)
		v >>= 7
	}
	ve.encoder.buf = append(ve.encoder.buf, byte(v))
}

// EncodeInt32 encodes an int32 as varint; negative values take ten bytes
func (ve *VarintEncoder) EncodeInt32(v int32) {
	ve.EncodeVarint(uint64(v))
}

// EncodeInt64 encodes an int64 inside the safe integer range as varint
func (ve *VarintEncoder) EncodeInt64(v int64) error {
	if err := CheckSafeInt64(v); err != nil {
		return err
	}
	ve.EncodeVarint(uint64(v))
	return nil
}

// EncodeUint64 encodes a uint64 inside the safe integer range as varint
func (ve *VarintEncoder) EncodeUint64(v uint64) error {
	if err := CheckSafeUint64(v); err != nil {
		return err
	}
	ve.EncodeVarint(v)
	return nil
}

// EncodeBool encodes a bool as varint
func (ve *VarintEncoder) EncodeBool(v bool) {
	if v {
		ve.EncodeVarint(1)
	} else {
		ve.EncodeVarint(0)
	}
}

// EncodeEnum encodes an enum ordinal as varint
func (ve *VarintEncoder) EncodeEnum(v int32) {
	ve.EncodeInt32(v)
}

// EncodeTag encodes a field tag
func (ve *VarintEncoder) EncodeTag(fieldNumber FieldNumber, wireType WireType) {
	ve.EncodeVarint(uint64(MakeTag(fieldNumber, wireType)))
}

// UTILITY FUNCTIONS

// VarintSize returns the number of bytes needed to encode the given varint
func VarintSize(v uint64) int {
	switch {
	case v < 1<<7:
		return 1
	case v < 1<<14:
		return 2
	case v < 1<<21:
		return 3
	case v < 1<<28:
		return 4
	case v < 1<<35:
		return 5
	case v < 1<<42:
		return 6
	case v < 1<<49:
		return 7
	case v < 1<<56:
		return 8
	case v < 1<<63:
		return 9
	default:
		return 10
	}
}

// Convenience methods for direct access

// DecodeVarint - convenience method for main decoder
func (d *Decoder) DecodeVarint() (uint64, error) {
	vd := NewVarintDecoder(d)
	return vd.DecodeVarint()
}

// EncodeVarint - convenience method for main encoder
func (e *Encoder) EncodeVarint(v uint64) {
	ve := NewVarintEncoder(e)
	ve.EncodeVarint(v)
}
