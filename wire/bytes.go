package wire

import (
	"fmt"
	"slices"
)

// BytesDecoder handles length-delimited bytes decoding operations
type BytesDecoder struct {
	decoder *Decoder
}

// BytesEncoder handles length-delimited bytes encoding operations
type BytesEncoder struct {
	encoder *Encoder
}

// NewBytesDecoder creates a new bytes decoder
func NewBytesDecoder(d *Decoder) *BytesDecoder {
	return &BytesDecoder{decoder: d}
}

// NewBytesEncoder creates a new bytes encoder
func NewBytesEncoder(e *Encoder) *BytesEncoder {
	return &BytesEncoder{encoder: e}
}

// DECODER METHODS

// DecodeLength decodes a length prefix and checks the payload fits before
// the effective end of the input.
func (bd *BytesDecoder) DecodeLength() (int, error) {
	vd := NewVarintDecoder(bd.decoder)
	length, err := vd.DecodeVarint()
	if err != nil {
		return 0, fmt.Errorf("failed to decode length: %w", err)
	}

	d := bd.decoder
	if length > uint64(d.end-d.pos) {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, length, d.end-d.pos)
	}
	return int(length), nil
}

// DecodeBytes decodes a length-delimited byte array
func (bd *BytesDecoder) DecodeBytes() ([]byte, error) {
	raw, err := bd.DecodeRawBytes()
	if err != nil {
		return nil, err
	}

	// Copy the data to avoid sharing the underlying buffer
	data := make([]byte, len(raw))
	copy(data, raw)
	return data, nil
}

// DecodeString decodes a length-delimited string
func (bd *BytesDecoder) DecodeString() (string, error) {
	raw, err := bd.DecodeRawBytes()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeRawBytes decodes bytes without copying (shares buffer)
func (bd *BytesDecoder) DecodeRawBytes() ([]byte, error) {
	length, err := bd.DecodeLength()
	if err != nil {
		return nil, err
	}

	d := bd.decoder
	data := d.buf[d.pos : d.pos+length]
	d.pos += length

	return data, nil
}

// SkipBytes skips over a length-delimited byte array
func (bd *BytesDecoder) SkipBytes() error {
	length, err := bd.DecodeLength()
	if err != nil {
		return err
	}

	bd.decoder.pos += length
	return nil
}

// ENCODER METHODS

// EncodeBytes encodes a byte array as length-delimited
func (be *BytesEncoder) EncodeBytes(data []byte) {
	be.encoder.buf = slices.Grow(be.encoder.buf, BytesSize(data))

	ve := NewVarintEncoder(be.encoder)
	ve.EncodeVarint(uint64(len(data)))

	be.encoder.buf = append(be.encoder.buf, data...)
}

// EncodeString encodes a string as length-delimited UTF-8 bytes
func (be *BytesEncoder) EncodeString(s string) {
	be.encoder.buf = slices.Grow(be.encoder.buf, StringSize(s))

	ve := NewVarintEncoder(be.encoder)
	ve.EncodeVarint(uint64(len(s)))

	be.encoder.buf = append(be.encoder.buf, s...)
}

// UTILITY FUNCTIONS

// BytesSize returns the size needed to encode the given bytes
func BytesSize(data []byte) int {
	return VarintSize(uint64(len(data))) + len(data)
}

// StringSize returns the size needed to encode the given string
func StringSize(s string) int {
	return VarintSize(uint64(len(s))) + len(s)
}

// Convenience methods for direct access

// DecodeBytes - convenience method for main decoder
func (d *Decoder) DecodeBytes() ([]byte, error) {
	bd := NewBytesDecoder(d)
	return bd.DecodeBytes()
}

// EncodeBytes - convenience method for main encoder
func (e *Encoder) EncodeBytes(data []byte) {
	be := NewBytesEncoder(e)
	be.EncodeBytes(data)
}

// EncodeString - convenience method for main encoder
func (e *Encoder) EncodeString(s string) {
	be := NewBytesEncoder(e)
	be.EncodeString(s)
}
