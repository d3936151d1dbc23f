package wire

import "github.com/lumera-tools/protolite/schema"

// ===== PROTOBUF WIRE FORMAT TYPES =====

// WireType represents protobuf wire format types
type WireType = schema.WireType

const (
	WireVarint     = schema.WireVarint     // int32, int64, uint64, bool, enum
	WireFixed64    = schema.WireFixed64    // double
	WireBytes      = schema.WireBytes      // string, bytes, embedded messages, packed repeated fields
	WireStartGroup = schema.WireStartGroup // deprecated groups
	WireEndGroup   = schema.WireEndGroup   // ends the current message
	WireFixed32    = schema.WireFixed32    // reserved
)

// FieldNumber represents a protobuf field number
type FieldNumber int64

// Tag represents a protobuf field tag (field number + wire type)
type Tag uint64

// MakeTag creates a tag from field number and wire type
func MakeTag(fieldNumber FieldNumber, wireType WireType) Tag {
	return Tag(uint64(fieldNumber)<<3 | uint64(wireType&0x7))
}

// ParseTag parses a tag into field number and wire type
func ParseTag(tag Tag) (FieldNumber, WireType) {
	return FieldNumber(tag >> 3), WireType(tag & 0x7)
}

// Value represents a field decoded without a schema
type Value struct {
	FieldNumber FieldNumber
	WireType    WireType
	Offset      int         // position of the tag in the input
	Data        interface{} // uint64 for varint/fixed values, []byte for length-delimited
}
