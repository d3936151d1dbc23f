package schema

// File represents a group of message and enum definitions sharing a package,
// usually one .proto file.
type File struct {
	Name     string     `json:"name"`     // action.proto
	Package  string     `json:"package"`  // lumera.action
	Syntax   string     `json:"syntax"`   // proto2 or proto3
	Imports  []string   `json:"imports"`  // imported files
	Messages []*Message `json:"messages"` // message definitions
	Enums    []*Enum    `json:"enums"`    // enum definitions
}

// Message represents a message descriptor. Field order is encode emission order.
type Message struct {
	Name        string     `json:"name"`         // fully qualified: "lumera.action.Action"
	Fields      []*Field   `json:"fields"`       // message fields
	NestedTypes []*Message `json:"nested_types"` // nested messages (registered by the registry)
	NestedEnums []*Enum    `json:"nested_enums"` // nested enums
	MapEntry    bool       `json:"map_entry"`    // synthetic key/value entry of a map field

	byNumber map[int32]*Field
	byName   map[string]*Field
}

// Field represents a message field
type Field struct {
	Name     string     `json:"name"`      // "action_id" or "actionID"
	JSONName string     `json:"json_name"` // lowerCamel form, derived from Name when empty
	Number   int32      `json:"number"`    // 1
	Label    FieldLabel `json:"label"`     // optional or repeated
	Kind     Kind       `json:"kind"`      // scalar kind, enum or message
	TypeName string     `json:"type_name"` // for enum and message kinds: "lumera.action.ActionState"
	Default  any        `json:"default"`   // nil means the kind's zero value

	enum    *Enum
	message *Message
}

// FieldLabel represents field labels
type FieldLabel string

const (
	LabelOptional FieldLabel = "optional"
	LabelRepeated FieldLabel = "repeated"
)

// Kind is the semantic kind of a field value.
type Kind string

const (
	KindBool    Kind = "bool"
	KindInt32   Kind = "int32"
	KindInt64   Kind = "int64"
	KindUint64  Kind = "uint64"
	KindDouble  Kind = "double"
	KindString  Kind = "string"
	KindBytes   Kind = "bytes"
	KindEnum    Kind = "enum"
	KindMessage Kind = "message"
)

// WireType represents protobuf wire format types
type WireType int32

const (
	WireVarint     WireType = 0 // int32, int64, uint64, bool, enum
	WireFixed64    WireType = 1 // double
	WireBytes      WireType = 2 // string, bytes, embedded messages, packed repeated fields
	WireStartGroup WireType = 3 // deprecated groups, skipped only
	WireEndGroup   WireType = 4 // terminates the current message
	WireFixed32    WireType = 5 // reserved
)

// WireType returns the wire type a kind is encoded with.
func (k Kind) WireType() WireType {
	switch k {
	case KindString, KindBytes, KindMessage:
		return WireBytes
	case KindDouble:
		return WireFixed64
	default:
		return WireVarint
	}
}

// Packable reports whether repeated values of this kind may arrive packed.
func (k Kind) Packable() bool {
	return k.WireType() != WireBytes
}

// Is64Bit reports whether values of this kind are subject to the safe-integer range check.
func (k Kind) Is64Bit() bool {
	return k == KindInt64 || k == KindUint64
}

// IsRepeated reports whether the field holds a sequence.
func (f *Field) IsRepeated() bool { return f.Label == LabelRepeated }

// WireType returns the declared wire type of one element of the field.
func (f *Field) WireType() WireType { return f.Kind.WireType() }

// Enum returns the resolved enum descriptor of an enum field.
func (f *Field) Enum() *Enum { return f.enum }

// Message returns the resolved descriptor of a message field.
func (f *Field) Message() *Message { return f.message }

// ResolveEnum binds the field to its enum descriptor. Used by descriptor tables
// declared in Go, and by the registry after loading .proto files.
func (f *Field) ResolveEnum(e *Enum) { f.enum = e }

// ResolveMessage binds the field to its nested message descriptor.
func (f *Field) ResolveMessage(m *Message) { f.message = m }

// FieldByNumber finds a field by its number.
func (m *Message) FieldByNumber(n int32) *Field {
	if m.byNumber != nil {
		return m.byNumber[n]
	}
	for _, f := range m.Fields {
		if f.Number == n {
			return f
		}
	}
	return nil
}

// FieldByName finds a field by its original or JSON name.
func (m *Message) FieldByName(name string) *Field {
	if m.byName != nil {
		return m.byName[name]
	}
	for _, f := range m.Fields {
		if f.Name == name || f.JSONName == name {
			return f
		}
	}
	return nil
}

// Enum represents an enum definition
type Enum struct {
	Name   string       `json:"name"`   // "lumera.action.ActionState"
	Values []*EnumValue `json:"values"` // enum values

	byNumber map[int32]*EnumValue
	byName   map[string]*EnumValue
}

// EnumValue represents an enum value
type EnumValue struct {
	Name   string `json:"name"`   // "ACTION_STATE_PENDING"
	Number int32  `json:"number"` // 1
}

// Reserved enum member used for ordinals and names absent from the definition.
const (
	UnrecognizedName   = "UNRECOGNIZED"
	UnrecognizedNumber = int32(-1)
)

// ByNumber returns the enum member with the given ordinal.
func (e *Enum) ByNumber(n int32) (*EnumValue, bool) {
	if e.byNumber != nil {
		v, ok := e.byNumber[n]
		return v, ok
	}
	for _, v := range e.Values {
		if v.Number == n {
			return v, true
		}
	}
	return nil, false
}

// ByName returns the enum member with the given symbolic name.
func (e *Enum) ByName(name string) (*EnumValue, bool) {
	if e.byName != nil {
		v, ok := e.byName[name]
		return v, ok
	}
	for _, v := range e.Values {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}
