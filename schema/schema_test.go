package schema

import (
	"errors"
	"testing"
)

type mapResolver struct {
	messages map[string]*Message
	enums    map[string]*Enum
}

func (r mapResolver) GetMessage(name string) (*Message, error) {
	if m, ok := r.messages[name]; ok {
		return m, nil
	}
	return nil, errors.New("message not found: " + name)
}

func (r mapResolver) GetEnum(name string) (*Enum, error) {
	if e, ok := r.enums[name]; ok {
		return e, nil
	}
	return nil, errors.New("enum not found: " + name)
}

func TestToLowerCamel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"creator", "creator"},
		{"actionID", "actionID"},
		{"block_height", "blockHeight"},
		{"prev_ip_addresses", "prevIpAddresses"},
		{"Version", "version"},
		{"_leading", "leading"},
	}
	for _, tt := range tests {
		if got := ToLowerCamel(tt.in); got != tt.want {
			t.Errorf("ToLowerCamel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKindWireType(t *testing.T) {
	tests := []struct {
		kind Kind
		want WireType
		is64 bool
	}{
		{KindBool, WireVarint, false},
		{KindInt32, WireVarint, false},
		{KindInt64, WireVarint, true},
		{KindUint64, WireVarint, true},
		{KindEnum, WireVarint, false},
		{KindDouble, WireFixed64, false},
		{KindString, WireBytes, false},
		{KindBytes, WireBytes, false},
		{KindMessage, WireBytes, false},
	}
	for _, tt := range tests {
		if got := tt.kind.WireType(); got != tt.want {
			t.Errorf("%s.WireType() = %d, want %d", tt.kind, got, tt.want)
		}
		if got := tt.kind.Is64Bit(); got != tt.is64 {
			t.Errorf("%s.Is64Bit() = %v, want %v", tt.kind, got, tt.is64)
		}
	}
	if KindString.Packable() || !KindInt64.Packable() {
		t.Error("only non length-delimited kinds are packable")
	}
}

func TestMessageLink(t *testing.T) {
	state := &Enum{Name: "test.State", Values: []*EnumValue{{Name: "STATE_UNSPECIFIED", Number: 0}, {Name: "STATE_ON", Number: 1}}}
	if err := state.Link(); err != nil {
		t.Fatalf("enum link: %v", err)
	}
	inner := &Message{Name: "test.Inner", Fields: []*Field{{Name: "id", Number: 1, Kind: KindString}}}
	r := mapResolver{
		messages: map[string]*Message{"test.Inner": inner},
		enums:    map[string]*Enum{"test.State": state},
	}

	t.Run("resolves references", func(t *testing.T) {
		msg := &Message{Name: "test.Outer", Fields: []*Field{
			{Name: "block_height", Number: 1, Kind: KindInt64},
			{Name: "state", Number: 2, Kind: KindEnum, TypeName: "test.State", Default: int32(1)},
			{Name: "inner", Number: 3, Kind: KindMessage, TypeName: "test.Inner"},
		}}
		if err := msg.Link(r); err != nil {
			t.Fatalf("link: %v", err)
		}
		if f := msg.FieldByName("blockHeight"); f == nil || f.Number != 1 {
			t.Errorf("lookup by JSON name failed: %+v", f)
		}
		if f := msg.FieldByName("block_height"); f == nil || f.JSONName != "blockHeight" {
			t.Errorf("lookup by original name failed: %+v", f)
		}
		if msg.FieldByNumber(2).Enum() != state {
			t.Error("enum reference not resolved")
		}
		if msg.FieldByNumber(3).Message() != inner {
			t.Error("message reference not resolved")
		}
		if msg.FieldByNumber(2).DefaultValue() != int32(1) {
			t.Error("declared default not reported")
		}
		if msg.FieldByNumber(99) != nil {
			t.Error("unexpected field for unknown number")
		}
	})

	invalid := []struct {
		name   string
		fields []*Field
	}{
		{"zero number", []*Field{{Name: "a", Number: 0, Kind: KindBool}}},
		{"reserved number", []*Field{{Name: "a", Number: 19001, Kind: KindBool}}},
		{"duplicate number", []*Field{{Name: "a", Number: 1, Kind: KindBool}, {Name: "b", Number: 1, Kind: KindString}}},
		{"unknown kind", []*Field{{Name: "a", Number: 1, Kind: "float"}}},
		{"unresolved enum", []*Field{{Name: "a", Number: 1, Kind: KindEnum, TypeName: "test.Missing"}}},
		{"default type mismatch", []*Field{{Name: "a", Number: 1, Kind: KindInt64, Default: int32(3)}}},
		{"unsafe default", []*Field{{Name: "a", Number: 1, Kind: KindUint64, Default: uint64(1 << 60)}}},
		{"repeated default", []*Field{{Name: "a", Number: 1, Kind: KindString, Label: LabelRepeated, Default: "x"}}},
		{"enum default outside enum", []*Field{{Name: "a", Number: 1, Kind: KindEnum, TypeName: "test.State", Default: int32(9)}}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			msg := &Message{Name: "test.Bad", Fields: tt.fields}
			err := msg.Link(r)
			if !errors.Is(err, ErrInvalidSchema) {
				t.Fatalf("expected ErrInvalidSchema, got %v", err)
			}
		})
	}
}

func TestMapEntryLink(t *testing.T) {
	entry := &Message{Name: "test.MetricsEntry", MapEntry: true, Fields: []*Field{
		{Name: "key", Number: 1, Kind: KindString},
		{Name: "value", Number: 2, Kind: KindDouble},
	}}
	if err := entry.Link(nil); err != nil {
		t.Fatalf("link: %v", err)
	}

	bad := &Message{Name: "test.BadEntry", MapEntry: true, Fields: []*Field{
		{Name: "key", Number: 1, Kind: KindBytes},
		{Name: "value", Number: 2, Kind: KindDouble},
	}}
	if err := bad.Link(nil); !errors.Is(err, ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema for bytes key, got %v", err)
	}
}

func TestEnumLink(t *testing.T) {
	e := &Enum{Name: "test.Aliased", Values: []*EnumValue{
		{Name: "A", Number: 0},
		{Name: "B", Number: 1},
		{Name: "B_ALIAS", Number: 1},
	}}
	if err := e.Link(); err != nil {
		t.Fatalf("link: %v", err)
	}
	if v, ok := e.ByNumber(1); !ok || v.Name != "B" {
		t.Errorf("aliased number should resolve to first name, got %+v", v)
	}
	if v, ok := e.ByName("B_ALIAS"); !ok || v.Number != 1 {
		t.Errorf("alias lookup failed: %+v", v)
	}

	reserved := &Enum{Name: "test.Reserved", Values: []*EnumValue{{Name: UnrecognizedName, Number: 0}}}
	if err := reserved.Link(); !errors.Is(err, ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}
