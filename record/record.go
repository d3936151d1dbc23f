// Package record holds the in-memory form of one message instance.
//
// A Record is bound to a linked schema.Message and stores one value per
// field, using these Go types:
//
//	bool     -> bool
//	int32    -> int32
//	int64    -> int64
//	uint64   -> uint64
//	double   -> float64
//	string   -> string
//	bytes    -> []byte
//	enum     -> EnumValue
//	message  -> *Record (nil when absent)
//	repeated -> []any holding the element type above
//
// Setters reject values of any other type, so a Record is always well formed
// for the codec. They normalize enum values against the enum and store deep
// copies of nested records and byte slices: a Record exclusively owns
// everything reachable from it.
package record

import (
	"bytes"
	"fmt"
	"math"

	"github.com/lumera-tools/protolite/schema"
)

// EnumValue is an enum ordinal. Unrecognized marks ordinals or names that are
// not members of the enum; Number keeps the raw ordinal so the value survives
// re-encoding.
type EnumValue struct {
	Number       int32
	Unrecognized bool
}

// Unrecognized is the sentinel produced for unknown enum names.
var Unrecognized = EnumValue{Number: schema.UnrecognizedNumber, Unrecognized: true}

// ResolveEnum maps an ordinal onto the enum, producing the unrecognized
// variant for ordinals the enum does not define.
func ResolveEnum(e *schema.Enum, n int32) EnumValue {
	if _, ok := e.ByNumber(n); ok {
		return EnumValue{Number: n}
	}
	return EnumValue{Number: n, Unrecognized: true}
}

// ResolveEnumName maps a symbolic name onto the enum. Unknown names, and the
// reserved UNRECOGNIZED name, yield the Unrecognized sentinel.
func ResolveEnumName(e *schema.Enum, name string) EnumValue {
	if v, ok := e.ByName(name); ok {
		return EnumValue{Number: v.Number}
	}
	return Unrecognized
}

// EnumName returns the symbolic name of v.
func EnumName(e *schema.Enum, v EnumValue) string {
	if v.Unrecognized {
		return schema.UnrecognizedName
	}
	if ev, ok := e.ByNumber(v.Number); ok {
		return ev.Name
	}
	return schema.UnrecognizedName
}

// Record is one message instance.
type Record struct {
	desc   *schema.Message
	values map[int32]any
}

// New creates a record with every field at its default.
func New(desc *schema.Message) *Record {
	r := &Record{
		desc:   desc,
		values: make(map[int32]any, len(desc.Fields)),
	}
	for _, f := range desc.Fields {
		r.values[f.Number] = defaultOf(f)
	}
	return r
}

// Descriptor returns the message descriptor the record is bound to.
func (r *Record) Descriptor() *schema.Message { return r.desc }

// Get returns the value of the named field. Slices and nested records are
// returned without copying, so changes made through them stay in r.
func (r *Record) Get(name string) (any, error) {
	f, err := r.field(name)
	if err != nil {
		return nil, err
	}
	return r.values[f.Number], nil
}

// GetField returns the value of f, which must belong to the record's descriptor.
func (r *Record) GetField(f *schema.Field) any {
	return r.values[f.Number]
}

// Set assigns a singular field, or replaces a repeated field with a []any.
// Nested records are copied; later changes to v do not reach r.
func (r *Record) Set(name string, v any) error {
	f, err := r.field(name)
	if err != nil {
		return err
	}
	return r.SetField(f, v)
}

// SetField is Set for a field descriptor already at hand.
func (r *Record) SetField(f *schema.Field, v any) error {
	if f.IsRepeated() {
		list, ok := v.([]any)
		if !ok {
			return fmt.Errorf("field %s is repeated, got %T", f.Name, v)
		}
		out := make([]any, 0, len(list))
		for i, e := range list {
			ce, err := checkValue(f, e)
			if err != nil {
				return fmt.Errorf("field %s[%d]: %w", f.Name, i, err)
			}
			out = append(out, ce)
		}
		r.values[f.Number] = out
		return nil
	}
	cv, err := checkValue(f, v)
	if err != nil {
		return fmt.Errorf("field %s: %w", f.Name, err)
	}
	r.values[f.Number] = cv
	return nil
}

// Append adds one element to a repeated field.
func (r *Record) Append(name string, v any) error {
	f, err := r.field(name)
	if err != nil {
		return err
	}
	return r.AppendField(f, v)
}

// AppendField is Append for a field descriptor already at hand.
func (r *Record) AppendField(f *schema.Field, v any) error {
	if !f.IsRepeated() {
		return fmt.Errorf("field %s is not repeated", f.Name)
	}
	cv, err := checkValue(f, v)
	if err != nil {
		return fmt.Errorf("field %s: %w", f.Name, err)
	}
	r.values[f.Number] = append(r.values[f.Number].([]any), cv)
	return nil
}

// List returns the elements of a repeated field.
func (r *Record) List(name string) ([]any, error) {
	f, err := r.field(name)
	if err != nil {
		return nil, err
	}
	if !f.IsRepeated() {
		return nil, fmt.Errorf("field %s is not repeated", f.Name)
	}
	return r.values[f.Number].([]any), nil
}

// IsDefault reports whether the field holds its default value: the declared
// default for singular scalars, nil for messages, no elements for repeated fields.
func (r *Record) IsDefault(f *schema.Field) bool {
	v := r.values[f.Number]
	if f.IsRepeated() {
		return len(v.([]any)) == 0
	}
	if f.Kind == schema.KindMessage {
		return v.(*Record) == nil
	}
	return valueEqual(f.Kind, v, defaultOf(f))
}

// Reset puts every field back to its default.
func (r *Record) Reset() {
	for _, f := range r.desc.Fields {
		r.values[f.Number] = defaultOf(f)
	}
}

// Equal reports field-wise equality. Records bound to different descriptors
// are never equal.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.desc != o.desc {
		return false
	}
	for _, f := range r.desc.Fields {
		a, b := r.values[f.Number], o.values[f.Number]
		if !f.IsRepeated() {
			if !valueEqual(f.Kind, a, b) {
				return false
			}
			continue
		}
		la, lb := a.([]any), b.([]any)
		if len(la) != len(lb) {
			return false
		}
		for i := range la {
			if !valueEqual(f.Kind, la[i], lb[i]) {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := &Record{desc: r.desc, values: make(map[int32]any, len(r.values))}
	for _, f := range r.desc.Fields {
		v := r.values[f.Number]
		if !f.IsRepeated() {
			c.values[f.Number] = cloneValue(f.Kind, v)
			continue
		}
		list := v.([]any)
		out := make([]any, len(list))
		for i, e := range list {
			out[i] = cloneValue(f.Kind, e)
		}
		c.values[f.Number] = out
	}
	return c
}

// String renders the record for debugging.
func (r *Record) String() string {
	if r == nil {
		return "<nil>"
	}
	var buf bytes.Buffer
	buf.WriteString(r.desc.Name)
	buf.WriteByte('{')
	first := true
	for _, f := range r.desc.Fields {
		if r.IsDefault(f) {
			continue
		}
		if !first {
			buf.WriteByte(' ')
		}
		first = false
		fmt.Fprintf(&buf, "%s:%v", f.Name, r.values[f.Number])
	}
	buf.WriteByte('}')
	return buf.String()
}

func (r *Record) field(name string) (*schema.Field, error) {
	f := r.desc.FieldByName(name)
	if f == nil {
		return nil, fmt.Errorf("message %s has no field %q", r.desc.Name, name)
	}
	return f, nil
}

func defaultOf(f *schema.Field) any {
	if f.IsRepeated() {
		return []any{}
	}
	switch f.Kind {
	case schema.KindMessage:
		return (*Record)(nil)
	case schema.KindEnum:
		return EnumValue{Number: f.DefaultValue().(int32)}
	case schema.KindBytes:
		// defaults are shared by the descriptor, hand out a private copy
		return bytes.Clone(f.DefaultValue().([]byte))
	default:
		return f.DefaultValue()
	}
}

// checkValue verifies v has the Go type of the field's kind and returns the
// value to store.
func checkValue(f *schema.Field, v any) (any, error) {
	ok := false
	switch f.Kind {
	case schema.KindBool:
		_, ok = v.(bool)
	case schema.KindInt32:
		_, ok = v.(int32)
	case schema.KindInt64:
		_, ok = v.(int64)
	case schema.KindUint64:
		_, ok = v.(uint64)
	case schema.KindDouble:
		_, ok = v.(float64)
	case schema.KindString:
		_, ok = v.(string)
	case schema.KindBytes:
		var b []byte
		if b, ok = v.([]byte); ok {
			if b == nil {
				return []byte{}, nil
			}
			return bytes.Clone(b), nil
		}
	case schema.KindEnum:
		var ev EnumValue
		if ev, ok = v.(EnumValue); ok && f.Enum() != nil {
			return ResolveEnum(f.Enum(), ev.Number), nil
		}
	case schema.KindMessage:
		var nested *Record
		if nested, ok = v.(*Record); ok && nested != nil && nested.desc != f.Message() {
			return nil, fmt.Errorf("expected record of %s, got %s", f.Message().Name, nested.desc.Name)
		}
		if ok && nested == nil && f.IsRepeated() {
			return nil, fmt.Errorf("repeated message elements cannot be nil")
		}
		if ok {
			return nested.Clone(), nil
		}
	}
	if !ok {
		return nil, fmt.Errorf("expected %s value, got %T", f.Kind, v)
	}
	return v, nil
}

func cloneValue(k schema.Kind, v any) any {
	switch k {
	case schema.KindBytes:
		return bytes.Clone(v.([]byte))
	case schema.KindMessage:
		return v.(*Record).Clone()
	default:
		return v
	}
}

func valueEqual(k schema.Kind, a, b any) bool {
	switch k {
	case schema.KindBytes:
		return bytes.Equal(a.([]byte), b.([]byte))
	case schema.KindMessage:
		return a.(*Record).Equal(b.(*Record))
	case schema.KindDouble:
		x, y := a.(float64), b.(float64)
		if math.IsNaN(x) && math.IsNaN(y) {
			return true
		}
		return x == y && math.Signbit(x) == math.Signbit(y)
	default:
		return a == b
	}
}
