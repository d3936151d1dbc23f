package schema

import (
	"errors"
	"fmt"
	"math"
)

const (
	// MaxFieldNumber is the largest field number the wire format can carry.
	MaxFieldNumber = 1<<29 - 1

	// MaxSafeInteger bounds int64 and uint64 field values in both directions.
	// It is the largest integer a float64 represents exactly, which keeps every
	// value interchangeable with JSON numbers.
	MaxSafeInteger = 1<<53 - 1
)

// ErrInvalidSchema is returned for descriptors that cannot drive the codec.
var ErrInvalidSchema = errors.New("invalid schema")

// Resolver looks up descriptors by fully qualified name.
type Resolver interface {
	GetMessage(name string) (*Message, error)
	GetEnum(name string) (*Enum, error)
}

// Link validates an enum and builds its lookup tables.
func (e *Enum) Link() error {
	if len(e.Values) == 0 {
		return fmt.Errorf("%w: enum %s has no values", ErrInvalidSchema, e.Name)
	}
	byNumber := make(map[int32]*EnumValue, len(e.Values))
	byName := make(map[string]*EnumValue, len(e.Values))
	for _, v := range e.Values {
		if v.Name == UnrecognizedName {
			return fmt.Errorf("%w: enum %s declares reserved name %s", ErrInvalidSchema, e.Name, v.Name)
		}
		if _, dup := byName[v.Name]; dup {
			return fmt.Errorf("%w: enum %s declares %s twice", ErrInvalidSchema, e.Name, v.Name)
		}
		byName[v.Name] = v
		// first declared name wins for aliased numbers
		if _, ok := byNumber[v.Number]; !ok {
			byNumber[v.Number] = v
		}
	}
	e.byNumber = byNumber
	e.byName = byName
	return nil
}

// Link validates the message against the wire format rules, resolves enum
// and message references through r and builds the field lookup tables.
// Fields already bound with ResolveEnum/ResolveMessage are not looked up again.
func (m *Message) Link(r Resolver) error {
	byNumber := make(map[int32]*Field, len(m.Fields))
	byName := make(map[string]*Field, len(m.Fields)*2)

	for _, f := range m.Fields {
		if f.Number < 1 || f.Number > MaxFieldNumber {
			return fmt.Errorf("%w: %s.%s has field number %d out of range", ErrInvalidSchema, m.Name, f.Name, f.Number)
		}
		if f.Number >= 19000 && f.Number <= 19999 {
			return fmt.Errorf("%w: %s.%s uses reserved field number %d", ErrInvalidSchema, m.Name, f.Name, f.Number)
		}
		if prev, dup := byNumber[f.Number]; dup {
			return fmt.Errorf("%w: %s.%s reuses field number %d of %s", ErrInvalidSchema, m.Name, f.Name, f.Number, prev.Name)
		}
		if f.Label == "" {
			f.Label = LabelOptional
		}
		if f.JSONName == "" {
			f.JSONName = ToLowerCamel(f.Name)
		}

		switch f.Kind {
		case KindEnum:
			if f.enum == nil {
				if r == nil {
					return fmt.Errorf("%w: %s.%s references enum %s without a resolver", ErrInvalidSchema, m.Name, f.Name, f.TypeName)
				}
				e, err := r.GetEnum(f.TypeName)
				if err != nil {
					return fmt.Errorf("%w: %s.%s: %v", ErrInvalidSchema, m.Name, f.Name, err)
				}
				f.enum = e
			}
		case KindMessage:
			if f.message == nil {
				if r == nil {
					return fmt.Errorf("%w: %s.%s references message %s without a resolver", ErrInvalidSchema, m.Name, f.Name, f.TypeName)
				}
				nested, err := r.GetMessage(f.TypeName)
				if err != nil {
					return fmt.Errorf("%w: %s.%s: %v", ErrInvalidSchema, m.Name, f.Name, err)
				}
				f.message = nested
			}
			if f.Default != nil {
				return fmt.Errorf("%w: %s.%s: message fields cannot declare a default", ErrInvalidSchema, m.Name, f.Name)
			}
		case KindBool, KindInt32, KindInt64, KindUint64, KindDouble, KindString, KindBytes:
		default:
			return fmt.Errorf("%w: %s.%s has unknown kind %q", ErrInvalidSchema, m.Name, f.Name, f.Kind)
		}

		if f.Default != nil {
			if f.IsRepeated() {
				return fmt.Errorf("%w: %s.%s: repeated fields cannot declare a default", ErrInvalidSchema, m.Name, f.Name)
			}
			if err := checkDefault(f); err != nil {
				return fmt.Errorf("%w: %s.%s: %v", ErrInvalidSchema, m.Name, f.Name, err)
			}
		}

		byNumber[f.Number] = f
		byName[f.Name] = f
		byName[f.JSONName] = f
	}

	if m.MapEntry {
		key, value := byNumber[1], byNumber[2]
		if len(m.Fields) != 2 || key == nil || value == nil {
			return fmt.Errorf("%w: map entry %s must have exactly fields key=1 and value=2", ErrInvalidSchema, m.Name)
		}
		switch key.Kind {
		case KindString, KindBool, KindInt32, KindInt64, KindUint64:
		default:
			return fmt.Errorf("%w: map entry %s has unsupported key kind %s", ErrInvalidSchema, m.Name, key.Kind)
		}
	}

	m.byNumber = byNumber
	m.byName = byName
	return nil
}

// DefaultValue returns the value a singular field takes when absent from the
// input. Enum defaults are reported as their int32 ordinal.
func (f *Field) DefaultValue() any {
	if f.Default != nil {
		return f.Default
	}
	return ZeroValue(f.Kind)
}

// ZeroValue returns the proto3 zero value of a kind. Messages have no zero
// value other than absence, reported as nil.
func ZeroValue(k Kind) any {
	switch k {
	case KindBool:
		return false
	case KindInt32, KindEnum:
		return int32(0)
	case KindInt64:
		return int64(0)
	case KindUint64:
		return uint64(0)
	case KindDouble:
		return float64(0)
	case KindString:
		return ""
	case KindBytes:
		return []byte{}
	default:
		return nil
	}
}

func checkDefault(f *Field) error {
	ok := false
	switch f.Kind {
	case KindBool:
		_, ok = f.Default.(bool)
	case KindInt32:
		_, ok = f.Default.(int32)
	case KindInt64:
		var v int64
		if v, ok = f.Default.(int64); ok && (v > MaxSafeInteger || v < -MaxSafeInteger) {
			return fmt.Errorf("default %d outside the safe integer range", v)
		}
	case KindUint64:
		var v uint64
		if v, ok = f.Default.(uint64); ok && v > MaxSafeInteger {
			return fmt.Errorf("default %d outside the safe integer range", v)
		}
	case KindDouble:
		var v float64
		if v, ok = f.Default.(float64); ok && math.IsNaN(v) {
			return fmt.Errorf("default must not be NaN")
		}
	case KindString:
		_, ok = f.Default.(string)
	case KindBytes:
		_, ok = f.Default.([]byte)
	case KindEnum:
		var n int32
		if n, ok = f.Default.(int32); ok {
			if _, known := f.enum.ByNumber(n); !known {
				return fmt.Errorf("default %d is not a member of %s", n, f.enum.Name)
			}
		}
	}
	if !ok {
		return fmt.Errorf("default of type %T does not match kind %s", f.Default, f.Kind)
	}
	return nil
}
