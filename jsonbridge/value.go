package jsonbridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Kind is the JSON type of a Value.
type Kind int

const (
	NullKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	ArrayKind
	ObjectKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null"
	case BoolKind:
		return "bool"
	case NumberKind:
		return "number"
	case StringKind:
		return "string"
	case ArrayKind:
		return "array"
	case ObjectKind:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is one node of a JSON document. Numbers keep their literal text so
// 64-bit integers never pass through float64; object members keep their
// input order. The zero Value is null.
type Value struct {
	kind    Kind
	boolean bool
	text    string // number literal or string contents
	elems   []Value
	members []Member
}

// Member is one key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

func Null() Value { return Value{} }

func Bool(b bool) Value { return Value{kind: BoolKind, boolean: b} }

func String(s string) Value { return Value{kind: StringKind, text: s} }

func Int(n int64) Value { return Value{kind: NumberKind, text: strconv.FormatInt(n, 10)} }

func Uint(n uint64) Value { return Value{kind: NumberKind, text: strconv.FormatUint(n, 10)} }

// Float returns a number for finite f. NaN and infinities have no JSON
// number form; they become the strings "NaN", "Infinity" and "-Infinity".
func Float(f float64) Value {
	switch {
	case math.IsNaN(f):
		return String("NaN")
	case math.IsInf(f, 1):
		return String("Infinity")
	case math.IsInf(f, -1):
		return String("-Infinity")
	}
	return Value{kind: NumberKind, text: strconv.FormatFloat(f, 'g', -1, 64)}
}

// Number wraps a number literal. The literal is not validated.
func Number(n json.Number) Value { return Value{kind: NumberKind, text: string(n)} }

func Array(elems ...Value) Value { return Value{kind: ArrayKind, elems: elems} }

func Object(members ...Member) Value { return Value{kind: ObjectKind, members: members} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == NullKind }

// AsBool returns the boolean and whether v is one.
func (v Value) AsBool() (bool, bool) { return v.boolean, v.kind == BoolKind }

// AsNumber returns the number literal and whether v is a number.
func (v Value) AsNumber() (json.Number, bool) { return json.Number(v.text), v.kind == NumberKind }

// AsString returns the string and whether v is one.
func (v Value) AsString() (string, bool) { return v.text, v.kind == StringKind }

// Elems returns the elements of an array, nil for other kinds.
func (v Value) Elems() []Value { return v.elems }

// Members returns the members of an object in input order, nil for other kinds.
func (v Value) Members() []Member { return v.members }

// Get returns the member named key. With duplicate keys the last one wins.
func (v Value) Get(key string) (Value, bool) {
	for i := len(v.members) - 1; i >= 0; i-- {
		if v.members[i].Key == key {
			return v.members[i].Value, true
		}
	}
	return Value{}, false
}

// MarshalJSON renders v compactly.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) write(buf *bytes.Buffer) error {
	switch v.kind {
	case NullKind:
		buf.WriteString("null")
	case BoolKind:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case NumberKind:
		if !json.Valid([]byte(v.text)) {
			return fmt.Errorf("invalid number literal %q", v.text)
		}
		buf.WriteString(v.text)
	case StringKind:
		writeString(buf, v.text)
	case ArrayKind:
		buf.WriteByte('[')
		for i, e := range v.elems {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.write(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case ObjectKind:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, m.Key)
			buf.WriteByte(':')
			if err := m.Value.write(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown value kind %d", v.kind)
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// encoding a string cannot fail
	_ = enc.Encode(s)
	// Encode terminates with a newline
	buf.Truncate(buf.Len() - 1)
}

// Parse reads exactly one JSON document.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := parseValue(dec)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("%w: trailing data after JSON document", ErrSyntax)
	}
	return v, nil
}

func parseValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}

	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '[':
			elems := []Value{}
			for dec.More() {
				e, err := parseValue(dec)
				if err != nil {
					return Value{}, err
				}
				elems = append(elems, e)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Array(elems...), nil
		case '{':
			members := []Member{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("object key is %T", keyTok)
				}
				val, err := parseValue(dec)
				if err != nil {
					return Value{}, err
				}
				members = append(members, Member{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Object(members...), nil
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}
