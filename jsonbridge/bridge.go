// Package jsonbridge maps records to and from their JSON form.
//
// Field names are the descriptor's JSON names (lowerCamel) on output; input
// accepts either the JSON or the original name. Enums are written as their
// symbolic names, bytes as standard base64 and 64-bit integers as JSON
// numbers. Fields holding their default are omitted.
package jsonbridge

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/lumera-tools/protolite/record"
	"github.com/lumera-tools/protolite/schema"
	"github.com/lumera-tools/protolite/wire"
)

var (
	// ErrShapeMismatch reports a JSON value of the wrong type for its field.
	ErrShapeMismatch = errors.New("JSON value does not match field type")

	// ErrSyntax reports input that is not a single well-formed JSON document.
	ErrSyntax = errors.New("malformed JSON")
)

// MarshalOptions configures JSON output.
type MarshalOptions struct {
	// UseProtoNames writes the original field names instead of lowerCamel ones.
	UseProtoNames bool

	// Indent, when set, pretty-prints with this indentation per level.
	Indent string
}

// ToJSON converts rec with default options.
func ToJSON(rec *record.Record) Value {
	return MarshalOptions{}.ToJSON(rec)
}

// Marshal renders rec as JSON with default options.
func Marshal(rec *record.Record) ([]byte, error) {
	return MarshalOptions{}.Marshal(rec)
}

// Marshal renders rec as JSON.
func (o MarshalOptions) Marshal(rec *record.Record) ([]byte, error) {
	out, err := o.ToJSON(rec).MarshalJSON()
	if err != nil {
		return nil, err
	}
	if o.Indent == "" {
		return out, nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, out, "", o.Indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToJSON converts rec to a JSON object. A nil record is null.
func (o MarshalOptions) ToJSON(rec *record.Record) Value {
	if rec == nil {
		return Null()
	}

	members := []Member{}
	for _, field := range rec.Descriptor().Fields {
		if rec.IsDefault(field) {
			continue
		}
		name := field.JSONName
		if o.UseProtoNames {
			name = field.Name
		}
		members = append(members, Member{Key: name, Value: o.fieldToJSON(field, rec.GetField(field))})
	}
	return Object(members...)
}

func (o MarshalOptions) fieldToJSON(field *schema.Field, value any) Value {
	if !field.IsRepeated() {
		return o.valueToJSON(field, value)
	}

	list := value.([]any)
	if field.Kind == schema.KindMessage && field.Message().MapEntry {
		return o.mapToJSON(field, list)
	}
	elems := make([]Value, 0, len(list))
	for _, e := range list {
		elems = append(elems, o.valueToJSON(field, e))
	}
	return Array(elems...)
}

// mapToJSON renders map entries as one object keyed by the entry keys.
func (o MarshalOptions) mapToJSON(field *schema.Field, entries []any) Value {
	valueField := field.Message().FieldByNumber(2)
	members := make([]Member, 0, len(entries))
	for _, e := range entries {
		entry := e.(*record.Record)
		members = append(members, Member{
			Key:   formatMapKey(wire.MapEntryKey(entry)),
			Value: o.valueToJSON(valueField, wire.MapEntryValue(entry)),
		})
	}
	return Object(members...)
}

func (o MarshalOptions) valueToJSON(field *schema.Field, value any) Value {
	switch field.Kind {
	case schema.KindBool:
		return Bool(value.(bool))
	case schema.KindInt32:
		return Int(int64(value.(int32)))
	case schema.KindInt64:
		return Int(value.(int64))
	case schema.KindUint64:
		return Uint(value.(uint64))
	case schema.KindDouble:
		return Float(value.(float64))
	case schema.KindString:
		return String(value.(string))
	case schema.KindBytes:
		return String(base64.StdEncoding.EncodeToString(value.([]byte)))
	case schema.KindEnum:
		return String(record.EnumName(field.Enum(), value.(record.EnumValue)))
	case schema.KindMessage:
		return o.ToJSON(value.(*record.Record))
	default:
		return Null()
	}
}

func formatMapKey(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case bool:
		return strconv.FormatBool(k)
	case int32:
		return strconv.FormatInt(int64(k), 10)
	case int64:
		return strconv.FormatInt(k, 10)
	case uint64:
		return strconv.FormatUint(k, 10)
	default:
		return fmt.Sprint(k)
	}
}

// Unmarshal parses data and converts it into a record of msg.
func Unmarshal(data []byte, msg *schema.Message) (*record.Record, error) {
	v, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return FromJSON(v, msg)
}

// FromJSON builds a record of msg from a JSON object. Every field is
// optional, null means absent and unknown keys are ignored. Shape and range
// errors carry the path of the offending field as a wire.FieldError.
func FromJSON(v Value, msg *schema.Message) (*record.Record, error) {
	if v.Kind() != ObjectKind {
		return nil, fmt.Errorf("%w: %s expects an object, got %s", ErrShapeMismatch, msg.Name, v.Kind())
	}

	rec := record.New(msg)
	for _, m := range v.Members() {
		field := msg.FieldByName(m.Key)
		if field == nil || m.Value.IsNull() {
			continue
		}
		if err := setFromJSON(rec, field, m.Value); err != nil {
			return nil, wire.WrapField(err, field.JSONName)
		}
	}
	return rec, nil
}

func setFromJSON(rec *record.Record, field *schema.Field, v Value) error {
	if !field.IsRepeated() {
		value, err := valueFromJSON(field, v)
		if err != nil {
			return err
		}
		return rec.SetField(field, value)
	}

	if field.Kind == schema.KindMessage && field.Message().MapEntry {
		return mapFromJSON(rec, field, v)
	}

	if v.Kind() != ArrayKind {
		return shapeError(field, "array", v)
	}
	list := make([]any, 0, len(v.Elems()))
	for i, e := range v.Elems() {
		if e.IsNull() {
			return wire.WrapIndex(shapeError(field, string(field.Kind), e), i)
		}
		value, err := valueFromJSON(field, e)
		if err != nil {
			return wire.WrapIndex(err, i)
		}
		list = append(list, value)
	}
	return rec.SetField(field, list)
}

// mapFromJSON reads an object into map entries. Keys repeated in the input
// keep their first position and take the last value.
func mapFromJSON(rec *record.Record, field *schema.Field, v Value) error {
	if v.Kind() != ObjectKind {
		return shapeError(field, "object", v)
	}

	entryDesc := field.Message()
	keyField, valueField := entryDesc.FieldByNumber(1), entryDesc.FieldByNumber(2)
	entries := []any{}
	index := make(map[any]int)
	for _, m := range v.Members() {
		key, err := parseMapKey(keyField, m.Key)
		if err != nil {
			return wire.WrapField(err, m.Key)
		}
		if m.Value.IsNull() {
			return wire.WrapField(shapeError(valueField, string(valueField.Kind), m.Value), m.Key)
		}
		value, err := valueFromJSON(valueField, m.Value)
		if err != nil {
			return wire.WrapField(err, m.Key)
		}
		entry, err := wire.NewMapEntry(field, key, value)
		if err != nil {
			return err
		}
		if i, seen := index[key]; seen {
			entries[i] = entry
			continue
		}
		index[key] = len(entries)
		entries = append(entries, entry)
	}
	return rec.SetField(field, entries)
}

func parseMapKey(keyField *schema.Field, key string) (any, error) {
	switch keyField.Kind {
	case schema.KindString:
		return key, nil
	case schema.KindBool:
		b, err := strconv.ParseBool(key)
		if err != nil || (key != "true" && key != "false") {
			return nil, fmt.Errorf("%w: map key %q is not a bool", ErrShapeMismatch, key)
		}
		return b, nil
	case schema.KindInt32:
		n, err := coerceToInt64(key, math.MinInt32, math.MaxInt32)
		return int32(n), err
	case schema.KindInt64:
		return coerceToInt64(key, -schema.MaxSafeInteger, schema.MaxSafeInteger)
	case schema.KindUint64:
		return coerceToUint64(key, schema.MaxSafeInteger)
	default:
		return nil, fmt.Errorf("%w: unsupported map key kind %s", ErrShapeMismatch, keyField.Kind)
	}
}

// valueFromJSON converts one non-null JSON value to the Go type of the field's kind.
func valueFromJSON(field *schema.Field, v Value) (any, error) {
	switch field.Kind {
	case schema.KindBool:
		b, ok := v.AsBool()
		if !ok {
			return nil, shapeError(field, "bool", v)
		}
		return b, nil

	case schema.KindInt32:
		s, ok := numericText(v)
		if !ok {
			return nil, shapeError(field, "number", v)
		}
		n, err := coerceToInt64(s, math.MinInt32, math.MaxInt32)
		return int32(n), err

	case schema.KindInt64:
		s, ok := numericText(v)
		if !ok {
			return nil, shapeError(field, "number", v)
		}
		return coerceToInt64(s, -schema.MaxSafeInteger, schema.MaxSafeInteger)

	case schema.KindUint64:
		s, ok := numericText(v)
		if !ok {
			return nil, shapeError(field, "number", v)
		}
		return coerceToUint64(s, schema.MaxSafeInteger)

	case schema.KindDouble:
		s, ok := numericText(v)
		if !ok {
			return nil, shapeError(field, "number", v)
		}
		return coerceToFloat64(s)

	case schema.KindString:
		s, ok := v.AsString()
		if !ok {
			return nil, shapeError(field, "string", v)
		}
		return s, nil

	case schema.KindBytes:
		s, ok := v.AsString()
		if !ok {
			return nil, shapeError(field, "base64 string", v)
		}
		return decodeBase64(s)

	case schema.KindEnum:
		if name, ok := v.AsString(); ok {
			return record.ResolveEnumName(field.Enum(), name), nil
		}
		if n, ok := v.AsNumber(); ok {
			ordinal, err := coerceToInt64(n.String(), math.MinInt32, math.MaxInt32)
			if err != nil {
				// not an int32 ordinal, so not a member either
				return record.Unrecognized, nil
			}
			return record.ResolveEnum(field.Enum(), int32(ordinal)), nil
		}
		return nil, shapeError(field, "enum name or number", v)

	case schema.KindMessage:
		return FromJSON(v, field.Message())

	default:
		return nil, fmt.Errorf("unsupported field kind: %s", field.Kind)
	}
}

// decodeBase64 accepts standard and URL-safe alphabets, padded or not.
func decodeBase64(s string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if b, err := enc.DecodeString(s); err == nil {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: invalid base64", ErrShapeMismatch)
}

func shapeError(field *schema.Field, want string, got Value) error {
	return fmt.Errorf("%w: %s field expects %s, got %s", ErrShapeMismatch, field.Kind, want, got.Kind())
}
