package registry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yoheimuta/go-protoparser/v4/parser"

	"github.com/lumera-tools/protolite/schema"
)

// parsedFile is a converted .proto file whose named field types and
// declared defaults still need the full symbol table.
type parsedFile struct {
	file     *schema.File
	refs     []typeRef
	defaults []fieldDefault
}

// typeRef is a field naming an enum or message type as written in the source.
type typeRef struct {
	field    *schema.Field
	typeName string
	scope    string // fully qualified name of the enclosing message
}

type fieldDefault struct {
	field    *schema.Field
	constant string
	scope    string
}

var scalarKinds = map[string]schema.Kind{
	"bool":   schema.KindBool,
	"int32":  schema.KindInt32,
	"int64":  schema.KindInt64,
	"uint64": schema.KindUint64,
	"double": schema.KindDouble,
	"string": schema.KindString,
	"bytes":  schema.KindBytes,
}

// scalar types of the protobuf language the codec has no representation for
var unsupportedScalars = map[string]bool{
	"float":    true,
	"uint32":   true,
	"sint32":   true,
	"sint64":   true,
	"fixed32":  true,
	"fixed64":  true,
	"sfixed32": true,
	"sfixed64": true,
}

// convertProto turns a parsed .proto file into schema descriptors.
func convertProto(name string, proto *parser.Proto) (*parsedFile, error) {
	pf := &parsedFile{
		file: &schema.File{
			Name:   name,
			Syntax: "proto2", // protoc default when no syntax statement is present
		},
	}
	if proto.Syntax != nil {
		pf.file.Syntax = strings.Trim(proto.Syntax.ProtobufVersion, `"'`)
	}

	// the package statement may follow messages, read it first
	for _, body := range proto.ProtoBody {
		switch b := body.(type) {
		case *parser.Package:
			pf.file.Package = b.Name
		case *parser.Import:
			pf.file.Imports = append(pf.file.Imports, strings.Trim(b.Location, `"'`))
		}
	}

	for _, body := range proto.ProtoBody {
		switch b := body.(type) {
		case *parser.Message:
			msg, err := pf.convertMessage(pf.file.Package, b)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			pf.file.Messages = append(pf.file.Messages, msg)
		case *parser.Enum:
			enum, err := convertEnum(pf.file.Package, b)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			pf.file.Enums = append(pf.file.Enums, enum)
		}
	}
	return pf, nil
}

func (pf *parsedFile) convertMessage(scope string, m *parser.Message) (*schema.Message, error) {
	msg := &schema.Message{Name: schema.FullName(scope, m.MessageName)}

	for _, body := range m.MessageBody {
		switch b := body.(type) {
		case *parser.Field:
			f, err := pf.newField(msg.Name, b.FieldName, b.FieldNumber, b.Type, b.IsRepeated, b.FieldOptions)
			if err != nil {
				return nil, err
			}
			msg.Fields = append(msg.Fields, f)
		case *parser.MapField:
			entry, err := pf.mapEntryMessage(msg.Name, b)
			if err != nil {
				return nil, err
			}
			msg.NestedTypes = append(msg.NestedTypes, entry)

			number, err := parseFieldNumber(b.FieldNumber)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", msg.Name, b.MapName, err)
			}
			f := &schema.Field{
				Name:     b.MapName,
				Number:   number,
				Label:    schema.LabelRepeated,
				Kind:     schema.KindMessage,
				TypeName: entry.Name,
			}
			f.ResolveMessage(entry)
			pf.applyOptions(msg.Name, f, b.FieldOptions)
			msg.Fields = append(msg.Fields, f)
		case *parser.Oneof:
			// oneof members are plain optional fields here, the codec keeps
			// whichever occurrence comes last for each of them
			for _, of := range b.OneofFields {
				f, err := pf.newField(msg.Name, of.FieldName, of.FieldNumber, of.Type, false, of.FieldOptions)
				if err != nil {
					return nil, err
				}
				msg.Fields = append(msg.Fields, f)
			}
		case *parser.Message:
			nested, err := pf.convertMessage(msg.Name, b)
			if err != nil {
				return nil, err
			}
			msg.NestedTypes = append(msg.NestedTypes, nested)
		case *parser.Enum:
			nested, err := convertEnum(msg.Name, b)
			if err != nil {
				return nil, err
			}
			msg.NestedEnums = append(msg.NestedEnums, nested)
		case *parser.GroupField:
			return nil, fmt.Errorf("%s: groups are not supported", msg.Name)
		}
	}
	return msg, nil
}

// newField converts one field declaration. Named types are recorded for
// resolution once every file of the batch is known.
func (pf *parsedFile) newField(scope, name, number, typeName string, repeated bool, options []*parser.FieldOption) (*schema.Field, error) {
	n, err := parseFieldNumber(number)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", scope, name, err)
	}
	f := &schema.Field{
		Name:   name,
		Number: n,
		Label:  schema.LabelOptional,
	}
	if repeated {
		f.Label = schema.LabelRepeated
	}

	switch kind, ok := scalarKinds[typeName]; {
	case ok:
		f.Kind = kind
	case unsupportedScalars[typeName]:
		return nil, fmt.Errorf("%s.%s: scalar type %s is not supported", scope, name, typeName)
	default:
		pf.refs = append(pf.refs, typeRef{field: f, typeName: typeName, scope: scope})
	}

	pf.applyOptions(scope, f, options)
	return f, nil
}

func (pf *parsedFile) applyOptions(scope string, f *schema.Field, options []*parser.FieldOption) {
	for _, opt := range options {
		switch opt.OptionName {
		case "json_name":
			f.JSONName = unquote(opt.Constant)
		case "default":
			pf.defaults = append(pf.defaults, fieldDefault{field: f, constant: opt.Constant, scope: scope})
		}
	}
}

// mapEntryMessage creates the synthetic key/value message of a map field,
// named like protoc does: map<string, double> metrics -> MetricsEntry.
func (pf *parsedFile) mapEntryMessage(scope string, m *parser.MapField) (*schema.Message, error) {
	camel := schema.ToLowerCamel(m.MapName)
	if camel == "" {
		return nil, fmt.Errorf("%s: map field without a name", scope)
	}
	entry := &schema.Message{
		Name:     scope + "." + strings.ToUpper(camel[:1]) + camel[1:] + "Entry",
		MapEntry: true,
	}
	key, err := pf.newField(entry.Name, "key", "1", m.KeyType, false, nil)
	if err != nil {
		return nil, err
	}
	value, err := pf.newField(entry.Name, "value", "2", m.Type, false, nil)
	if err != nil {
		return nil, err
	}
	entry.Fields = []*schema.Field{key, value}
	return entry, nil
}

func convertEnum(scope string, e *parser.Enum) (*schema.Enum, error) {
	enum := &schema.Enum{Name: schema.FullName(scope, e.EnumName)}
	for _, body := range e.EnumBody {
		ef, ok := body.(*parser.EnumField)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(ef.Number, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: invalid enum number %q", enum.Name, ef.Ident, ef.Number)
		}
		enum.Values = append(enum.Values, &schema.EnumValue{Name: ef.Ident, Number: int32(n)})
	}
	return enum, nil
}

func parseFieldNumber(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid field number %q", s)
	}
	return int32(n), nil
}

// parseDefault converts a [default = ...] constant for the field's kind.
func parseDefault(f *schema.Field, constant string, enums map[string]*schema.Enum) (any, error) {
	switch f.Kind {
	case schema.KindBool:
		return strconv.ParseBool(constant)
	case schema.KindInt32:
		n, err := strconv.ParseInt(constant, 0, 32)
		return int32(n), err
	case schema.KindInt64:
		return strconv.ParseInt(constant, 0, 64)
	case schema.KindUint64:
		return strconv.ParseUint(constant, 0, 64)
	case schema.KindDouble:
		return strconv.ParseFloat(constant, 64)
	case schema.KindString:
		return unquote(constant), nil
	case schema.KindBytes:
		return []byte(unquote(constant)), nil
	case schema.KindEnum:
		enum := enums[f.TypeName]
		if enum == nil {
			return nil, fmt.Errorf("enum %s not found", f.TypeName)
		}
		v, ok := enum.ByName(constant)
		if !ok {
			return nil, fmt.Errorf("default %s is not a member of %s", constant, f.TypeName)
		}
		return v.Number, nil
	default:
		return nil, fmt.Errorf("fields of kind %s cannot declare a default", f.Kind)
	}
}

// unquote strips the quotes of a string constant, resolving escapes when it
// is a valid Go string literal.
func unquote(s string) string {
	if len(s) < 2 || (s[0] != '"' && s[0] != '\'') || s[len(s)-1] != s[0] {
		return s
	}
	if s[0] == '"' {
		if v, err := strconv.Unquote(s); err == nil {
			return v
		}
	}
	return s[1 : len(s)-1]
}
