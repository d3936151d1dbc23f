package main

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lumera-tools/protolite/jsonbridge"
	"github.com/lumera-tools/protolite/registry"
	"github.com/lumera-tools/protolite/schema"
)

// renderYAML writes a JSON value tree as a YAML document, keeping member order.
func renderYAML(v jsonbridge.Value) ([]byte, error) {
	return encodeYAML(yamlNode(v))
}

func yamlNode(v jsonbridge.Value) *yaml.Node {
	switch v.Kind() {
	case jsonbridge.BoolKind:
		b, _ := v.AsBool()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}
	case jsonbridge.NumberKind:
		n, _ := v.AsNumber()
		tag := "!!int"
		if strings.ContainsAny(n.String(), ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: n.String()}
	case jsonbridge.StringKind:
		s, _ := v.AsString()
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	case jsonbridge.ArrayKind:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v.Elems() {
			node.Content = append(node.Content, yamlNode(e))
		}
		return node
	case jsonbridge.ObjectKind:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, m := range v.Members() {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.Key},
				yamlNode(m.Value),
			)
		}
		return node
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func encodeYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type typeListing struct {
	Files    []string `yaml:"files"`
	Messages []string `yaml:"messages"`
	Enums    []string `yaml:"enums"`
}

type fieldListing struct {
	Number   int32  `yaml:"number"`
	Name     string `yaml:"name"`
	JSONName string `yaml:"json_name"`
	Kind     string `yaml:"kind"`
	Repeated bool   `yaml:"repeated,omitempty"`
	Type     string `yaml:"type,omitempty"`
	Default  any    `yaml:"default,omitempty"`
}

type messageListing struct {
	Message  string         `yaml:"message"`
	MapEntry bool           `yaml:"map_entry,omitempty"`
	Fields   []fieldListing `yaml:"fields"`
}

type enumValueListing struct {
	Name   string `yaml:"name"`
	Number int32  `yaml:"number"`
}

type enumListing struct {
	Enum   string             `yaml:"enum"`
	Values []enumValueListing `yaml:"values"`
}

func listTypes(r *registry.Registry) ([]byte, error) {
	return encodeYAML(typeListing{
		Files:    r.ListFiles(),
		Messages: r.ListMessages(),
		Enums:    r.ListEnums(),
	})
}

// describeType renders the message or enum called name.
func describeType(r *registry.Registry, name string) ([]byte, error) {
	if msg, err := r.GetMessage(name); err == nil {
		return encodeYAML(describeMessage(msg))
	}
	enum, err := r.GetEnum(name)
	if err != nil {
		return nil, fmt.Errorf("no message or enum named %s", name)
	}
	listing := enumListing{Enum: enum.Name}
	for _, v := range enum.Values {
		listing.Values = append(listing.Values, enumValueListing{Name: v.Name, Number: v.Number})
	}
	return encodeYAML(listing)
}

func describeMessage(msg *schema.Message) messageListing {
	listing := messageListing{Message: msg.Name, MapEntry: msg.MapEntry}
	for _, f := range msg.Fields {
		fl := fieldListing{
			Number:   f.Number,
			Name:     f.Name,
			JSONName: f.JSONName,
			Kind:     string(f.Kind),
			Repeated: f.IsRepeated(),
			Type:     f.TypeName,
		}
		if f.Default != nil {
			fl.Default = f.Default
		}
		listing.Fields = append(listing.Fields, fl)
	}
	return listing
}
