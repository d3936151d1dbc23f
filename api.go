package protolite

import (
	"fmt"

	"github.com/lumera-tools/protolite/jsonbridge"
	"github.com/lumera-tools/protolite/record"
	"github.com/lumera-tools/protolite/registry"
	"github.com/lumera-tools/protolite/schema"
	"github.com/lumera-tools/protolite/wire"
)

// ===== SCHEMA-AWARE API =====

// Protolite provides schema-aware protobuf operations without generated code.
// Options are fixed at construction; a Protolite is safe for concurrent use
// once its schemas are loaded.
type Protolite struct {
	registry *registry.Registry
	wireOpts wire.Options
	jsonOpts jsonbridge.MarshalOptions
}

// Option configures a Protolite.
type Option func(*Protolite)

// WithRegistry shares an existing registry instead of creating an empty one.
func WithRegistry(r *registry.Registry) Option {
	return func(p *Protolite) { p.registry = r }
}

// WithWireOptions sets the options used by Marshal and Unmarshal.
func WithWireOptions(o wire.Options) Option {
	return func(p *Protolite) { p.wireOpts = o }
}

// WithJSONOptions sets the options used when rendering JSON.
func WithJSONOptions(o jsonbridge.MarshalOptions) Option {
	return func(p *Protolite) { p.jsonOpts = o }
}

// New creates a new Protolite instance
func New(opts ...Option) *Protolite {
	p := &Protolite{}
	for _, opt := range opts {
		opt(p)
	}
	if p.registry == nil {
		p.registry = registry.NewRegistry()
	}
	return p
}

// Register adds descriptor tables declared in Go, such as lumera.Files().
func (p *Protolite) Register(files ...*schema.File) error {
	return p.registry.Register(files...)
}

// LoadSchema loads a .proto file, or every .proto file under a directory.
func (p *Protolite) LoadSchema(path string) error {
	return p.registry.LoadSchema(path)
}

// NewRecord creates an empty record of the named message type.
func (p *Protolite) NewRecord(messageType string) (*record.Record, error) {
	msg, err := p.message(messageType)
	if err != nil {
		return nil, err
	}
	return record.New(msg), nil
}

// Marshal encodes rec to protobuf bytes.
func (p *Protolite) Marshal(rec *record.Record) ([]byte, error) {
	return p.wireOpts.Marshal(rec)
}

// Unmarshal decodes protobuf bytes as the named message type.
func (p *Protolite) Unmarshal(data []byte, messageType string) (*record.Record, error) {
	msg, err := p.message(messageType)
	if err != nil {
		return nil, err
	}
	return p.wireOpts.Unmarshal(data, msg)
}

// MarshalJSON renders rec as JSON.
func (p *Protolite) MarshalJSON(rec *record.Record) ([]byte, error) {
	return p.jsonOpts.Marshal(rec)
}

// ToJSON converts rec to a JSON value tree with the configured options.
func (p *Protolite) ToJSON(rec *record.Record) jsonbridge.Value {
	return p.jsonOpts.ToJSON(rec)
}

// UnmarshalJSON reads a JSON object as the named message type.
func (p *Protolite) UnmarshalJSON(data []byte, messageType string) (*record.Record, error) {
	msg, err := p.message(messageType)
	if err != nil {
		return nil, err
	}
	return jsonbridge.Unmarshal(data, msg)
}

// ===== TRANSCODING =====

// JSONToWire converts a JSON object to protobuf bytes.
func (p *Protolite) JSONToWire(data []byte, messageType string) ([]byte, error) {
	rec, err := p.UnmarshalJSON(data, messageType)
	if err != nil {
		return nil, err
	}
	return p.Marshal(rec)
}

// WireToJSON converts protobuf bytes to JSON.
func (p *Protolite) WireToJSON(data []byte, messageType string) ([]byte, error) {
	rec, err := p.Unmarshal(data, messageType)
	if err != nil {
		return nil, err
	}
	return p.MarshalJSON(rec)
}

func (p *Protolite) message(messageType string) (*schema.Message, error) {
	msg, err := p.registry.GetMessage(messageType)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", messageType, err)
	}
	return msg, nil
}

// ===== REGISTRY ACCESS =====

func (p *Protolite) Registry() *registry.Registry { return p.registry }
func (p *Protolite) ListMessages() []string       { return p.registry.ListMessages() }
func (p *Protolite) ListEnums() []string          { return p.registry.ListEnums() }
