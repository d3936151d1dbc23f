package protolite

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/lumera-tools/protolite/jsonbridge"
	"github.com/lumera-tools/protolite/lumera"
	"github.com/lumera-tools/protolite/record"
	"github.com/lumera-tools/protolite/registry"
	"github.com/lumera-tools/protolite/wire"
)

func newLumera(t *testing.T, opts ...Option) *Protolite {
	t.Helper()
	p := New(opts...)
	if err := p.Register(lumera.Files()...); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return p
}

func TestProtolite_Marshal(t *testing.T) {
	p := newLumera(t)

	t.Run("boundary_action", func(t *testing.T) {
		rec, err := p.NewRecord(lumera.Action)
		if err != nil {
			t.Fatalf("NewRecord failed: %v", err)
		}
		if err := rec.Set("actionID", "x"); err != nil {
			t.Fatal(err)
		}
		if err := rec.Set("actionType", record.EnumValue{Number: lumera.ActionTypeSense}); err != nil {
			t.Fatal(err)
		}

		data, err := p.Marshal(rec)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		expected := []byte{0x12, 0x01, 0x78, 0x18, 0x01}
		if !bytes.Equal(data, expected) {
			t.Errorf("Expected % x, got % x", expected, data)
		}

		decoded, err := p.Unmarshal(data, lumera.Action)
		if err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if !decoded.Equal(rec) {
			t.Errorf("Expected %v, got %v", rec, decoded)
		}
	})

	t.Run("empty_record", func(t *testing.T) {
		rec, err := p.NewRecord("Action")
		if err != nil {
			t.Fatalf("NewRecord by short name failed: %v", err)
		}
		data, err := p.Marshal(rec)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if len(data) != 0 {
			t.Errorf("Expected empty output, got % x", data)
		}
	})

	t.Run("unknown_type", func(t *testing.T) {
		if _, err := p.NewRecord("lumera.action.Nope"); err == nil {
			t.Error("Expected error for unknown type")
		}
		if _, err := p.Unmarshal(nil, "Nope"); err == nil || !strings.Contains(err.Error(), "Nope") {
			t.Errorf("Expected error naming the type, got %v", err)
		}
	})
}

func TestProtolite_WireOptions(t *testing.T) {
	// SuperNode{metrics: MetricsAggregate{metrics: [entry{}]}} nests two levels
	data := []byte{0x32, 0x02, 0x0a, 0x00}

	deep := newLumera(t)
	if _, err := deep.Unmarshal(data, lumera.SuperNode); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	shallow := newLumera(t, WithWireOptions(wire.Options{MaxDepth: 1}))
	_, err := shallow.Unmarshal(data, lumera.SuperNode)
	if !errors.Is(err, wire.ErrDepthExceeded) {
		t.Errorf("Expected ErrDepthExceeded, got %v", err)
	}
}

func TestProtolite_JSON(t *testing.T) {
	p := newLumera(t)

	input := []byte(`{"enable_claims":true,"claimEndTime":"1700000000","maxClaimsPerBlock":50}`)
	data, err := p.JSONToWire(input, lumera.ClaimParams)
	if err != nil {
		t.Fatalf("JSONToWire failed: %v", err)
	}

	out, err := p.WireToJSON(data, lumera.ClaimParams)
	if err != nil {
		t.Fatalf("WireToJSON failed: %v", err)
	}
	expected := `{"enableClaims":true,"claimEndTime":1700000000,"maxClaimsPerBlock":50}`
	if string(out) != expected {
		t.Errorf("Expected %s, got %s", expected, out)
	}

	t.Run("proto_names", func(t *testing.T) {
		named := newLumera(t, WithJSONOptions(jsonbridge.MarshalOptions{UseProtoNames: true}))
		out, err := named.WireToJSON(data, lumera.ClaimParams)
		if err != nil {
			t.Fatalf("WireToJSON failed: %v", err)
		}
		expected := `{"enable_claims":true,"claim_end_time":1700000000,"max_claims_per_block":50}`
		if string(out) != expected {
			t.Errorf("Expected %s, got %s", expected, out)
		}
	})

	t.Run("range_error", func(t *testing.T) {
		_, err := p.JSONToWire([]byte(`{"maxClaimsPerBlock":"9007199254740992"}`), lumera.ClaimParams)
		if !errors.Is(err, wire.ErrNumericRange) {
			t.Fatalf("Expected ErrNumericRange, got %v", err)
		}
		var fe *wire.FieldError
		if !errors.As(err, &fe) || fe.Path() != "maxClaimsPerBlock" {
			t.Errorf("Expected path maxClaimsPerBlock, got %v", err)
		}
	})
}

func TestProtolite_SharedRegistry(t *testing.T) {
	r := registry.NewRegistry()
	if err := r.Register(lumera.Files()...); err != nil {
		t.Fatal(err)
	}

	a, b := New(WithRegistry(r)), New(WithRegistry(r))
	if a.Registry() != b.Registry() {
		t.Error("Expected both instances to share the registry")
	}
	if got := len(a.ListMessages()); got != 8 {
		t.Errorf("Expected 8 messages, got %d: %v", got, a.ListMessages())
	}
	if got := len(b.ListEnums()); got != 3 {
		t.Errorf("Expected 3 enums, got %d: %v", got, b.ListEnums())
	}
}

func TestProtolite_LoadSchema(t *testing.T) {
	p := New()
	if err := p.LoadSchema("lumera/proto"); err != nil {
		t.Fatalf("LoadSchema failed: %v", err)
	}

	rec, err := p.NewRecord(lumera.Action)
	if err != nil {
		t.Fatalf("NewRecord failed: %v", err)
	}
	if err := rec.Set("actionID", "x"); err != nil {
		t.Fatal(err)
	}
	if err := rec.Set("actionType", record.EnumValue{Number: lumera.ActionTypeSense}); err != nil {
		t.Fatal(err)
	}
	data, err := p.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Equal(data, []byte{0x12, 0x01, 0x78, 0x18, 0x01}) {
		t.Errorf("Loaded schema encodes differently: % x", data)
	}
}
