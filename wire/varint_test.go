package wire

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/encoding/protowire"
)

var varintSamples = []uint64{
	0, 1, 127, 128, 255, 300, 16383, 16384,
	1<<21 - 1, 1 << 21, 1<<28 - 1, 1 << 35, 1 << 42, 1 << 49,
	MaxSafeInteger, 1 << 56, 1 << 63, math.MaxUint64,
}

func TestVarint_MatchesProtowire(t *testing.T) {
	for _, v := range varintSamples {
		e := NewEncoder()
		e.EncodeVarint(v)
		want := protowire.AppendVarint(nil, v)
		if diff := cmp.Diff(want, e.Bytes()); diff != "" {
			t.Errorf("EncodeVarint(%d) mismatch (-protowire +ours):\n%s", v, diff)
		}
		if got := VarintSize(v); got != protowire.SizeVarint(v) {
			t.Errorf("VarintSize(%d) = %d, protowire says %d", v, got, protowire.SizeVarint(v))
		}

		got, err := NewDecoder(want).DecodeVarint()
		if err != nil {
			t.Errorf("DecodeVarint(% x): %v", want, err)
			continue
		}
		if got != v {
			t.Errorf("DecodeVarint(% x) = %d, want %d", want, got, v)
		}
	}
}

func TestVarint_TagsMatchProtowire(t *testing.T) {
	tests := []struct {
		number FieldNumber
		wt     WireType
	}{
		{1, WireVarint},
		{15, WireBytes},
		{16, WireFixed64},
		{2047, WireFixed32},
		{1<<29 - 1, WireStartGroup},
	}
	for _, tt := range tests {
		e := NewEncoder()
		NewVarintEncoder(e).EncodeTag(tt.number, tt.wt)
		want := protowire.AppendTag(nil, protowire.Number(tt.number), protowire.Type(tt.wt))
		if diff := cmp.Diff(want, e.Bytes()); diff != "" {
			t.Errorf("tag %d/%d mismatch (-protowire +ours):\n%s", tt.number, tt.wt, diff)
		}
		n, wt := ParseTag(MakeTag(tt.number, tt.wt))
		if n != tt.number || wt != tt.wt {
			t.Errorf("ParseTag(MakeTag(%d, %d)) = %d, %d", tt.number, tt.wt, n, wt)
		}
	}
}

func TestVarint_SignedValues(t *testing.T) {
	for _, v := range []int32{0, 1, -1, math.MinInt32, math.MaxInt32} {
		e := NewEncoder()
		NewVarintEncoder(e).EncodeInt32(v)
		want := protowire.AppendVarint(nil, uint64(int64(v)))
		if diff := cmp.Diff(want, e.Bytes()); diff != "" {
			t.Errorf("EncodeInt32(%d) mismatch (-protowire +ours):\n%s", v, diff)
		}
		got, err := NewVarintDecoder(NewDecoder(want)).DecodeInt32()
		if err != nil || got != v {
			t.Errorf("DecodeInt32 = %d, %v; want %d", got, err, v)
		}
	}

	e := NewEncoder()
	if err := NewVarintEncoder(e).EncodeInt64(-MaxSafeInteger); err != nil {
		t.Fatalf("EncodeInt64: %v", err)
	}
	got, err := NewVarintDecoder(NewDecoder(e.Bytes())).DecodeInt64()
	if err != nil || got != -MaxSafeInteger {
		t.Errorf("DecodeInt64 = %d, %v", got, err)
	}
	if err := NewVarintEncoder(NewEncoder()).EncodeUint64(MaxSafeInteger + 1); !errors.Is(err, ErrNumericRange) {
		t.Errorf("EncodeUint64 above range: %v", err)
	}
}

func TestMessage_MatchesProtowireFields(t *testing.T) {
	td := newTestDescriptors(t)

	rec := td.newInner(t, "supernode", 42)
	data, err := EncodeMessage(rec)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	num, typ, n := protowire.ConsumeTag(data)
	if n < 0 || num != 1 || typ != protowire.BytesType {
		t.Fatalf("first tag = %d/%d (%d)", num, typ, n)
	}
	name, m := protowire.ConsumeString(data[n:])
	if m < 0 || name != "supernode" {
		t.Fatalf("name = %q (%d)", name, m)
	}
	rest := data[n+m:]
	num, typ, n = protowire.ConsumeTag(rest)
	if n < 0 || num != 2 || typ != protowire.VarintType {
		t.Fatalf("second tag = %d/%d (%d)", num, typ, n)
	}
	height, m := protowire.ConsumeVarint(rest[n:])
	if m < 0 || height != 42 {
		t.Fatalf("height = %d (%d)", height, m)
	}
	if len(rest[n+m:]) != 0 {
		t.Errorf("trailing bytes: % x", rest[n+m:])
	}
}
