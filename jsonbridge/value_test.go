package jsonbridge

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_KeepsOrderAndLiterals(t *testing.T) {
	in := `{"b":1,"a":12345678901234567890,"list":[true,null,"x",-0.5e3],"b":2}`
	v, err := Parse([]byte(in))
	require.NoError(t, err)
	require.Equal(t, ObjectKind, v.Kind())

	var keys []string
	for _, m := range v.Members() {
		keys = append(keys, m.Key)
	}
	assert.Equal(t, []string{"b", "a", "list", "b"}, keys)

	b, ok := v.Get("b")
	require.True(t, ok)
	n, _ := b.AsNumber()
	assert.Equal(t, "2", n.String())

	a, _ := v.Get("a")
	n, ok = a.AsNumber()
	require.True(t, ok)
	assert.Equal(t, "12345678901234567890", n.String())

	out, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
}

func TestParse_Whitespace(t *testing.T) {
	v, err := Parse([]byte(" {\n\t\"k\" : [ 1 , 2 ] }\n"))
	require.NoError(t, err)
	out, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"k":[1,2]}`, string(out))
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{
		``,
		`{`,
		`{"a":}`,
		`{"a":1,}`,
		`[1 2]`,
		`{} {}`,
		`nul`,
	} {
		_, err := Parse([]byte(in))
		assert.True(t, errors.Is(err, ErrSyntax), "input %q: %v", in, err)
	}
}

func TestValue_Constructors(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null", Null(), `null`},
		{"zero value", Value{}, `null`},
		{"bool", Bool(false), `false`},
		{"int", Int(-42), `-42`},
		{"uint", Uint(math.MaxUint64), `18446744073709551615`},
		{"float", Float(0.1), `0.1`},
		{"large float", Float(1e21), `1e+21`},
		{"nan", Float(math.NaN()), `"NaN"`},
		{"inf", Float(math.Inf(1)), `"Infinity"`},
		{"neg inf", Float(math.Inf(-1)), `"-Infinity"`},
		{"string escapes", String("a\"b<c>\n"), `"a\"b<c>\n"`},
		{"empty array", Array(), `[]`},
		{"empty object", Object(), `{}`},
		{"nested", Object(Member{Key: "x", Value: Array(Int(1), Null())}), `{"x":[1,null]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.v.MarshalJSON()
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestValue_InvalidNumber(t *testing.T) {
	_, err := Number("1x").MarshalJSON()
	assert.Error(t, err)
}

func TestValue_Accessors(t *testing.T) {
	_, ok := String("1").AsNumber()
	assert.False(t, ok)
	_, ok = Int(1).AsString()
	assert.False(t, ok)
	_, ok = Null().AsBool()
	assert.False(t, ok)
	_, ok = Array().Get("x")
	assert.False(t, ok)
	assert.Equal(t, "object", ObjectKind.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
