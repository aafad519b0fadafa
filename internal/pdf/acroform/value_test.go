package acroform

import (
	"encoding/json"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueRoundTrip(t *testing.T) {
	values := []FieldValue{
		Text(""),
		Text("hello"),
		Text("Hié ✓ 日本語"),
		Text("emoji 😀 needs a surrogate pair"),
		Boolean(true),
		Boolean(false),
		Choice("Yes"),
		Choice("Off"),
		Integer(0),
		Integer(-5),
		Integer(42),
	}

	for _, v := range values {
		t.Run(v.Kind().String()+"/"+v.String(), func(t *testing.T) {
			decoded := DecodeValue(EncodeValue(v))
			require.NotNil(t, decoded)
			assert.Equal(t, v, *decoded)
		})
	}
}

func TestEncodeTextUsesUTF16BOM(t *testing.T) {
	obj := EncodeValue(Text("Hi"))

	hl, ok := obj.(types.HexLiteral)
	require.True(t, ok, "text must encode as a hex string, got %T", obj)

	raw, err := hl.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFE, 0xFF, 0x00, 'H', 0x00, 'i'}, raw)
}

func TestEncodeTextReplacesInvalidUTF8(t *testing.T) {
	hl, ok := EncodeValue(Text("a\x80b")).(types.HexLiteral)
	require.True(t, ok)

	raw, err := hl.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFE, 0xFF, 0x00, 'a', 0xFF, 0xFD, 0x00, 'b'}, raw)

	empty, ok := EncodeValue(Text("")).(types.HexLiteral)
	require.True(t, ok)
	raw, err = empty.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFE, 0xFF}, raw)
}

func TestDecodeValue(t *testing.T) {
	tests := []struct {
		name string
		obj  types.Object
		want *FieldValue
	}{
		{"literal string", types.StringLiteral("plain"), ptr(Text("plain"))},
		{"escaped literal", types.StringLiteral(`a\(b\)`), ptr(Text("a(b)"))},
		{"utf16 hex string", types.HexLiteral("FEFF00480069"), ptr(Text("Hi"))},
		{"integer", types.Integer(7), ptr(Integer(7))},
		{"name", types.Name("Off"), ptr(Choice("Off"))},
		{"boolean", types.Boolean(true), ptr(Boolean(true))},
		{"nil", nil, nil},
		{"float", types.Float(1.5), nil},
		{"array", types.Array{types.Integer(1)}, nil},
		{"dict", types.Dict{}, nil},
		{"reference", *types.NewIndirectRef(3, 0), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeValue(tt.obj))
		})
	}
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{"ascii", []byte("abc"), "abc"},
		{"utf16 with bom", []byte{0xFE, 0xFF, 0x00, 0xE9}, "é"},
		{"utf8 with bom", []byte{0xEF, 0xBB, 0xBF, 0xC3, 0xA9}, "é"},
		{"pdfdoc latin", []byte{'c', 'a', 'f', 0xE9}, "café"},
		{"pdfdoc bullet", []byte{0x80, 'a'}, "•a"},
		{"pdfdoc euro", []byte{0xA0}, "€"},
		{"odd utf16 tail", []byte{0xFE, 0xFF, 0x00, 'A', 0x00}, "A�"},
		{"bom only tail", []byte{0xFE, 0xFF, 0x00}, "\uFFFD"},
		{"lone high surrogate", []byte{0xFE, 0xFF, 0xD8, 0x00}, "\uFFFD"},
		{"lone low surrogate", []byte{0xFE, 0xFF, 0xDC, 0x00, 0x00, 'x'}, "\uFFFDx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeText(tt.raw))
		})
	}
}

func TestFieldValueJSON(t *testing.T) {
	input := `{
		"a": "x",
		"b": true,
		"c": 3,
		"d": {"type": "choice", "value": "/Yes"},
		"e": {"type": "integer", "value": "7"},
		"f": {"type": "text", "value": "12"},
		"g": {"type": "bool", "value": "false"}
	}`

	var values map[string]FieldValue
	require.NoError(t, json.Unmarshal([]byte(input), &values))

	assert.Equal(t, map[string]FieldValue{
		"a": Text("x"),
		"b": Boolean(true),
		"c": Integer(3),
		"d": Choice("Yes"),
		"e": Integer(7),
		"f": Text("12"),
		"g": Boolean(false),
	}, values)

	out, err := json.Marshal(Choice("Yes"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"choice","value":"Yes"}`, string(out))
}

func TestParseValueErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  any
	}{
		{"null", nil},
		{"fraction", 1.5},
		{"float too large", 1e300},
		{"float too small", -1e300},
		{"list", []any{"a"}},
		{"unknown type", map[string]any{"type": "date", "value": "2024-01-01"}},
		{"missing value", map[string]any{"type": "text"}},
		{"bad boolean", map[string]any{"type": "boolean", "value": "maybe"}},
		{"choice not string", map[string]any{"type": "choice", "value": 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseValue(tt.raw)
			assert.Error(t, err)
		})
	}
}

func ptr(v FieldValue) *FieldValue { return &v }

func TestParseValueMap(t *testing.T) {
	got, err := ParseValueMap(map[string]any{
		"name":  "Ada",
		"agree": map[string]any{"type": "choice", "value": "/Yes"},
		"count": 3,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]FieldValue{
		"name":  Text("Ada"),
		"agree": Choice("Yes"),
		"count": Integer(3),
	}, got)

	_, err = ParseValueMap(map[string]any{"bad": 2.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "bad"`)
}
