package acroform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/unicode"
)

// ValueKind tags the variant held by a FieldValue
type ValueKind int

const (
	KindText ValueKind = iota + 1
	KindBoolean
	KindChoice
	KindInteger
)

// String returns the lower-case name used in JSON and YAML documents
func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBoolean:
		return "boolean"
	case KindChoice:
		return "choice"
	case KindInteger:
		return "integer"
	default:
		return "unknown"
	}
}

// FieldValue is the typed value of a form field: text, boolean, choice or
// integer. The zero value is not a valid FieldValue. Values are comparable
// with ==.
type FieldValue struct {
	kind ValueKind
	str  string
	flag bool
	num  int
}

// Text creates a text value, used for text input fields
func Text(s string) FieldValue { return FieldValue{kind: KindText, str: s} }

// Boolean creates a boolean value
func Boolean(b bool) FieldValue { return FieldValue{kind: KindBoolean, flag: b} }

// Choice creates a named choice, used for radio buttons, check boxes and list selections
func Choice(name string) FieldValue { return FieldValue{kind: KindChoice, str: name} }

// Integer creates an integer value
func Integer(i int) FieldValue { return FieldValue{kind: KindInteger, num: i} }

// Kind returns the variant of v
func (v FieldValue) Kind() ValueKind { return v.kind }

// TextValue returns the string held by a text value
func (v FieldValue) TextValue() (string, bool) { return v.str, v.kind == KindText }

// BoolValue returns the flag held by a boolean value
func (v FieldValue) BoolValue() (bool, bool) { return v.flag, v.kind == KindBoolean }

// ChoiceValue returns the name held by a choice value
func (v FieldValue) ChoiceValue() (string, bool) { return v.str, v.kind == KindChoice }

// IntValue returns the number held by an integer value
func (v FieldValue) IntValue() (int, bool) { return v.num, v.kind == KindInteger }

// Raw returns the value as a plain Go scalar
func (v FieldValue) Raw() any {
	switch v.kind {
	case KindBoolean:
		return v.flag
	case KindInteger:
		return v.num
	default:
		return v.str
	}
}

// String renders v for display: choices keep their leading slash
func (v FieldValue) String() string {
	switch v.kind {
	case KindText:
		return v.str
	case KindBoolean:
		return strconv.FormatBool(v.flag)
	case KindChoice:
		return "/" + v.str
	case KindInteger:
		return strconv.Itoa(v.num)
	default:
		return ""
	}
}

type valueJSON struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// MarshalJSON encodes v as {"type": ..., "value": ...}
func (v FieldValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(valueJSON{Type: v.kind.String(), Value: v.Raw()})
}

// UnmarshalJSON accepts either a bare scalar or {"type": ..., "value": ...}
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseValue(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseValue converts a decoded JSON or YAML value into a FieldValue. Bare
// strings become text, booleans become booleans and integral numbers become
// integers. A map with "type" and "value" keys selects the variant explicitly.
func ParseValue(raw any) (FieldValue, error) {
	switch x := raw.(type) {
	case string:
		return Text(x), nil
	case bool:
		return Boolean(x), nil
	case int:
		return Integer(x), nil
	case int64:
		return Integer(int(x)), nil
	case uint64:
		if x > math.MaxInt {
			return FieldValue{}, fmt.Errorf("integer %d out of range", x)
		}
		return Integer(int(x)), nil
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return FieldValue{}, fmt.Errorf("number %v is not an integer", x)
		}
		if x > math.MaxInt || x < math.MinInt {
			return FieldValue{}, fmt.Errorf("integer %v out of range", x)
		}
		return Integer(int(x)), nil
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return FieldValue{}, fmt.Errorf("number %s is not an integer", x)
		}
		return Integer(int(i)), nil
	case map[string]any:
		return parseTypedValue(x)
	case nil:
		return FieldValue{}, fmt.Errorf("value must not be null")
	default:
		return FieldValue{}, fmt.Errorf("unsupported value type %T", raw)
	}
}

// ParseValueMap applies ParseValue to every entry of m, keyed by qualified
// field name
func ParseValueMap(m map[string]any) (map[string]FieldValue, error) {
	values := make(map[string]FieldValue, len(m))
	for name, raw := range m {
		v, err := ParseValue(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		values[name] = v
	}
	return values, nil
}

func parseTypedValue(m map[string]any) (FieldValue, error) {
	typ, _ := m["type"].(string)
	val, ok := m["value"]
	if !ok {
		return FieldValue{}, fmt.Errorf("typed value is missing \"value\"")
	}

	switch strings.ToLower(typ) {
	case "text":
		return Text(fmt.Sprint(val)), nil
	case "choice", "name":
		s, ok := val.(string)
		if !ok {
			return FieldValue{}, fmt.Errorf("choice value must be a string, got %T", val)
		}
		return Choice(strings.TrimPrefix(s, "/")), nil
	case "boolean", "bool":
		if s, ok := val.(string); ok {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return FieldValue{}, fmt.Errorf("invalid boolean %q", s)
			}
			return Boolean(b), nil
		}
		b, ok := val.(bool)
		if !ok {
			return FieldValue{}, fmt.Errorf("boolean value must be a bool, got %T", val)
		}
		return Boolean(b), nil
	case "integer", "int":
		if s, ok := val.(string); ok {
			i, err := strconv.Atoi(s)
			if err != nil {
				return FieldValue{}, fmt.Errorf("invalid integer %q", s)
			}
			return Integer(i), nil
		}
		v, err := ParseValue(val)
		if err != nil || v.kind != KindInteger {
			return FieldValue{}, fmt.Errorf("integer value must be a whole number, got %v", val)
		}
		return v, nil
	default:
		return FieldValue{}, fmt.Errorf("unknown value type %q", typ)
	}
}

// DecodeValue maps a PDF primitive onto a FieldValue. Strings become text,
// integers become integers, names become choices and booleans stay booleans.
// Any other primitive has no scalar representation and yields nil.
func DecodeValue(obj types.Object) *FieldValue {
	var v FieldValue
	switch o := obj.(type) {
	case types.StringLiteral:
		v = Text(decodeStringLiteral(o))
	case types.HexLiteral:
		v = Text(decodeHexLiteral(o))
	case types.Integer:
		v = Integer(o.Value())
	case types.Name:
		v = Choice(o.Value())
	case types.Boolean:
		v = Boolean(o.Value())
	default:
		return nil
	}
	return &v
}

// EncodeValue maps a FieldValue onto a PDF primitive. Text is written as a
// UTF-16BE string with a leading byte order mark.
func EncodeValue(v FieldValue) types.Object {
	switch v.kind {
	case KindInteger:
		return types.Integer(v.num)
	case KindChoice:
		return types.Name(v.str)
	case KindBoolean:
		return types.Boolean(v.flag)
	default:
		return types.NewHexLiteral(encodeUTF16BE(v.str))
	}
}

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)

// encodeUTF16BE never fails: the encoder writes the BOM first and replaces
// invalid UTF-8 with U+FFFD.
func encodeUTF16BE(s string) []byte {
	b, _ := utf16BE.NewEncoder().Bytes([]byte(s))
	return b
}

func decodeStringLiteral(sl types.StringLiteral) string {
	raw, err := types.Unescape(sl.Value())
	if err != nil {
		return strings.ToValidUTF8(sl.Value(), "�")
	}
	return DecodeText(raw)
}

func decodeHexLiteral(hl types.HexLiteral) string {
	raw, err := hl.Bytes()
	if err != nil {
		return strings.ToValidUTF8(hl.Value(), "�")
	}
	return DecodeText(raw)
}

// DecodeText applies the PDF text string rules to raw bytes: UTF-16BE when
// prefixed with FE FF, UTF-8 when prefixed with EF BB BF, PDFDocEncoding
// otherwise. Undecodable input is converted lossily.
func DecodeText(raw []byte) string {
	switch {
	case len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF:
		return decodeUTF16BE(raw)
	case len(raw) >= 3 && raw[0] == 0xEF && raw[1] == 0xBB && raw[2] == 0xBF:
		return strings.ToValidUTF8(string(raw[3:]), "�")
	case utf8.Valid(raw):
		return string(raw)
	default:
		return decodePDFDoc(raw)
	}
}

func decodeUTF16BE(raw []byte) string {
	s, _ := utf16BE.NewDecoder().Bytes(raw)
	return string(s)
}

// pdfDocHigh maps PDFDocEncoding bytes 0x80..0x9F; 0xA0 and up match Latin-1.
var pdfDocHigh = [32]rune{
	'•', '†', '‡', '…', '—', '–', 'ƒ', '⁄',
	'‹', '›', '−', '‰', '„', '“', '”', '‘',
	'’', '‚', '™', 'ﬁ', 'ﬂ', 'Ł', 'Œ', 'Š',
	'Ÿ', 'Ž', 'ı', 'ł', 'œ', 'š', 'ž', '�',
}

func decodePDFDoc(raw []byte) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, b := range raw {
		switch {
		case b >= 0x80 && b <= 0x9F:
			sb.WriteRune(pdfDocHigh[b-0x80])
		case b == 0xA0:
			sb.WriteRune('€')
		default:
			sb.WriteRune(rune(b))
		}
	}
	return sb.String()
}
