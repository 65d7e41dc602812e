package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int64", int64(42), "42"},
		{"negative int64", int64(-100), "-100"},
		{"zero", int64(0), "0"},
		{"max int64", int64(9223372036854775807), "9223372036854775807"},
		{"min int64", int64(-9223372036854775808), "-9223372036854775808"},
		{"int", 7, "7"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"array of ints", []any{int64(1), int64(2), int64(3)}, "[1,2,3]"},
		{"string slice", []string{"a", "b"}, `["a","b"]`},
		{"simple object", map[string]any{"a": int64(1)}, `{"a":1}`},
		{"bool map", map[string]bool{"on": true}, `{"on":true}`},
		{"int map", map[string]int64{"gold": 50}, `{"gold":50}`},
		{"string map", map[string]string{"north": "gate"}, `{"north":"gate"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := marshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": int64(1),
		"alpha": int64(2),
		"beta":  int64(3),
	}

	result, err := marshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":3,"zebra":1}`, string(result))
}

func TestMarshalCanonicalNestedSortedKeys(t *testing.T) {
	obj := map[string]any{
		"z": map[string]any{
			"b": int64(1),
			"a": int64(2),
		},
		"a": int64(3),
	}

	result, err := marshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"z":{"a":2,"b":1}}`, string(result))
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+E000 vs U+10000 - UTF-16 order differs from UTF-8.
	// The checksum is computed over canonical bytes, so ordering here is
	// load-bearing for every sealed save.
	obj := map[string]any{
		"\uE000": int64(1), // UTF-16: 0xE000
		"𐀀":      int64(2), // UTF-16: 0xD800, 0xDC00 (surrogate pair)
	}

	result, err := marshalCanonical(obj)
	require.NoError(t, err)

	// UTF-16 order: 0xD800 < 0xE000, so the surrogate pair key comes first
	expected := `{"𐀀":2,"` + "\uE000" + `":1}`
	assert.Equal(t, expected, string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"less than", "<script>", `"<script>"`},
		{"greater than", "</script>", `"</script>"`},
		{"ampersand", "a & b", `"a & b"`},
		{"all html chars", "<script>alert('xss')</script>", `"<script>alert('xss')</script>"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := marshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))

			assert.NotContains(t, string(result), "\\u003c") // <
			assert.NotContains(t, string(result), "\\u003e") // >
			assert.NotContains(t, string(result), "\\u0026") // &
		})
	}
}

func TestMarshalCanonicalRejectsFloats(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"float64", float64(3.14)},
		{"float32", float32(3.14)},
		{"float in object", map[string]any{"hp": float64(99.5)}},
		{"float in array", []any{float64(1.5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := marshalCanonical(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "float")
		})
	}
}

func TestMarshalCanonicalRejectsNull(t *testing.T) {
	_, err := marshalCanonical(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null")

	_, err = marshalCanonical(map[string]any{"gone": nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null")
}

func TestMarshalCanonicalNFCNormalization(t *testing.T) {
	// "é" can be represented as:
	// - U+00E9 (precomposed, NFC form)
	// - U+0065 U+0301 (e + combining acute accent, NFD form)
	// NFC normalizes both to U+00E9
	composed := "café"
	decomposed := "café"

	result1, err := marshalCanonical(composed)
	require.NoError(t, err)

	result2, err := marshalCanonical(decomposed)
	require.NoError(t, err)

	assert.Equal(t, result1, result2, "NFC normalization should make these equal")
}

func TestMarshalCanonicalNFCInObjectKeys(t *testing.T) {
	composed := "café"
	decomposed := "café"

	result1, err := marshalCanonical(map[string]int64{composed: 1})
	require.NoError(t, err)

	result2, err := marshalCanonical(map[string]int64{decomposed: 1})
	require.NoError(t, err)

	assert.Equal(t, result1, result2, "NFC normalization should make object keys equal")
}

func TestMarshalCanonicalCompactOutput(t *testing.T) {
	obj := map[string]any{
		"array": []any{int64(1), int64(2)},
		"bool":  true,
		"int":   int64(42),
	}

	result, err := marshalCanonical(obj)
	require.NoError(t, err)

	assert.NotContains(t, string(result), " ")
	assert.NotContains(t, string(result), "\n")
	assert.NotContains(t, string(result), "\t")
}

func TestMarshalCanonicalStringEscaping(t *testing.T) {
	// Standard JSON escapes should still work
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := marshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalU2028U2029NotEscaped(t *testing.T) {
	// RFC 8785: U+2028 (LINE SEPARATOR) and U+2029 (PARAGRAPH SEPARATOR)
	// should NOT be escaped. Only control characters (U+0000-U+001F),
	// backslash, and quote should be escaped.
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "U+2028 LINE SEPARATOR",
			input:    "hello\u2028world",
			expected: "\"hello\u2028world\"",
		},
		{
			name:     "U+2029 PARAGRAPH SEPARATOR",
			input:    "hello\u2029world",
			expected: "\"hello\u2029world\"",
		},
		{
			name:     "both U+2028 and U+2029",
			input:    "a\u2028b\u2029c",
			expected: "\"a\u2028b\u2029c\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := marshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))

			assert.NotContains(t, string(result), `\u2028`, "U+2028 should not be escaped per RFC 8785")
			assert.NotContains(t, string(result), `\u2029`, "U+2029 should not be escaped per RFC 8785")
		})
	}
}

func TestMarshalCanonicalLiteralBackslashU2028(t *testing.T) {
	// Strings containing a literal backslash followed by "u2028" text must
	// survive the un-escaping pass untouched. The scanner counts the
	// backslashes before each candidate: an odd count means the backslash
	// belongs to an escaped backslash pair, not to an encoder escape.
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "literal backslash-u2028 text",
			input:    `the escape sequence is \u2028`,
			expected: `"the escape sequence is \\u2028"`,
		},
		{
			name:     "literal backslash-u2029 text",
			input:    `the escape sequence is \u2029`,
			expected: `"the escape sequence is \\u2029"`,
		},
		{
			name:     "mixed literal and actual",
			input:    "literal \\u2028 and actual \u2028",
			expected: "\"literal \\\\u2028 and actual \u2028\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := marshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}
