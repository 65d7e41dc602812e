package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// marshalCanonical produces RFC 8785 canonical JSON. This is the only
// serialization used for snapshot bodies - the integrity checksum is
// computed over these bytes, so any drift here invalidates every save.
//
// Canonical rules:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized
//  4. No floats (returns error)
//  5. No null (returns error)
func marshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		return canonicalString(val)
	case int64:
		return strconv.AppendInt(nil, val, 10), nil
	case int:
		return strconv.AppendInt(nil, int64(val), 10), nil
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case []any:
		return marshalArray(val)
	case []string:
		arr := make([]any, len(val))
		for i, s := range val {
			arr[i] = s
		}
		return marshalArray(arr)
	case map[string]any:
		return marshalObject(val)
	case map[string]string:
		return marshalObject(val)
	case map[string]bool:
		return marshalObject(val)
	case map[string]int64:
		return marshalObject(val)
	case float64, float32:
		return nil, fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// canonicalString produces a canonical JSON string with NFC normalization.
// RFC 8785 requirements:
//   - No HTML escaping (<, >, & are NOT escaped)
//   - U+2028 and U+2029 are NOT escaped
//   - Only control characters (U+0000-U+001F), backslash, and quote are escaped
func canonicalString(s string) ([]byte, error) {
	// NFC normalize at the serialization boundary
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder adds a trailing newline, remove it
	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}

	// Go's json.Encoder escapes U+2028/U+2029 for JavaScript compatibility,
	// which violates RFC 8785. Unescape them, but leave \\u2028 (escaped
	// backslash followed by literal "u2028" text) alone.
	result = unescapeU2028U2029(result)

	return result, nil
}

// unescapeU2028U2029 converts \u2028 and \u2029 escape sequences to the
// literal characters, preserving sequences whose backslash is itself escaped.
func unescapeU2028U2029(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	var result []byte
	i := 0
	for i < len(data) {
		if i+6 <= len(data) && data[i] == '\\' && data[i+1] == 'u' && data[i+2] == '2' && data[i+3] == '0' && data[i+4] == '2' &&
			(data[i+5] == '8' || data[i+5] == '9') {
			// Count backslashes immediately before this position. An even
			// count (including zero) means this \u202x is a real escape
			// produced by the encoder; an odd count means the backslash
			// belongs to an escaped backslash pair and must stay.
			backslashes := 0
			if result == nil {
				for j := i - 1; j >= 0 && data[j] == '\\'; j-- {
					backslashes++
				}
			} else {
				for j := len(result) - 1; j >= 0 && result[j] == '\\'; j-- {
					backslashes++
				}
			}

			if backslashes%2 == 0 {
				if result == nil {
					result = make([]byte, 0, len(data))
					result = append(result, data[:i]...)
				}
				if data[i+5] == '8' {
					result = append(result, "\u2028"...)
				} else {
					result = append(result, "\u2029"...)
				}
				i += 6
				continue
			}
		}

		if result != nil {
			result = append(result, data[i])
		}
		i++
	}

	if result == nil {
		return data
	}
	return result
}

func marshalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := marshalCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalObject[V any](obj map[string]V) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range sortedKeys(obj) {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := canonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := marshalCanonical(obj[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// sortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings compares UTF-8 bytes, which produces a DIFFERENT order
// for keys outside the basic multilingual plane.
func sortedKeys[V any](obj map[string]V) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units as required by
// RFC 8785. unicode/utf16.Encode handles surrogate pairs correctly.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := len(a16)
	if len(b16) < minLen {
		minLen = len(b16)
	}

	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	if len(a16) < len(b16) {
		return -1
	}
	if len(a16) > len(b16) {
		return 1
	}
	return 0
}
