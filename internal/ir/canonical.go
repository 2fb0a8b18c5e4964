package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON for hashing.
// This is the ONLY serialization used for content-addressed identity.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units
//  2. No HTML escaping
//  3. Strings are NFC normalized
//  4. Only string, int, bool, []any and map[string]any are accepted
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		return marshalCanonicalString(buf, val)
	case int:
		buf.WriteString(strconv.Itoa(val))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshalCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, compareUTF16)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshalCanonicalString(buf, k); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			buf.WriteByte(':')
			if err := marshalCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("value for key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	case float64, float32:
		return fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

// marshalCanonicalString writes s NFC normalized, without HTML escaping.
func marshalCanonicalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	// Encoder appends a newline.
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

// compareUTF16 orders strings by UTF-16 code units as RFC 8785 requires.
func compareUTF16(a, b string) int {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	return slices.Compare(ua, ub)
}

// Encode converts b into plain maps and slices: one map per node with a
// "kind" key, its integer fields, and a nested "body" for If and Loop.
// The result feeds both MarshalCanonical and encoding/json.
func Encode(b Block) []any {
	out := make([]any, len(b))
	for i, n := range b {
		out[i] = encodeNode(n)
	}
	return out
}

func encodeNode(n Node) map[string]any {
	m := map[string]any{"kind": n.Kind().String()}
	switch n := n.(type) {
	case Assign:
		m["offset"], m["value"] = n.Offset, int(n.Value)
	case Add:
		m["offset"], m["value"] = n.Offset, int(n.Value)
	case MultAssign:
		m["src"], m["dest"], m["value"] = n.Src, n.Dest, int(n.Value)
	case MultAdd:
		m["src"], m["dest"], m["value"] = n.Src, n.Dest, int(n.Value)
	case Right:
		m["offset"] = n.Offset
	case Input:
		m["offset"] = n.Offset
	case Output:
		m["offset"] = n.Offset
	case Dbg:
		m["offset"] = n.Offset
	case If:
		m["body"] = Encode(n.Body)
	case Loop:
		m["body"] = Encode(n.Body)
	case Glider:
		m["offset"], m["target"] = n.Offset, int(n.Target)
	case DecMove:
		m["offset"], m["max_moves"] = n.Offset, n.MaxMoves
	case MemMove:
		m["src"], m["dest"], m["size"] = n.Src, n.Dest, n.Size
	}
	return m
}
