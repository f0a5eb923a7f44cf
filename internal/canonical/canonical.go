// Package canonical provides a deterministic textual encoding of JSON-like
// values. Two values that differ only in map key order encode identically,
// which makes the encoding usable as the equality key for diffing.
package canonical

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Canonicalize encodes a JSON-like value (maps, slices, scalars, nil) into
// a stable string. Map keys are sorted lexicographically; sequence order is
// preserved because it is semantically meaningful. The function is total:
// callers guarantee JSON-compatible input, and anything unexpected falls
// back to its default formatting.
func Canonicalize(value any) string {
	var sb strings.Builder
	encode(&sb, value)
	return sb.String()
}

func encode(sb *strings.Builder, value any) {
	switch v := value.(type) {
	case nil:
		sb.WriteString("null")
	case bool:
		sb.WriteString(strconv.FormatBool(v))
	case string:
		sb.WriteString(strconv.Quote(v))
	case float64:
		sb.WriteString(formatFloat(v))
	case float32:
		sb.WriteString(formatFloat(float64(v)))
	case int:
		sb.WriteString(strconv.Itoa(v))
	case int64:
		sb.WriteString(strconv.FormatInt(v, 10))
	case json.Number:
		sb.WriteString(v.String())
	case []any:
		sb.WriteByte('[')
		for i, elem := range v {
			if i > 0 {
				sb.WriteByte(',')
			}
			encode(sb, elem)
		}
		sb.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteByte(':')
			encode(sb, v[k])
		}
		sb.WriteByte('}')
	default:
		fmt.Fprintf(sb, "%v", v)
	}
}

// formatFloat renders integral floats without an exponent or trailing
// fraction so that 5 and 5.0 compare equal after a JSON round trip.
func formatFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
