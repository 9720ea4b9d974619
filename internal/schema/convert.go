package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AsString renders an extracted value as a string. Floats format without
// trailing zeros so re-parsing round-trips.
func AsString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

func asString(v any) string { return AsString(v) }

// asFloat converts an extracted value to float64 best-effort. Locale-aware
// parsing of ambiguous strings is the record normalizer's job; this only
// handles values that are already numeric or trivially so.
func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case json.Number:
		f, _ := t.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}
