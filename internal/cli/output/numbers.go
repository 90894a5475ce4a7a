package output

import "encoding/json"

// PlainNumbers returns v with every json.Number inside maps and slices
// replaced by an int64 or float64, so that YAML and text output print
// numbers instead of quoted strings. Numbers that fit neither are kept as
// their literal text.
func PlainNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = PlainNumbers(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = PlainNumbers(e)
		}
		return out
	default:
		return v
	}
}
