package host

import (
	"fmt"
	"sort"
	"strings"
)

// Values is the static, multi-valued configuration dictionary handed to a
// Configurer. Keys are case-insensitive; the methods store them lower-cased,
// so a Values should be built through Add and Set rather than a literal.
type Values map[string][]string

func canonicalKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Add appends value to the values of key.
func (v Values) Add(key, value string) {
	k := canonicalKey(key)
	v[k] = append(v[k], value)
}

// Set replaces the values of key with value.
func (v Values) Set(key, value string) {
	v[canonicalKey(key)] = []string{value}
}

// Del removes key.
func (v Values) Del(key string) {
	delete(v, canonicalKey(key))
}

// Has reports whether key has at least one value.
func (v Values) Has(key string) bool {
	return len(v[canonicalKey(key)]) > 0
}

// Get returns the first value of key, or "".
func (v Values) Get(key string) string {
	vs := v[canonicalKey(key)]
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// All returns every value of key in insertion order.
func (v Values) All(key string) []string {
	return v[canonicalKey(key)]
}

// Single returns the value of key when it has exactly one.
func (v Values) Single(key string) (string, bool) {
	vs := v[canonicalKey(key)]
	if len(vs) != 1 {
		return "", false
	}
	return vs[0], true
}

// Keys returns the keys in sorted order.
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy.
func (v Values) Clone() Values {
	if v == nil {
		return nil
	}
	out := make(Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// ValuesFromMap builds Values from a decoded configuration tree. Nested maps
// become dotted keys and slices become multiple values.
func ValuesFromMap(m map[string]any) Values {
	v := make(Values)
	flatten(v, "", m)
	return v
}

func flatten(v Values, prefix string, m map[string]any) {
	for k, raw := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := raw.(type) {
		case map[string]any:
			flatten(v, key, val)
		case []any:
			for _, item := range val {
				v.Add(key, fmt.Sprint(item))
			}
		case []string:
			for _, item := range val {
				v.Add(key, item)
			}
		case nil:
		default:
			v.Add(key, fmt.Sprint(val))
		}
	}
}
