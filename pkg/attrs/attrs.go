// Package attrs reads slog-style alternating key/value slices.
package attrs

// ExtractString returns the string value stored under key in a
// [key1, value1, key2, value2, ...] slice, or "" when absent or not a string.
func ExtractString(kv []any, key string) string {
	if v, ok := lookup(kv, key); ok {
		s, _ := v.(string)
		return s
	}
	return ""
}

// Has reports whether key is present, whatever its value.
func Has(kv []any, key string) bool {
	_, ok := lookup(kv, key)
	return ok
}

func lookup(kv []any, key string) (any, bool) {
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok && k == key {
			return kv[i+1], true
		}
	}
	return nil, false
}
