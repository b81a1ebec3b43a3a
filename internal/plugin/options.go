package plugin

// Options is the configuration mapping attached to a plugin instance. Each
// instance owns its own Options value, fixed at construction time; two
// instances of the same plugin kind in one pipeline never share
// configuration. Recognized option names and their effects are entirely
// plugin-specific.
type Options map[string]any

// String returns the named option as a string, or def when absent or of a
// different type.
func (o Options) String(key, def string) string {
	if v, ok := o[key].(string); ok {
		return v
	}
	return def
}

// Bool returns the named option as a bool, or def when absent or of a
// different type.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key].(bool); ok {
		return v
	}
	return def
}

// Int returns the named option as an int, or def when absent. YAML decoding
// may deliver integers as int or int64; both are accepted.
func (o Options) Int(key string, def int) int {
	switch v := o[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return def
	}
}

// StringSlice returns the named option as a slice of strings. YAML decoding
// delivers sequences as []any; non-string entries are skipped.
func (o Options) StringSlice(key string) []string {
	switch v := o[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
