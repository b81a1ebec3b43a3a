// Package slug derives filesystem- and anchor-safe names from symbol and
// document names.
package slug

import "strings"

// Make lowercases s and replaces every run of non-alphanumeric characters
// with a single hyphen. Used for output file names and heading anchors, so
// loaders, preprocessors and renderers agree on link targets.
func Make(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
