package plugin

import "strings"

// ModSpec is a parsed module specifier: an opaque name plus a recursion
// depth derived from the trailing-`+` convention ("pkg++" means the package
// and two additional nested levels). Interpretation of Name beyond that is
// entirely the loader's responsibility.
type ModSpec struct {
	Name  string
	Depth int
}

// ParseModSpec splits a raw specifier into its name and the count of
// trailing `+` characters.
func ParseModSpec(spec string) ModSpec {
	name := strings.TrimRight(spec, "+")
	return ModSpec{Name: name, Depth: len(spec) - len(name)}
}

// String reassembles the canonical specifier form.
func (m ModSpec) String() string {
	return m.Name + strings.Repeat("+", m.Depth)
}
