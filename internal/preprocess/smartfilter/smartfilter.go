// Package smartfilter prunes documentation sections the site should not
// publish. It is a general preprocessor: it restructures the tree rather
// than rewriting text.
package smartfilter

import (
	"strings"
	"unicode"

	"git.home.luguber.info/inful/docpipe/internal/doctree"
	"git.home.luguber.info/inful/docpipe/internal/plugin"
)

// Preprocessor removes unexported-symbol sections and, optionally, sections
// whose documentation carries an exclusion marker.
type Preprocessor struct {
	opts              plugin.Options
	includeUnexported bool
	excludeMarker     string
}

// New creates a smartfilter preprocessor. Options:
//   - include_unexported: keep unexported symbols (default false)
//   - exclude_marker: drop sections whose doc text contains this marker
//     (default "docpipe:exclude"; empty disables marker filtering)
func New(opts plugin.Options) (*Preprocessor, error) {
	return &Preprocessor{
		opts:              opts,
		includeUnexported: opts.Bool("include_unexported", false),
		excludeMarker:     opts.String("exclude_marker", "docpipe:exclude"),
	}, nil
}

// Preprocess walks every document and detaches filtered sections together
// with their subtrees.
func (p *Preprocessor) Preprocess(root *doctree.Node) error {
	for _, doc := range root.Documents() {
		p.filter(doc)
	}
	return nil
}

func (p *Preprocessor) filter(n *doctree.Node) {
	// Iterate over a copy: RemoveChild mutates the live list.
	for _, c := range append([]*doctree.Node(nil), n.Children()...) {
		if c.Kind == doctree.KindElement && c.Data == doctree.ElemSection && p.drop(c) {
			n.RemoveChild(c)
			continue
		}
		p.filter(c)
	}
}

func (p *Preprocessor) drop(sec *doctree.Node) bool {
	if !p.includeUnexported && !exported(sec.Attr("name")) {
		return true
	}
	if p.excludeMarker != "" {
		for _, c := range sec.Children() {
			if c.Kind == doctree.KindText && strings.Contains(c.Data, p.excludeMarker) {
				return true
			}
		}
	}
	return false
}

// exported reports whether a section name refers to an exported symbol.
// Method names like "(*Greeter).Greet" are judged by both the receiver type
// and the method name.
func exported(name string) bool {
	if name == "" {
		return false
	}
	for _, part := range strings.FieldsFunc(name, func(r rune) bool {
		return r == '(' || r == ')' || r == '*' || r == '.' || r == ',' || r == ' '
	}) {
		if !unicode.IsUpper([]rune(part)[0]) {
			return false
		}
	}
	return true
}
