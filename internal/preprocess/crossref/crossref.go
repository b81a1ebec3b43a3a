// Package crossref resolves `@Symbol` references inside Text nodes into
// link Elements pointing at the section documenting that symbol.
//
// It is a text preprocessor: the traversal and the trailing collapse pass
// come from plugin.TextPreprocessor; this package contributes only the
// per-Text-node substitution.
package crossref

import (
	"fmt"
	"log/slog"
	"regexp"

	"git.home.luguber.info/inful/docpipe/internal/doctree"
	"git.home.luguber.info/inful/docpipe/internal/errors"
	"git.home.luguber.info/inful/docpipe/internal/plugin"
	"git.home.luguber.info/inful/docpipe/internal/util/slug"
)

// refPattern matches `@Name` and dotted forms like `@pkg.Name`.
var refPattern = regexp.MustCompile(`@([A-Za-z_]\w*(?:\.[A-Za-z_]\w*)*)`)

// Preprocessor resolves symbol references across all documents of a run.
type Preprocessor struct {
	opts   plugin.Options
	strict bool
}

// New creates a crossref preprocessor. Options:
//   - strict: fail the pass on unresolvable references (default: warn).
func New(opts plugin.Options) (*Preprocessor, error) {
	return &Preprocessor{opts: opts, strict: opts.Bool("strict", false)}, nil
}

// Preprocess builds a symbol index over the whole tree, then substitutes
// references in every Text node.
func (p *Preprocessor) Preprocess(root *doctree.Node) error {
	index := buildIndex(root)
	tp := plugin.NewTextPreprocessor(func(text *doctree.Node) error {
		return p.resolveText(text, index)
	})
	return tp.Preprocess(root)
}

// buildIndex maps symbol names (bare and package-qualified) to link
// targets. Later documents do not override earlier ones, keeping resolution
// deterministic in document order.
func buildIndex(root *doctree.Node) map[string]string {
	index := make(map[string]string)
	add := func(key, target string) {
		if _, exists := index[key]; !exists && key != "" {
			index[key] = target
		}
	}
	for _, doc := range root.Documents() {
		docName := doc.Data
		doc.Walk(func(n *doctree.Node) bool {
			if n.Kind != doctree.KindElement {
				return true
			}
			switch n.Data {
			case doctree.ElemPackage:
				add(n.Attr("name"), slug.Make(docName)+".md")
			case doctree.ElemSection:
				name := n.Attr("name")
				target := fmt.Sprintf("%s.md#%s", slug.Make(docName), slug.Make(name))
				add(name, target)
				if pkg := enclosingPackage(n); pkg != "" {
					add(pkg+"."+name, target)
				}
			}
			return true
		})
	}
	return index
}

func enclosingPackage(n *doctree.Node) string {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Kind == doctree.KindElement && p.Data == doctree.ElemPackage {
			return p.Attr("name")
		}
	}
	return ""
}

// resolveText splits the visited Text node around each resolvable
// reference, splicing in link Elements. The visited node keeps the leading
// segment; everything after it is inserted as new siblings, which the
// surrounding traversal will not visit in this pass.
func (p *Preprocessor) resolveText(text *doctree.Node, index map[string]string) error {
	matches := refPattern.FindAllStringSubmatchIndex(text.Data, -1)
	if len(matches) == 0 {
		return nil
	}

	payload := text.Data
	var nodes []*doctree.Node
	appendText := func(s string) {
		if s != "" {
			nodes = append(nodes, doctree.NewText(s))
		}
	}

	last := 0
	resolved := 0
	for _, m := range matches {
		start, end, nameStart, nameEnd := m[0], m[1], m[2], m[3]
		name := payload[nameStart:nameEnd]
		target, ok := index[name]
		if !ok {
			if p.strict {
				return errors.Transform(fmt.Sprintf("unresolvable reference @%s", name))
			}
			slog.Warn("Unresolvable cross-reference", slog.String("reference", name))
			continue
		}
		appendText(payload[last:start])
		link := doctree.NewElement(doctree.ElemLink)
		link.SetAttr("href", target)
		link.AppendChild(doctree.NewText(name))
		nodes = append(nodes, link)
		last = end
		resolved++
	}
	if resolved == 0 {
		return nil
	}
	appendText(payload[last:])

	// First segment stays in the visited node; the rest become siblings.
	parent := text.Parent()
	next := followingSibling(parent, text)
	if nodes[0].Kind == doctree.KindText {
		text.Data = nodes[0].Data
		nodes = nodes[1:]
	} else {
		text.Data = ""
	}
	for _, n := range nodes {
		parent.InsertBefore(n, next)
	}
	return nil
}

func followingSibling(parent, n *doctree.Node) *doctree.Node {
	children := parent.Children()
	for i, c := range children {
		if c == n {
			if i+1 < len(children) {
				return children[i+1]
			}
			return nil
		}
	}
	return nil
}
