// Package linkcheck verifies Markdown links embedded in documentation text.
//
// Docstrings frequently carry inline Markdown written by hand; broken
// internal links only surface after rendering. This preprocessor parses
// every Text node with Goldmark, extracts link destinations, and checks
// relative `.md` destinations against the documents actually present in the
// run.
package linkcheck

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/docpipe/internal/doctree"
	"git.home.luguber.info/inful/docpipe/internal/errors"
	"git.home.luguber.info/inful/docpipe/internal/plugin"
	"git.home.luguber.info/inful/docpipe/internal/util/slug"
)

// Preprocessor reports (or rejects) broken internal Markdown links.
type Preprocessor struct {
	opts   plugin.Options
	strict bool
}

// New creates a linkcheck preprocessor. Options:
//   - strict: fail the pass on a broken internal link (default: warn).
func New(opts plugin.Options) (*Preprocessor, error) {
	return &Preprocessor{opts: opts, strict: opts.Bool("strict", false)}, nil
}

// Preprocess scans all Text nodes. The tree itself is never modified; this
// preprocessor only observes.
func (p *Preprocessor) Preprocess(root *doctree.Node) error {
	known := knownTargets(root)

	var firstErr error
	root.Walk(func(n *doctree.Node) bool {
		if firstErr != nil {
			return false
		}
		if n.Kind != doctree.KindText {
			return true
		}
		for _, dest := range extractDestinations([]byte(n.Data)) {
			if !internalTarget(dest) {
				continue
			}
			base, _, _ := strings.Cut(dest, "#")
			if known[base] {
				continue
			}
			if p.strict {
				firstErr = errors.Transform(fmt.Sprintf("broken internal link %q", dest))
				return false
			}
			slog.Warn("Broken internal link", slog.String("destination", dest))
		}
		return true
	})
	return firstErr
}

// knownTargets collects the output file names the run will produce.
func knownTargets(root *doctree.Node) map[string]bool {
	known := make(map[string]bool)
	for _, doc := range root.Documents() {
		known[slug.Make(doc.Data)+".md"] = true
	}
	return known
}

// internalTarget reports whether dest points into the rendered site rather
// than at an external resource or a same-page anchor.
func internalTarget(dest string) bool {
	if dest == "" || strings.HasPrefix(dest, "#") || strings.Contains(dest, "://") ||
		strings.HasPrefix(dest, "mailto:") {
		return false
	}
	base, _, _ := strings.Cut(dest, "#")
	return strings.HasSuffix(base, ".md")
}

// extractDestinations parses body as Markdown and returns every link and
// image destination in document order.
func extractDestinations(body []byte) []string {
	md := goldmark.New()
	root := md.Parser().Parse(gmtext.NewReader(body))

	var dests []string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Link:
			dests = append(dests, string(node.Destination))
		case *gmast.Image:
			dests = append(dests, string(node.Destination))
		case *gmast.AutoLink:
			dests = append(dests, string(node.URL(body)))
		}
		return gmast.WalkContinue, nil
	})
	return dests
}
