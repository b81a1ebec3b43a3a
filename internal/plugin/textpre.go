package plugin

import (
	"git.home.luguber.info/inful/docpipe/internal/doctree"
)

// TextFunc transforms a single Text node in place. The callback may replace
// or clear the node's payload and may insert new sibling nodes around it,
// but it must not delete the visited node itself or otherwise detach it:
// the traversal already holds a reference to it.
type TextFunc func(text *doctree.Node) error

// TextPreprocessor adapts a per-Text-node transformation into the general
// Preprocessor contract using a fixed traversal-plus-collapse algorithm.
// Concrete text preprocessors compose with it instead of re-implementing
// the traversal.
type TextPreprocessor struct {
	// Func is invoked once per Text node. A nil Func makes Preprocess a
	// structural no-op (only the collapse pass runs).
	Func TextFunc
}

// NewTextPreprocessor wraps fn into a Preprocessor.
func NewTextPreprocessor(fn TextFunc) *TextPreprocessor {
	return &TextPreprocessor{Func: fn}
}

// Preprocess walks the tree depth-first in pre-order, applying Func to each
// Text node, then merges adjacent Text siblings via CollapseText. Errors
// from Func are not caught here; they abort the whole pass for this root.
func (p *TextPreprocessor) Preprocess(root *doctree.Node) error {
	if err := p.walk(root); err != nil {
		return err
	}
	root.CollapseText()
	return nil
}

func (p *TextPreprocessor) walk(n *doctree.Node) error {
	if n.Kind == doctree.KindText && p.Func != nil {
		if err := p.Func(n); err != nil {
			return err
		}
	}
	// Recurse over a snapshot of the child list taken before the text step
	// ran on any child. Siblings inserted by Func are not visited in this
	// pass; originals that Func detached are still visited while reachable
	// from the snapshot. This is long-standing observable behavior that
	// existing text preprocessors rely on; do not switch to the live list.
	snapshot := append([]*doctree.Node(nil), n.Children()...)
	for _, c := range snapshot {
		if err := p.walk(c); err != nil {
			return err
		}
	}
	return nil
}
