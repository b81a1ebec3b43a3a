// Package plugin defines the extension contract of the document pipeline:
// the Loader, Preprocessor and Renderer roles, the per-instance Options
// mapping, and the registry the driver uses to instantiate plugins by name.
//
// Control flow is strictly downstream: loaders populate one Document each,
// preprocessors mutate the shared Root in configured order, and the renderer
// consumes the finished tree. There is no isolation between stages beyond
// that ordering; every plugin may read and write the entire shared tree.
package plugin

import (
	"io"

	"git.home.luguber.info/inful/docpipe/internal/doctree"
)

// Loader produces the content of one Document from a module specifier.
type Loader interface {
	// LoadDocument populates the pre-existing, empty Document doc with the
	// content addressed by modspec. It must not construct the Document and
	// must not depend on or mutate sibling Documents. When modspec cannot
	// be resolved to a content source it fails with a resolution error;
	// whether that aborts the run is the driver's policy, not the loader's.
	LoadDocument(modspec string, doc *doctree.Node) error
}

// Preprocessor transforms the document tree between loading and rendering.
type Preprocessor interface {
	// Preprocess mutates root in place. It may restructure, add or remove
	// nodes anywhere in the tree. Preprocessors run in a fixed,
	// caller-supplied order; each sees the cumulative result of all prior
	// preprocessors and must not assume it runs in isolation. The Root
	// identity is stable across the whole pipeline; only its contents
	// change.
	Preprocess(root *doctree.Node) error
}

// Renderer consumes a finished tree and produces output artifacts. The
// three operations are independently optional; callers must tolerate
// implementations that treat any of them as a no-op.
type Renderer interface {
	// Render writes a complete, self-consistent set of output files for
	// every Document in root under dir. No atomicity is promised for
	// partial failures, but a renderer should not leave the directory
	// half-initialized in a way that breaks a retry.
	Render(dir string, root *doctree.Node) error

	// RenderDocument renders exactly one Document to an already-open
	// stream, bypassing directory and file-naming logic. Used for plain
	// single-document output.
	RenderDocument(w io.Writer, doc *doctree.Node) error

	// LoadRendererDocument populates a renderer-owned synthetic Document
	// (e.g. "$$index"). It is invoked only for names carrying the reserved
	// RendererDocPrefix; such names are never routed to a Loader.
	LoadRendererDocument(root *doctree.Node, name string, doc *doctree.Node) error
}

// RendererDocPrefix marks document names that are synthesized by the
// renderer rather than loaded from a content source.
const RendererDocPrefix = "$$"

// IsRendererDocument reports whether name addresses a renderer-owned
// synthetic document.
func IsRendererDocument(name string) bool {
	return len(name) >= len(RendererDocPrefix) && name[:2] == RendererDocPrefix
}
