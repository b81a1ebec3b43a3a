// Package markdown renders a document tree into Markdown files, one per
// Document. It also synthesizes the reserved "$$index" renderer document
// listing every documented symbol.
package markdown

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docpipe/internal/doctree"
	"git.home.luguber.info/inful/docpipe/internal/errors"
	"git.home.luguber.info/inful/docpipe/internal/plugin"
	"git.home.luguber.info/inful/docpipe/internal/util/slug"
)

// IndexDocument is the reserved name of the symbol index this renderer can
// synthesize.
const IndexDocument = plugin.RendererDocPrefix + "index"

// Renderer writes GitHub-flavored Markdown.
type Renderer struct {
	opts plugin.Options
}

// New creates a markdown renderer. It recognizes no options today; the
// Options value is retained for forward compatibility.
func New(opts plugin.Options) (*Renderer, error) {
	return &Renderer{opts: opts}, nil
}

// Render writes one .md file per Document in root under dir.
func (r *Renderer) Render(dir string, root *doctree.Node) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapRender(err, "cannot create output directory").WithContext("dir", dir)
	}
	for _, doc := range root.Documents() {
		if err := r.renderFile(dir, doc); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderFile(dir string, doc *doctree.Node) error {
	path := filepath.Join(dir, FileName(doc.Data))
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapRender(err, "cannot create output file").WithContext("path", path)
	}
	defer f.Close()

	if err := r.RenderDocument(f, doc); err != nil {
		return err
	}
	return f.Close()
}

// FileName returns the output file name for a document name. Reserved
// renderer-document names lose their `$$` prefix ("$$index" becomes
// "index.md").
func FileName(docName string) string {
	return slug.Make(strings.TrimPrefix(docName, plugin.RendererDocPrefix)) + ".md"
}

// RenderDocument renders exactly one Document to w, including its title
// heading.
func (r *Renderer) RenderDocument(w io.Writer, doc *doctree.Node) error {
	return r.render(w, doc, true)
}

// RenderDocumentBody renders a Document without the title heading. Wrapping
// renderers (e.g. the Hugo renderer) carry the title in page metadata
// instead.
func (r *Renderer) RenderDocumentBody(w io.Writer, doc *doctree.Node) error {
	return r.render(w, doc, false)
}

func (r *Renderer) render(w io.Writer, doc *doctree.Node, withTitle bool) error {
	if doc.Kind != doctree.KindDocument {
		return errors.Render(fmt.Sprintf("cannot render %s node as a document", doc.Kind))
	}
	bw := bufio.NewWriter(w)
	if withTitle {
		fmt.Fprintf(bw, "# %s\n\n", displayTitle(doc.Data))
	}
	if err := r.renderBlocks(bw, doc.Children(), 2); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return errors.WrapRender(err, "failed to write document")
	}
	return nil
}

// DisplayTitle returns the human-readable title for a document name.
func DisplayTitle(docName string) string {
	return displayTitle(docName)
}

func displayTitle(docName string) string {
	name := strings.TrimPrefix(docName, plugin.RendererDocPrefix)
	if name != docName && name != "" {
		// Synthetic documents get a capitalized title.
		return strings.ToUpper(name[:1]) + name[1:]
	}
	return docName
}

// renderBlocks writes a child sequence, grouping consecutive inline nodes
// (Text, link) into paragraphs and rendering block Elements recursively.
func (r *Renderer) renderBlocks(w *bufio.Writer, children []*doctree.Node, level int) error {
	var inline []*doctree.Node
	flush := func() {
		if len(inline) == 0 {
			return
		}
		for _, n := range inline {
			writeInline(w, n)
		}
		w.WriteString("\n\n")
		inline = inline[:0]
	}

	for _, c := range children {
		switch {
		case c.Kind == doctree.KindText, c.Kind == doctree.KindElement && c.Data == doctree.ElemLink:
			inline = append(inline, c)
		case c.Kind == doctree.KindElement && c.Data == doctree.ElemPackage:
			flush()
			if err := r.renderPackage(w, c, level); err != nil {
				return err
			}
		case c.Kind == doctree.KindElement && c.Data == doctree.ElemSection:
			flush()
			if err := r.renderSection(w, c, level); err != nil {
				return err
			}
		default:
			return errors.Render(fmt.Sprintf("unknown node in document: %s %q", c.Kind, c.Data))
		}
	}
	flush()
	return nil
}

func (r *Renderer) renderPackage(w *bufio.Writer, pkg *doctree.Node, level int) error {
	fmt.Fprintf(w, "%s package %s\n\n", heading(level), pkg.Attr("name"))
	if imp := pkg.Attr("import"); imp != "" {
		fmt.Fprintf(w, "`import %q`\n\n", imp)
	}
	return r.renderBlocks(w, pkg.Children(), level+1)
}

func (r *Renderer) renderSection(w *bufio.Writer, sec *doctree.Node, level int) error {
	fmt.Fprintf(w, "%s %s\n\n", heading(level), sec.Attr("name"))
	if sig := sec.Attr("signature"); sig != "" {
		fmt.Fprintf(w, "```go\n%s\n```\n\n", sig)
	}
	return r.renderBlocks(w, sec.Children(), level+1)
}

// heading caps at h6; Markdown has nothing deeper.
func heading(level int) string {
	if level > 6 {
		level = 6
	}
	return strings.Repeat("#", level)
}

func writeInline(w *bufio.Writer, n *doctree.Node) {
	if n.Kind == doctree.KindText {
		w.WriteString(n.Data)
		return
	}
	// link Element
	var label strings.Builder
	n.Walk(func(c *doctree.Node) bool {
		if c.Kind == doctree.KindText {
			label.WriteString(c.Data)
		}
		return true
	})
	fmt.Fprintf(w, "[%s](%s)", label.String(), n.Attr("href"))
}

// LoadRendererDocument synthesizes renderer-owned documents. Only
// "$$index" is supported: an alphabetical list of every documented symbol
// across all loaded Documents.
func (r *Renderer) LoadRendererDocument(root *doctree.Node, name string, doc *doctree.Node) error {
	if name != IndexDocument {
		return errors.Render(fmt.Sprintf("unsupported renderer document %q", name))
	}

	type entry struct {
		symbol string
		target string
	}
	var entries []entry
	for _, d := range root.Documents() {
		if plugin.IsRendererDocument(d.Data) {
			continue
		}
		docFile := FileName(d.Data)
		d.Walk(func(n *doctree.Node) bool {
			if n.Kind == doctree.KindElement && n.Data == doctree.ElemSection {
				if sym := n.Attr("name"); sym != "" {
					entries = append(entries, entry{
						symbol: sym,
						target: docFile + "#" + slug.Make(sym),
					})
				}
			}
			return true
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].symbol) < strings.ToLower(entries[j].symbol)
	})

	for _, e := range entries {
		doc.AppendChild(doctree.NewText("- "))
		link := doctree.NewElement(doctree.ElemLink)
		link.SetAttr("href", e.target)
		link.AppendChild(doctree.NewText(e.symbol))
		doc.AppendChild(link)
		doc.AppendChild(doctree.NewText("\n"))
	}
	return nil
}
