// Package hugo renders a document tree as a Hugo site skeleton: a
// hugo.yaml site configuration plus one content page per Document. The
// Markdown itself comes from the markdown renderer; this package adds the
// site layout and page frontmatter.
package hugo

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docpipe/internal/doctree"
	"git.home.luguber.info/inful/docpipe/internal/errors"
	"git.home.luguber.info/inful/docpipe/internal/plugin"
	"git.home.luguber.info/inful/docpipe/internal/render/markdown"
)

// Renderer writes a Hugo content tree.
type Renderer struct {
	opts  plugin.Options
	inner *markdown.Renderer

	title   string
	baseURL string
	theme   string
}

// New creates a Hugo renderer. Options:
//   - title: site title (default "Documentation")
//   - base_url: site baseURL
//   - theme: Hugo theme name (optional)
func New(opts plugin.Options) (*Renderer, error) {
	inner, err := markdown.New(opts)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		opts:    opts,
		inner:   inner,
		title:   opts.String("title", "Documentation"),
		baseURL: opts.String("base_url", ""),
		theme:   opts.String("theme", ""),
	}, nil
}

// Render writes hugo.yaml and content/<name>.md for every Document.
func (r *Renderer) Render(dir string, root *doctree.Node) error {
	contentDir := filepath.Join(dir, "content")
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		return errors.WrapRender(err, "cannot create content directory").WithContext("dir", contentDir)
	}

	if err := r.writeSiteConfig(dir); err != nil {
		return err
	}

	for i, doc := range root.Documents() {
		if err := r.writePage(contentDir, doc, i+1); err != nil {
			return err
		}
	}
	return nil
}

// writeSiteConfig generates the hugo.yaml site configuration.
func (r *Renderer) writeSiteConfig(dir string) error {
	site := map[string]any{
		"title":        r.title,
		"languageCode": "en",
		"markup": map[string]any{
			"goldmark":  map[string]any{"renderer": map[string]any{"unsafe": true}},
			"highlight": map[string]any{"style": "github", "noClasses": false},
		},
	}
	if r.baseURL != "" {
		site["baseURL"] = r.baseURL
	}
	if r.theme != "" {
		site["theme"] = r.theme
	}

	data, err := yaml.Marshal(site)
	if err != nil {
		return errors.WrapRender(err, "failed to marshal hugo.yaml")
	}
	path := filepath.Join(dir, "hugo.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapRender(err, "cannot write hugo.yaml").WithContext("path", path)
	}
	return nil
}

func (r *Renderer) writePage(contentDir string, doc *doctree.Node, weight int) error {
	path := filepath.Join(contentDir, markdown.FileName(doc.Data))
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapRender(err, "cannot create content page").WithContext("path", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fm, err := yaml.Marshal(map[string]any{
		"title":  markdown.DisplayTitle(doc.Data),
		"weight": weight,
	})
	if err != nil {
		return errors.WrapRender(err, "failed to marshal page frontmatter")
	}
	fmt.Fprintf(w, "---\n%s---\n\n", fm)
	if err := w.Flush(); err != nil {
		return errors.WrapRender(err, "failed to write content page")
	}

	if err := r.inner.RenderDocumentBody(f, doc); err != nil {
		return err
	}
	return f.Close()
}

// RenderDocument delegates single-document output to the markdown
// renderer; plain mode has no use for site scaffolding.
func (r *Renderer) RenderDocument(w io.Writer, doc *doctree.Node) error {
	return r.inner.RenderDocument(w, doc)
}

// LoadRendererDocument supports the same synthetic documents as the
// markdown renderer.
func (r *Renderer) LoadRendererDocument(root *doctree.Node, name string, doc *doctree.Node) error {
	return r.inner.LoadRendererDocument(root, name, doc)
}
