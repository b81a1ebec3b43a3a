package hugo

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docpipe/internal/doctree"
	"git.home.luguber.info/inful/docpipe/internal/plugin"
)

func buildRoot() *doctree.Node {
	root := doctree.NewRoot()
	doc := doctree.NewDocument("api")
	pkg := doctree.NewElement(doctree.ElemPackage)
	pkg.SetAttr("name", "sample")
	pkg.AppendChild(doctree.NewText("Package sample."))
	doc.AppendChild(pkg)
	root.AppendChild(doc)
	return root
}

func TestRender_WritesSiteSkeleton(t *testing.T) {
	r, err := New(plugin.Options{
		"title":    "Sample Docs",
		"base_url": "https://docs.example.com/",
		"theme":    "hextra",
	})
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, r.Render(dir, buildRoot()))

	data, err := os.ReadFile(filepath.Join(dir, "hugo.yaml"))
	require.NoError(t, err)
	var site map[string]any
	require.NoError(t, yaml.Unmarshal(data, &site))
	require.Equal(t, "Sample Docs", site["title"])
	require.Equal(t, "https://docs.example.com/", site["baseURL"])
	require.Equal(t, "hextra", site["theme"])

	page, err := os.ReadFile(filepath.Join(dir, "content", "api.md"))
	require.NoError(t, err)
	out := string(page)
	require.Contains(t, out, "---\ntitle: api\nweight: 1\n---\n")
	require.Contains(t, out, "## package sample")
	// Title lives in frontmatter, not as an H1 in the body.
	require.NotContains(t, out, "# api\n")
}

func TestRenderDocument_DelegatesToMarkdown(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.RenderDocument(&buf, buildRoot().Documents()[0]))
	require.Contains(t, buf.String(), "# api\n")
}

func TestLoadRendererDocument_Index(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)

	root := buildRoot()
	idx := doctree.NewDocument("$$index")
	require.NoError(t, r.LoadRendererDocument(root, "$$index", idx))
}
