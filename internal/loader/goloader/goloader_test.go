package goloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpipe/internal/doctree"
	"git.home.luguber.info/inful/docpipe/internal/errors"
	"git.home.luguber.info/inful/docpipe/internal/plugin"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

const samplePkg = `// Package sample demonstrates the loader.
package sample

// Answer is the canonical constant.
const Answer = 42

// Greeter greets.
type Greeter struct{ Prefix string }

// Greet returns a greeting.
func (g *Greeter) Greet(name string) string { return g.Prefix + name }

// New constructs a Greeter.
func New(prefix string) *Greeter { return &Greeter{Prefix: prefix} }

// internalHelper is unexported and must not appear.
func internalHelper() {}
`

func TestLoadDocument_Sections(t *testing.T) {
	root := writeTree(t, map[string]string{
		"sample/sample.go":      samplePkg,
		"sample/sample_test.go": "package sample\n\nfunc helper() {}\n",
	})

	l, err := New(plugin.Options{"root": root})
	require.NoError(t, err)

	docNode := doctree.NewDocument("sample")
	require.NoError(t, l.LoadDocument("sample", docNode))

	require.Len(t, docNode.Children(), 1)
	pkg := docNode.Children()[0]
	require.Equal(t, doctree.ElemPackage, pkg.Data)
	require.Equal(t, "sample", pkg.Attr("name"))
	require.Equal(t, "sample", pkg.Attr("import"))

	// Package doc text, const, type (with nested ctor+method), no top-level
	// func left because New is attached to Greeter by go/doc.
	children := pkg.Children()
	require.Equal(t, doctree.KindText, children[0].Kind)
	require.Contains(t, children[0].Data, "demonstrates the loader")

	var names []string
	pkg.Walk(func(n *doctree.Node) bool {
		if n.Kind == doctree.KindElement && n.Data == doctree.ElemSection {
			names = append(names, n.Attr("name"))
		}
		return true
	})
	require.Contains(t, names, "Answer")
	require.Contains(t, names, "Greeter")
	require.Contains(t, names, "New")
	require.Contains(t, names, "(*Greeter).Greet")
	require.NotContains(t, names, "internalHelper")
}

func TestLoadDocument_SignatureRendering(t *testing.T) {
	root := writeTree(t, map[string]string{"sample/sample.go": samplePkg})
	l, err := New(plugin.Options{"root": root})
	require.NoError(t, err)

	docNode := doctree.NewDocument("sample")
	require.NoError(t, l.LoadDocument("sample", docNode))

	var sig string
	docNode.Walk(func(n *doctree.Node) bool {
		if n.Kind == doctree.KindElement && n.Attr("name") == "(*Greeter).Greet" {
			sig = n.Attr("signature")
		}
		return true
	})
	require.Equal(t, "func (g *Greeter) Greet(name string) string", sig)
}

func TestLoadDocument_NestedDepth(t *testing.T) {
	root := writeTree(t, map[string]string{
		"top/top.go":                 "// Package top is the parent.\npackage top\n",
		"top/inner/inner.go":         "// Package inner is one level down.\npackage inner\n",
		"top/inner/deeper/deeper.go": "// Package deeper is two levels down.\npackage deeper\n",
		"top/testdata/ignored.go":    "package ignored\n",
	})
	l, err := New(plugin.Options{"root": root})
	require.NoError(t, err)

	imports := func(modspec string) []string {
		docNode := doctree.NewDocument("top")
		require.NoError(t, l.LoadDocument(modspec, docNode))
		var got []string
		for _, c := range docNode.Children() {
			got = append(got, c.Attr("import"))
		}
		return got
	}

	require.Equal(t, []string{"top"}, imports("top"))
	require.Equal(t, []string{"top", "top/inner"}, imports("top+"))
	require.Equal(t, []string{"top", "top/inner", "top/inner/deeper"}, imports("top++"))
}

func TestLoadDocument_Deterministic(t *testing.T) {
	root := writeTree(t, map[string]string{
		"sample/sample.go": samplePkg,
		"sample/extra.go":  "package sample\n\n// Extra does more.\nfunc Extra() {}\n",
	})
	l, err := New(plugin.Options{"root": root})
	require.NoError(t, err)

	first := doctree.NewDocument("sample")
	require.NoError(t, l.LoadDocument("sample", first))
	second := doctree.NewDocument("sample")
	require.NoError(t, l.LoadDocument("sample", second))

	require.Equal(t, first.Dump(), second.Dump())
}

func TestLoadDocument_ResolutionErrors(t *testing.T) {
	root := writeTree(t, map[string]string{"empty/README.md": "no source here"})
	l, err := New(plugin.Options{"root": root})
	require.NoError(t, err)

	doc := doctree.NewDocument("x")

	err = l.LoadDocument("", doc)
	require.True(t, errors.IsCategory(err, errors.CategoryResolution))

	err = l.LoadDocument("does/not/exist", doc)
	require.True(t, errors.IsCategory(err, errors.CategoryResolution))

	err = l.LoadDocument("empty", doc)
	require.True(t, errors.IsCategory(err, errors.CategoryResolution))

	// A failed load leaves the document untouched.
	require.Empty(t, doc.Children())
}
