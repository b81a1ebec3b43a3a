package gitloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpipe/internal/doctree"
	"git.home.luguber.info/inful/docpipe/internal/errors"
	"git.home.luguber.info/inful/docpipe/internal/plugin"
)

// initRepo creates a local git repository with one committed Go package.
func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	pkgDir := filepath.Join(dir, "pkg")
	require.NoError(t, os.MkdirAll(pkgDir, 0o755))
	source := "// Package pkg is loaded from a checkout.\npackage pkg\n\n// Exported does something.\nfunc Exported() {}\n"
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "pkg.go"), []byte(source), 0o600))

	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(".")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.invalid", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

func TestLoadDocument_FromLocalClone(t *testing.T) {
	repoDir := initRepo(t)

	l, err := New(plugin.Options{"workspace": t.TempDir(), "shallow_depth": 0})
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Cleanup() })

	doc := doctree.NewDocument("pkg")
	require.NoError(t, l.LoadDocument(repoDir+"#pkg", doc))

	require.Len(t, doc.Children(), 1)
	pkg := doc.Children()[0]
	require.Equal(t, "pkg", pkg.Attr("name"))

	var names []string
	pkg.Walk(func(n *doctree.Node) bool {
		if n.Data == doctree.ElemSection {
			names = append(names, n.Attr("name"))
		}
		return true
	})
	require.Contains(t, names, "Exported")
}

func TestLoadDocument_CheckoutReused(t *testing.T) {
	repoDir := initRepo(t)

	l, err := New(plugin.Options{"workspace": t.TempDir(), "shallow_depth": 0})
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Cleanup() })

	first := doctree.NewDocument("a")
	require.NoError(t, l.LoadDocument(repoDir+"#pkg", first))
	path := l.checkouts[repoDir]
	require.NotEmpty(t, path)

	second := doctree.NewDocument("b")
	require.NoError(t, l.LoadDocument(repoDir+"#pkg", second))
	require.Equal(t, path, l.checkouts[repoDir])
	require.Equal(t, first.Dump(), second.Dump())
}

func TestLoadDocument_BadRepository(t *testing.T) {
	l, err := New(plugin.Options{"workspace": t.TempDir(), "shallow_depth": 0})
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Cleanup() })

	doc := doctree.NewDocument("x")
	err = l.LoadDocument(filepath.Join(t.TempDir(), "not-a-repo")+"#pkg", doc)
	require.True(t, errors.IsCategory(err, errors.CategoryResolution))
}

func TestRepoSlug(t *testing.T) {
	require.Equal(t, "docpipe", repoSlug("https://example.com/inful/docpipe.git"))
	require.Equal(t, "docpipe", repoSlug("git@example.com:inful/docpipe"))
	require.Equal(t, "repo", repoSlug(""))
}
