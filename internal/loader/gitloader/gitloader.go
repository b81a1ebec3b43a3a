// Package gitloader implements a Loader that clones a Git repository and
// introspects Go packages inside the checkout.
//
// Modspecs take the form "url#pkgpath" where pkgpath (with optional `+`
// suffix) is resolved relative to the repository root; a bare "url" loads
// the root package. Clones are cached per instance so several modspecs
// against the same repository reuse one checkout.
package gitloader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/docpipe/internal/doctree"
	"git.home.luguber.info/inful/docpipe/internal/errors"
	"git.home.luguber.info/inful/docpipe/internal/loader/goloader"
	"git.home.luguber.info/inful/docpipe/internal/logfields"
	"git.home.luguber.info/inful/docpipe/internal/plugin"
	"git.home.luguber.info/inful/docpipe/internal/workspace"
)

// Loader clones repositories into a managed workspace and delegates package
// introspection to goloader.
type Loader struct {
	opts      plugin.Options
	branch    string
	depth     int
	ws        *workspace.Manager
	checkouts map[string]string // url -> checkout path
}

// New creates a Loader. Options:
//   - branch: branch to clone (default: remote HEAD)
//   - shallow_depth: clone depth (default 1, 0 disables shallow cloning)
//   - workspace: base directory for checkouts (default: system temp)
func New(opts plugin.Options) (*Loader, error) {
	return &Loader{
		opts:      opts,
		branch:    opts.String("branch", ""),
		depth:     opts.Int("shallow_depth", 1),
		ws:        workspace.NewManager(opts.String("workspace", "")),
		checkouts: make(map[string]string),
	}, nil
}

// LoadDocument clones the repository named by modspec (once per instance)
// and loads the addressed package subtree into doc.
func (l *Loader) LoadDocument(modspec string, doc *doctree.Node) error {
	spec := plugin.ParseModSpec(modspec)
	if spec.Name == "" {
		return errors.Resolution("empty module specifier")
	}

	url, pkgPath, _ := strings.Cut(spec.Name, "#")
	if url == "" {
		return errors.Resolution(fmt.Sprintf("modspec %q has no repository URL", modspec))
	}

	checkout, err := l.checkoutRepo(url)
	if err != nil {
		return err
	}

	inner, err := goloader.New(plugin.Options{"root": checkout})
	if err != nil {
		return err
	}
	if pkgPath == "" {
		pkgPath = "."
	}
	return inner.LoadDocument(plugin.ModSpec{Name: pkgPath, Depth: spec.Depth}.String(), doc)
}

func (l *Loader) checkoutRepo(url string) (string, error) {
	if path, ok := l.checkouts[url]; ok {
		return path, nil
	}
	if err := l.ws.Create(); err != nil {
		return "", errors.WrapFileSystem(err, "failed to create checkout workspace")
	}

	path := filepath.Join(l.ws.Path(), repoSlug(url))
	slog.Debug("Cloning repository", logfields.URL(url), logfields.Path(path))
	if err := os.RemoveAll(path); err != nil {
		return "", errors.WrapFileSystem(err, "failed to clear checkout directory")
	}

	cloneOptions := &gogit.CloneOptions{URL: url}
	if l.branch != "" {
		cloneOptions.ReferenceName = plumbing.ReferenceName("refs/heads/" + l.branch)
		cloneOptions.SingleBranch = true
	}
	if l.depth > 0 {
		cloneOptions.Depth = l.depth
	}

	repo, err := gogit.PlainClone(path, false, cloneOptions)
	if err != nil {
		return "", errors.WrapResolution(err, fmt.Sprintf("cannot clone repository %s", url)).
			WithContext("url", url)
	}
	if ref, herr := repo.Head(); herr == nil {
		slog.Info("Repository cloned", logfields.URL(url), slog.String("commit", ref.Hash().String()[:8]))
	}

	l.checkouts[url] = path
	return path, nil
}

// Cleanup removes all checkouts made by this instance.
func (l *Loader) Cleanup() error {
	l.checkouts = make(map[string]string)
	return l.ws.Cleanup()
}

// Close lets the pipeline driver release checkouts on shutdown.
func (l *Loader) Close() error { return l.Cleanup() }

// repoSlug derives a filesystem-safe directory name from a repository URL.
func repoSlug(url string) string {
	s := strings.TrimSuffix(url, ".git")
	if i := strings.LastIndexAny(s, "/:"); i >= 0 && i+1 < len(s) {
		s = s[i+1:]
	}
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '-'
		}
	}, s)
	if s == "" {
		s = "repo"
	}
	return s
}
