// Package builtin registers the plugins that ship with docpipe.
package builtin

import (
	"git.home.luguber.info/inful/docpipe/internal/loader/gitloader"
	"git.home.luguber.info/inful/docpipe/internal/loader/goloader"
	"git.home.luguber.info/inful/docpipe/internal/plugin"
	"git.home.luguber.info/inful/docpipe/internal/preprocess/crossref"
	"git.home.luguber.info/inful/docpipe/internal/preprocess/linkcheck"
	"git.home.luguber.info/inful/docpipe/internal/preprocess/smartfilter"
	"git.home.luguber.info/inful/docpipe/internal/render/hugo"
	"git.home.luguber.info/inful/docpipe/internal/render/markdown"
)

// Register adds every built-in plugin to reg under its canonical name.
func Register(reg *plugin.Registry) error {
	if err := reg.RegisterLoader("go", func(opts plugin.Options) (plugin.Loader, error) {
		return goloader.New(opts)
	}); err != nil {
		return err
	}
	if err := reg.RegisterLoader("git", func(opts plugin.Options) (plugin.Loader, error) {
		return gitloader.New(opts)
	}); err != nil {
		return err
	}

	if err := reg.RegisterPreprocessor("crossref", func(opts plugin.Options) (plugin.Preprocessor, error) {
		return crossref.New(opts)
	}); err != nil {
		return err
	}
	if err := reg.RegisterPreprocessor("smartfilter", func(opts plugin.Options) (plugin.Preprocessor, error) {
		return smartfilter.New(opts)
	}); err != nil {
		return err
	}
	if err := reg.RegisterPreprocessor("linkcheck", func(opts plugin.Options) (plugin.Preprocessor, error) {
		return linkcheck.New(opts)
	}); err != nil {
		return err
	}

	if err := reg.RegisterRenderer("markdown", func(opts plugin.Options) (plugin.Renderer, error) {
		return markdown.New(opts)
	}); err != nil {
		return err
	}
	if err := reg.RegisterRenderer("hugo", func(opts plugin.Options) (plugin.Renderer, error) {
		return hugo.New(opts)
	}); err != nil {
		return err
	}
	return nil
}
