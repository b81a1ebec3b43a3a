package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpipe/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docpipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
title: "Example"
loaders:
  - name: go
    options:
      root: ./src
    modules: ["pkg/a+", "$$index"]
preprocessors:
  - name: crossref
  - name: smartfilter
    options:
      include_unexported: true
renderer:
  name: markdown
output:
  directory: ./out
  clean: true
daemon:
  watch: ["./src"]
  interval: 5m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "Example", cfg.Title)
	require.Len(t, cfg.Loaders, 1)
	require.Equal(t, "go", cfg.Loaders[0].Name)
	require.Equal(t, []string{"pkg/a+", "$$index"}, cfg.Loaders[0].Modules)
	require.Equal(t, "./src", cfg.Loaders[0].Options["root"])

	require.Len(t, cfg.Preprocessors, 2)
	require.Equal(t, "crossref", cfg.Preprocessors[0].Name)
	require.Equal(t, true, cfg.Preprocessors[1].Options["include_unexported"])

	require.Equal(t, "markdown", cfg.Renderer.Name)
	require.Equal(t, "./out", cfg.Output.Directory)
	require.True(t, cfg.Output.Clean)

	interval, err := cfg.Daemon.IntervalDuration()
	require.NoError(t, err)
	require.Equal(t, 5*time.Minute, interval)
	require.Equal(t, 500, cfg.Daemon.DebounceMS)
	require.Equal(t, "docpipe.builds", cfg.Daemon.Subject)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
loaders:
  - name: go
    modules: ["pkg"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "Documentation", cfg.Title)
	require.Equal(t, "markdown", cfg.Renderer.Name)
	require.Equal(t, "./build/docs", cfg.Output.Directory)
	require.Nil(t, cfg.Daemon)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("DOCPIPE_TEST_ROOT", "/srv/code")
	path := writeConfig(t, `
loaders:
  - name: go
    options:
      root: "${DOCPIPE_TEST_ROOT}"
    modules: ["pkg"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/srv/code", cfg.Loaders[0].Options["root"])
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	require.True(t, errors.IsCategory(err, errors.CategoryConfig))
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no loaders", `renderer: {name: markdown}`},
		{"loader without name", "loaders:\n  - modules: [\"a\"]"},
		{"loader without modules", "loaders:\n  - name: go"},
		{"empty modspec", "loaders:\n  - name: go\n    modules: [\"\"]"},
		{"nameless preprocessor", "loaders:\n  - name: go\n    modules: [\"a\"]\npreprocessors:\n  - options: {}"},
		{"bad interval", "loaders:\n  - name: go\n    modules: [\"a\"]\ndaemon:\n  interval: soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			require.True(t, errors.IsCategory(err, errors.CategoryConfig))
		})
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docpipe.yaml")

	require.NoError(t, Init(path, false))
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "go", cfg.Loaders[0].Name)
}
