// Package workspace manages ephemeral checkout directories for loaders that
// fetch source before introspecting it. Each manager owns one timestamped
// directory under the base dir and removes it completely on Cleanup.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/docpipe/internal/logfields"
)

// Manager handles one workspace directory.
type Manager struct {
	baseDir string
	dir     string
}

// NewManager creates a workspace manager. An empty baseDir defaults to the
// system temp directory.
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// Create creates the timestamped workspace directory. Calling Create on an
// already-created manager is a no-op.
func (m *Manager) Create() error {
	if m.dir != "" {
		return nil
	}
	timestamp := time.Now().Format("20060102-150405")
	dir := filepath.Join(m.baseDir, fmt.Sprintf("docpipe-%s", timestamp))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	m.dir = dir
	slog.Debug("Created workspace", logfields.Path(dir))
	return nil
}

// Path returns the workspace directory, or "" before Create.
func (m *Manager) Path() string {
	return m.dir
}

// Cleanup removes the workspace directory and everything under it.
func (m *Manager) Cleanup() error {
	if m.dir == "" {
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("failed to remove workspace directory: %w", err)
	}
	slog.Debug("Removed workspace", logfields.Path(m.dir))
	m.dir = ""
	return nil
}
