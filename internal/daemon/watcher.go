package daemon

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docpipe/internal/logfields"
)

// Watcher turns bursts of filesystem events into single rebuild triggers
// after a quiet window.
type Watcher struct {
	fsw     *fsnotify.Watcher
	quiet   time.Duration
	changes chan string
}

// NewWatcher watches each root directory recursively. Hidden directories
// and common build output directories are skipped.
func NewWatcher(roots []string, quiet time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{fsw: fsw, quiet: quiet, changes: make(chan string, 64)}
	for _, root := range roots {
		if err := w.addRecursive(root); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if skipDir(d.Name()) && path != root {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor" || name == "build"
}

// Run forwards debounced change notifications to trigger until ctx is
// cancelled. Newly created directories are added to the watch set so that
// changes beneath them are seen too.
func (w *Watcher) Run(ctx context.Context, trigger func(reason string)) {
	var (
		timer   = time.NewTimer(time.Hour)
		pending bool
		last    string
	)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create != 0 {
				// Best effort; the path may already be gone.
				_ = w.addRecursive(ev.Name)
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			last = ev.Name
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.quiet)
			pending = true
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("Watcher error", logfields.Error(err))
		case <-timer.C:
			pending = false
			slog.Debug("Change detected", logfields.Path(last))
			trigger("change:" + last)
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
