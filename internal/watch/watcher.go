// Package watch re-runs a function when any of a set of files changes.
//
// The parent directories are watched rather than the files themselves, so
// editors and exports that replace a file by renaming are still noticed.
// Bursts of events are collapsed into one call after a quiet period.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when none is given.
const DefaultDebounce = 300 * time.Millisecond

// Watcher watches a fixed set of files.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a watcher for files. A debounce of zero or less selects
// DefaultDebounce.
func New(files []string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	watched := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		watched[abs] = true

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	return &Watcher{watcher: w, files: watched, debounce: debounce, logger: logger}, nil
}

// Run calls fn once for every burst of changes to the watched files until
// ctx is done or the watcher is closed. fn is never called concurrently with
// itself.
func (w *Watcher) Run(ctx context.Context, fn func(changed string)) error {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := ""

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("file changed", "path", event.Name, "op", event.Op.String())
			pending = event.Name
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)

		case <-timer.C:
			fn(pending)
		}
	}
}

// Close releases the underlying watcher. A running Run returns.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}
