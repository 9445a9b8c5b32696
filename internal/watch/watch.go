// Package watch reports changes to a stored task list file.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events produced by one atomic save.
const DefaultDebounce = 50 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	Logger   *log.Logger
}

// Watcher watches a single file. The parent directory is watched rather
// than the file itself so replacements by rename are seen.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *log.Logger
	fsw      *fsnotify.Watcher
}

// New starts watching path. The parent directory is created if missing.
func New(path string, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create watch dir: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Watcher{path: abs, debounce: opts.Debounce, logger: opts.Logger, fsw: fsw}, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Run calls fn after each settled change to the file until ctx is done.
func (w *Watcher) Run(ctx context.Context, fn func()) error {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			w.logger.Debug("Storage changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watch error", "err", err)
		case <-timer.C:
			fn()
		}
	}
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Watch is New followed by Run; the watcher is closed when ctx is done.
func Watch(ctx context.Context, path string, opts Options, fn func()) error {
	w, err := New(path, opts)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Run(ctx, fn)
}
