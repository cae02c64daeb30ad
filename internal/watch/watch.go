// Package watch re-runs an action when files in a repository change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for events to settle.
const DefaultDebounce = 300 * time.Millisecond

// noisyDirs are never watched and their events never trigger a run.
var noisyDirs = map[string]bool{
	"node_modules": true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	"target":       true,
	".next":        true,
	"dist":         true,
	"build":        true,
	".cache":       true,
}

// Ignored reports whether a path relative to the repository root is noise.
// Inside .git only HEAD, the index and refs matter.
func Ignored(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	parts := strings.Split(relPath, "/")

	if parts[0] == ".git" {
		if len(parts) == 1 {
			return true
		}
		rest := strings.Join(parts[1:], "/")
		return rest != "HEAD" && rest != "index" && !strings.HasPrefix(rest, "refs/")
	}

	for _, p := range parts {
		if noisyDirs[p] {
			return true
		}
	}
	return false
}

// OnChange receives the relative paths that changed since the last call.
type OnChange func(ctx context.Context, changed []string)

// Watcher debounces file system events under a repository root.
type Watcher struct {
	root     string
	debounce time.Duration
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	doneCh   chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
}

// New watches every non-noisy directory under root. A zero debounce uses
// DefaultDebounce.
func New(root string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		root:     root,
		debounce: debounce,
		logger:   logger,
		watcher:  fsw,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Start runs the event loop until ctx is done or Stop is called. Only the
// first call starts a loop, and none starts after Stop.
func (w *Watcher) Start(ctx context.Context, onChange OnChange) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.stopped {
		return
	}
	w.started = true
	go w.loop(ctx, onChange)
}

// Stop ends the event loop, if one was started, and waits for it; an
// in-flight OnChange finishes first. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	started := w.started
	w.mu.Unlock()

	close(w.stopCh)
	if started {
		<-w.doneCh
	}
	w.watcher.Close()
}

func (w *Watcher) loop(ctx context.Context, onChange OnChange) {
	defer close(w.doneCh)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	changed := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			rel, ok := w.relevant(event)
			if !ok {
				continue
			}
			changed[rel] = true

			if event.Op&fsnotify.Create != 0 {
				w.watchIfDir(event.Name)
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			if len(changed) == 0 {
				continue
			}
			paths := make([]string, 0, len(changed))
			for p := range changed {
				paths = append(paths, p)
			}
			slices.Sort(paths)
			clear(changed)

			w.logger.Debug("change detected", "files", len(paths))
			onChange(ctx, paths)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return "", false
	}
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if Ignored(rel) {
		return "", false
	}
	return rel, true
}

func (w *Watcher) watchIfDir(path string) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || Ignored(rel) {
		return
	}
	if err := w.addRecursive(path); err != nil {
		w.logger.Warn("failed to watch new directory", "dir", path, "error", err)
	}
}

// addRecursive watches every directory under dir except noisy ones. Of .git
// only the directory itself and refs are watched.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		name := d.Name()
		if path != dir && noisyDirs[name] {
			return filepath.SkipDir
		}

		if name == ".git" && path != w.root {
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			refs := filepath.Join(path, "refs")
			if err := w.addTree(refs); err != nil {
				w.logger.Debug("refs not watched", "path", refs, "error", err)
			}
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

// WatchedCount reports how many directories are being watched.
func (w *Watcher) WatchedCount() int {
	return len(w.watcher.WatchList())
}
