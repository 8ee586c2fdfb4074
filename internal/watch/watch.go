// Package watch re-runs a function after debounced file system changes.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/jarbuilder/internal/logfields"
)

// Options configures a Watcher.
type Options struct {
	// Dirs are watched recursively. Missing directories are ignored.
	Dirs []string
	// Files are watched individually through their parent directory.
	Files []string
	// Ignore lists directory prefixes whose events are dropped.
	Ignore   []string
	Debounce time.Duration
}

// Watcher monitors source trees and triggers debounced runs.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	trees    map[string]bool
	ignore   []string
	debounce time.Duration
}

// New creates a watcher and registers every directory below opts.Dirs.
func New(opts Options) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		files:    make(map[string]bool),
		trees:    make(map[string]bool),
		debounce: opts.Debounce,
	}
	if w.debounce <= 0 {
		w.debounce = 500 * time.Millisecond
	}
	for _, p := range opts.Ignore {
		if abs, err := filepath.Abs(p); err == nil {
			w.ignore = append(w.ignore, abs)
		}
	}

	for _, dir := range opts.Dirs {
		if err := w.addTree(dir); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	for _, f := range opts.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		w.files[abs] = true
		if err := fw.Add(filepath.Dir(abs)); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
		}
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	if _, err := os.Stat(abs); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(p) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		w.trees[p] = true
		slog.Debug("Watching directory", logfields.Path(p))
		return nil
	})
}

func (w *Watcher) ignored(p string) bool {
	for _, prefix := range w.ignore {
		if p == prefix || strings.HasPrefix(p, prefix+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// relevant reports whether an event should schedule a run. Directories
// watched only as the parent of an individual file accept events for that
// file only.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil || w.ignored(name) {
		return false
	}
	return w.files[name] || w.trees[filepath.Dir(name)] || w.trees[name]
}

// Run calls fn after each burst of changes once no event arrived for the
// debounce window. fn runs on the watcher goroutine, so runs never overlap;
// events during a run schedule one follow-up. Run returns when ctx is done.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context)) error {
	defer func() {
		if err := w.watcher.Close(); err != nil {
			slog.Warn("Error closing file watcher", logfields.Error(err))
		}
	}()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						slog.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}
			if !w.relevant(event) {
				continue
			}
			slog.Debug("Change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			slog.Info("Changes detected, rebuilding")
			fn(ctx)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", logfields.Error(err))
		}
	}
}
