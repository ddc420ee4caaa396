// Package watch re-runs a build when files under a set of directories change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is the quiet period after the last change before a rebuild.
const DefaultDebounce = 300 * time.Millisecond

// ErrWatch wraps watcher setup failures.
var ErrWatch = errors.New("failed to watch directory")

// Watcher observes directory trees recursively and triggers rebuilds.
type Watcher struct {
	roots    []string
	skip     []string
	debounce time.Duration
	logger   zerolog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a rebuild.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithLogger sets the logger for change and error events.
func WithLogger(logger zerolog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithSkipDirs excludes directory trees from watching, typically an output
// directory placed inside a watched input directory.
func WithSkipDirs(dirs ...string) Option {
	return func(w *Watcher) {
		for _, d := range dirs {
			if abs, err := filepath.Abs(d); err == nil {
				w.skip = append(w.skip, abs)
			}
		}
	}
}

// New creates a Watcher over roots. Roots must exist when Run is called.
func New(roots []string, opts ...Option) *Watcher {
	w := &Watcher{
		roots:    roots,
		debounce: DefaultDebounce,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run calls rebuild after each burst of changes until ctx is done.
// Rebuilds never overlap: changes made while a rebuild runs schedule exactly
// one more. Run returns nil on cancellation and waits for a running rebuild.
func (w *Watcher) Run(ctx context.Context, rebuild func(context.Context)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWatch, err)
	}
	defer fsw.Close()

	for _, root := range w.roots {
		if err := w.addDirsRecursive(fsw, root); err != nil {
			return err
		}
	}

	requests, trigger, stop := w.debouncer()
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-requests:
				w.logger.Info().Msg("change detected; rebuilding")
				rebuild(ctx)
			}
		}
	}()
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsw, ev, trigger)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("watcher error")
		}
	}
}

// debouncer returns a request channel, a trigger that (re)arms the quiet
// period timer, and a stop function. Requests coalesce in a one-slot buffer.
func (w *Watcher) debouncer() (<-chan struct{}, func(), func()) {
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	requests := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			select {
			case requests <- struct{}{}:
			default:
			}
		})
	}

	stop := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}

	return requests, trigger, stop
}

// handleEvent filters an event, starts watching new directories and
// triggers a rebuild.
func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if ShouldIgnore(ev.Name) || w.skipped(ev.Name) {
		return
	}
	if ev.Op == fsnotify.Chmod {
		return
	}
	if ev.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if err := w.addDirsRecursive(fsw, ev.Name); err != nil {
				w.logger.Warn().Err(err).Str("dir", ev.Name).Msg("watch add failed")
			}
		}
	}
	w.logger.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("file change detected")
	trigger()
}

// addDirsRecursive watches root and every directory below it, except
// skipped trees. Unreadable subdirectories are logged and left out.
func (w *Watcher) addDirsRecursive(fsw *fsnotify.Watcher, root string) error {
	if err := fsw.Add(root); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWatch, root, err)
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn().Err(err).Str("dir", path).Msg("watch scan failed")
			return nil
		}
		if !d.IsDir() || path == root {
			return nil
		}
		if w.skipped(path) || strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			w.logger.Warn().Err(err).Str("dir", path).Msg("watch add failed")
		}
		return nil
	})
}

// skipped reports whether path lies in a skipped tree.
func (w *Watcher) skipped(path string) bool {
	if len(w.skip) == 0 {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, dir := range w.skip {
		if abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// ShouldIgnore reports whether a changed path should not trigger a rebuild:
// hidden files, editor swap and backup files, and OS metadata files.
func ShouldIgnore(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}

	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db"
}
