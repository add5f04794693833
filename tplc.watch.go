package tplc

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultWatchDebounce groups bursts of file events into one recompilation.
const DefaultWatchDebounce = 100 * time.Millisecond

// Watcher error and log message constants
const (
	ErrMsgWatchNeedsFileLoader = "watching requires a file loader"
	ErrMsgWatchFailed          = "file watcher failed"
	LogMsgWatchEvent           = "template change detected"
	LogMsgWatchError           = "file watcher error"
)

// Watcher recompiles templates whenever a file they depend on changes. It
// requires an engine built with a *FileLoader.
type Watcher struct {
	engine   *Engine
	loader   *FileLoader
	debounce time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	tracked  []string
	compiled map[string]*CompiledSource
}

// NewWatcher creates a watcher for engine. A zero debounce uses
// DefaultWatchDebounce.
func NewWatcher(engine *Engine, debounce time.Duration) (*Watcher, error) {
	loader, ok := engine.Loader().(*FileLoader)
	if !ok {
		return nil, NewConfigError(ErrMsgWatchNeedsFileLoader, "loader", "")
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	return &Watcher{
		engine:   engine,
		loader:   loader,
		debounce: debounce,
		logger:   engine.logger,
		compiled: make(map[string]*CompiledSource),
	}, nil
}

// Track adds identifiers to the set that is recompiled on change.
func (w *Watcher) Track(identifiers ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, id := range identifiers {
		if _, ok := w.compiled[id]; ok {
			continue
		}
		w.compiled[id] = nil
		w.tracked = append(w.tracked, id)
	}
	sort.Strings(w.tracked)
}

// Refresh recompiles every tracked template that has never compiled or
// whose dependencies changed, and reports each result to handle.
func (w *Watcher) Refresh(handle func(BatchResult)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, id := range w.tracked {
		prev := w.compiled[id]
		if prev != nil && !prev.Stale(w.loader) {
			continue
		}
		compiled, err := w.engine.Compile(id)
		// A failed compile stays nil so it is retried on the next event
		w.compiled[id] = compiled
		handle(BatchResult{Identifier: id, Compiled: compiled, Err: err})
	}
}

// Run compiles all tracked templates, then watches the loader root until
// ctx is done.
func (w *Watcher) Run(ctx context.Context, handle func(BatchResult)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return NewLoaderError(ErrMsgWatchFailed, w.loader.Root(), err)
	}
	defer fsw.Close()

	if err := addRecursive(fsw, w.loader.Root()); err != nil {
		return NewLoaderError(ErrMsgWatchFailed, w.loader.Root(), err)
	}

	w.Refresh(handle)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				_ = addRecursive(fsw, event.Name)
			}
			if _, known := w.loader.Identifier(event.Name); !known {
				continue
			}
			w.logger.Debug(LogMsgWatchEvent, zap.String(LogFieldPath, event.Name))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.Refresh(handle)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn(LogMsgWatchError, zap.Error(err))
		}
	}
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(p)
		}
		return nil
	})
}
