// Package watcher watches one configuration file for changes and emits
// debounced change events, so that a burst of editor writes triggers a
// single reconciliation.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"storesync/pkg/logging"
)

// DefaultDebounceInterval is how long the watcher waits for further
// writes before emitting an event.
const DefaultDebounceInterval = 500 * time.Millisecond

// Event signals that the watched file settled after one or more changes.
type Event struct {
	Path      string
	Timestamp time.Time
}

// Watcher watches a single file through its parent directory. Editors
// commonly replace files via rename, which a watch on the file itself
// would lose track of.
type Watcher struct {
	mu sync.Mutex

	path             string
	debounceInterval time.Duration

	watcher *fsnotify.Watcher
	timer   *time.Timer
	stopCh  chan struct{}
	running bool
}

// New creates a watcher for path. A zero debounce interval means
// DefaultDebounceInterval.
func New(path string, debounceInterval time.Duration) *Watcher {
	if debounceInterval == 0 {
		debounceInterval = DefaultDebounceInterval
	}
	return &Watcher{
		path:             path,
		debounceInterval: debounceInterval,
	}
}

// Start begins watching and delivers debounced events until the context
// is cancelled or Stop is called. Calling Start on a running watcher is a
// no-op.
func (w *Watcher) Start(ctx context.Context, events chan<- Event) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		w.mu.Unlock()
		return err
	}

	w.watcher = fsw
	w.running = true
	w.stopCh = make(chan struct{})
	w.mu.Unlock()

	go w.processEvents(ctx, events)

	logging.Info("watcher", "watching %s for changes", w.path)
	return nil
}

// Stop terminates the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.running = false
	close(w.stopCh)
	w.watcher.Close()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *Watcher) processEvents(ctx context.Context, events chan<- Event) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event, events)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher", err, "filesystem watcher error")
		}
	}
}

func (w *Watcher) handleFsEvent(event fsnotify.Event, events chan<- Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}

	// Each new write pushes the emission out again; only a settled file
	// produces an event.
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounceInterval, func() {
		select {
		case events <- Event{Path: w.path, Timestamp: time.Now()}:
		case <-w.stopCh:
		}
	})
}
