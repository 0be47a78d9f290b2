// Package watch monitors the source event table and re-runs discovery
// when it changes.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors source files for changes and triggers discovery reruns.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]*fileState
	mu       sync.RWMutex
	debounce time.Duration
	OnChange func(path string) error
	OnError  func(path string, err error)
}

type fileState struct {
	path         string
	lastModified time.Time
	size         int64
	processing   bool
}

// NewWatcher creates a new file watcher.
func NewWatcher() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &Watcher{
		watcher:  fsWatcher,
		files:    make(map[string]*fileState),
		debounce: 500 * time.Millisecond,
	}, nil
}

// Watch starts watching a source file for changes.
func (w *Watcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	stat, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	w.mu.Lock()
	w.files[absPath] = &fileState{
		path:         absPath,
		lastModified: stat.ModTime(),
		size:         stat.Size(),
	}
	w.mu.Unlock()

	// Watch the directory containing the file (fsnotify works better this way)
	dir := filepath.Dir(absPath)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	return nil
}

// Run starts the watch loop. Blocks until the context is cancelled, then
// closes the watcher and returns nil: stopping the watch is the normal way
// out, not an error.
func (w *Watcher) Run(ctx context.Context) error {
	debounceTimers := make(map[string]*time.Timer)
	var timerMu sync.Mutex

	for {
		select {
		case <-ctx.Done():
			w.watcher.Close()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			// Only handle write events
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			absPath, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}

			w.mu.RLock()
			state, isWatched := w.files[absPath]
			w.mu.RUnlock()

			if !isWatched {
				continue
			}

			// Debounce rapid changes from editors that write in bursts
			timerMu.Lock()
			if timer, exists := debounceTimers[absPath]; exists {
				timer.Stop()
			}
			debounceTimers[absPath] = time.AfterFunc(w.debounce, func() {
				w.handleChange(absPath, state)
			})
			timerMu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if w.OnError != nil {
				w.OnError("", err)
			}
		}
	}
}

func (w *Watcher) handleChange(path string, state *fileState) {
	w.mu.Lock()
	if state.processing {
		w.mu.Unlock()
		return
	}
	state.processing = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		state.processing = false
		w.mu.Unlock()
	}()

	stat, err := os.Stat(path)
	if err != nil {
		if w.OnError != nil {
			w.OnError(path, err)
		}
		return
	}

	// Size and mtime unchanged means a spurious event
	if stat.ModTime().Equal(state.lastModified) && stat.Size() == state.size {
		return
	}

	w.mu.Lock()
	state.lastModified = stat.ModTime()
	state.size = stat.Size()
	w.mu.Unlock()

	if w.OnChange != nil {
		if err := w.OnChange(path); err != nil {
			if w.OnError != nil {
				w.OnError(path, err)
			}
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
