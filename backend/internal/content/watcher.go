package content

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce batches the burst of events editors emit on save
const DefaultDebounce = 200 * time.Millisecond

// Watcher invalidates store entries when their files change on disk
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]time.Time
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for the store's data directory and manifest
func NewWatcher(store *Store, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		store:    store,
		watcher:  fw,
		debounce: debounce,
		pending:  make(map[string]time.Time),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching in the background. It returns once the directories
// are registered.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dirs := []string{w.store.dir}
	if w.store.manifestPath != "" {
		if md := filepath.Dir(w.store.manifestPath); md != filepath.Clean(w.store.dir) {
			dirs = append(dirs, md)
		}
	}
	for _, d := range dirs {
		if err := w.watcher.Add(d); err != nil {
			w.store.log.Warn("Cannot watch directory", zap.String("dir", d), zap.Error(err))
			continue
		}
		w.store.log.Info("Watching data directory", zap.String("dir", d))
	}

	go w.run(ctx)
	return nil
}

// Stop ends the event loop and waits for it to exit
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	if err := w.watcher.Close(); err != nil {
		w.store.log.Error("Error closing watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

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
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending[filepath.Base(event.Name)] = time.Now()
			w.mu.Unlock()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.store.log.Error("Watcher error", zap.Error(err))
		case <-ticker.C:
			w.flush()
		}
	}
}

// flush invalidates files that have been quiet for the debounce interval
func (w *Watcher) flush() {
	now := time.Now()
	var ready []string
	w.mu.Lock()
	for name, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			ready = append(ready, name)
			delete(w.pending, name)
		}
	}
	w.mu.Unlock()

	for _, name := range ready {
		w.store.log.Debug("Data file changed", zap.String("file", name))
		w.store.Invalidate(name)
	}
}

// Watch starts a watcher that keeps the store in sync with the data
// directory. Callers must Stop it.
func (s *Store) Watch(ctx context.Context) (*Watcher, error) {
	w, err := NewWatcher(s, DefaultDebounce)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return w, nil
}
