package records

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Watcher polls a case file and reloads it into a [MemStore] when its
// content changes. Files that fail to parse are ignored and the previous
// contents stay in place.
type Watcher struct {
	path     string
	store    *MemStore
	interval time.Duration
	onReload func(n int)

	mu        sync.Mutex
	lastMtime time.Time
	lastHash  [sha256.Size]byte

	done     chan struct{}
	stopOnce sync.Once
}

// WatcherOption configures a [Watcher].
type WatcherOption func(*Watcher)

// WithInterval sets the polling interval. The default is 5 seconds.
func WithInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithReloadHook registers fn to run after each reload with the new record count.
func WithReloadHook(fn func(n int)) WatcherOption {
	return func(w *Watcher) { w.onReload = fn }
}

// NewWatcher starts polling path in a background goroutine. The store is
// expected to already hold the file's current contents.
func NewWatcher(path string, store *MemStore, opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		path:     path,
		store:    store,
		interval: 5 * time.Second,
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	if info, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("records: watcher initial read: %w", err)
		}
		w.lastMtime = info.ModTime()
		w.lastHash = sha256.Sum256(data)
	}
	go w.poll()
	return w, nil
}

// Stop stops polling.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.done) })
}

func (w *Watcher) poll() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

func (w *Watcher) check() {
	info, err := os.Stat(w.path)
	if err != nil {
		return
	}
	w.mu.Lock()
	unchanged := info.ModTime().Equal(w.lastMtime)
	w.mu.Unlock()
	if unchanged {
		return
	}

	data, err := os.ReadFile(w.path)
	if err != nil {
		slog.Warn("records watcher: cannot read case file", "path", w.path, "err", err)
		return
	}
	hash := sha256.Sum256(data)

	w.mu.Lock()
	w.lastMtime = info.ModTime()
	if hash == w.lastHash {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	recs, err := LoadFile(w.path)
	if err != nil {
		slog.Warn("records watcher: keeping previous records", "path", w.path, "err", err)
		return
	}
	w.mu.Lock()
	w.lastHash = hash
	w.mu.Unlock()

	w.store.Replace(recs)
	slog.Info("records watcher: case file reloaded", "path", w.path, "records", len(recs))
	if w.onReload != nil {
		w.onReload(len(recs))
	}
}
