package engine

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"shaderscope/internal/logging"
)

// UnitWatcher watches unit JSON directories for changes and triggers a
// background rebuild once events settle. It reacts only to the paths it
// was configured with.
type UnitWatcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	session     *Session
	loader      UnitLoader
	paths       []string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats WatcherStats
}

// WatcherStats tracks watcher activity for debugging.
type WatcherStats struct {
	FilesCreated      int
	FilesModified     int
	FilesDeleted      int
	RebuildsTriggered int
	Errors            int
	LastEventTime     time.Time
	LastEventPath     string
	LastEventType     string
}

// NewUnitWatcher creates a watcher over the given directories. debounce
// controls how long events must settle before a rebuild fires; zero
// means 500ms.
func NewUnitWatcher(session *Session, loader UnitLoader, paths []string, debounce time.Duration) (*UnitWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &UnitWatcher{
		watcher:     watcher,
		session:     session,
		loader:      loader,
		paths:       paths,
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in a
// goroutine until Stop or ctx cancellation.
func (w *UnitWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, p := range w.paths {
		if _, err := os.Stat(p); err != nil {
			logging.WatchWarn("watch path unavailable: %v", err)
			continue
		}
		if err := w.watcher.Add(p); err != nil {
			logging.WatchWarn("watch failed for %s: %v", p, err)
			continue
		}
		logging.Watch("watching: %s", p)
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to drain.
func (w *UnitWatcher) Stop() {
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
		logging.WatchError("close: %v", err)
	}
	logging.Watch("stopped")
}

func (w *UnitWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Watch("context cancelled")
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.WatchError("watch error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.fireSettled(ctx)
		}
	}
}

func (w *UnitWatcher) handleEvent(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".json") {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Remove != 0:
		eventType = "delete"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	default:
		return
	}

	logging.WatchDebug("%s: %s", eventType, event.Name)

	w.mu.Lock()
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = event.Name
	w.stats.LastEventType = eventType
	switch eventType {
	case "create":
		w.stats.FilesCreated++
	case "modify":
		w.stats.FilesModified++
	case "delete", "rename":
		w.stats.FilesDeleted++
	}
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()
}

// fireSettled triggers one rebuild covering every event past the
// debounce window. The rebuild reloads the whole unit set, so settled
// paths only need counting, not replaying.
func (w *UnitWatcher) fireSettled(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	settled := 0
	for path, at := range w.debounceMap {
		if now.Sub(at) >= w.debounceDur {
			delete(w.debounceMap, path)
			settled++
		}
	}
	if settled > 0 {
		w.stats.RebuildsTriggered++
	}
	w.mu.Unlock()

	if settled == 0 {
		return
	}

	id := w.session.RebuildAsync(ctx, w.loader)
	logging.Watch("%d changes settled, rebuild %s", settled, id)
}

// Stats returns a copy of the current watcher statistics.
func (w *UnitWatcher) Stats() WatcherStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// IsWatching reports whether the event loop is running.
func (w *UnitWatcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// WatchedDirs returns the paths currently registered with fsnotify.
func (w *UnitWatcher) WatchedDirs() []string {
	return w.watcher.WatchList()
}
