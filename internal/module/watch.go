package module

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dana-lang/dana/internal/logging"
)

// Watcher watches a Loader's SearchPaths directories for edited .na files
// and evicts the corresponding cache entry, so a long-lived embedding host
// picks up a library change on the next `import` rather than requiring a
// restart. This is an enrichment beyond spec §4.6's letter (which only
// describes the cache as something `import` itself populates and consults);
// grounded on the teacher's internal/core/mangle_watcher.go file-watch loop,
// generalized from "revalidate an edited .mg rule file" to "evict an edited
// .na module's cache entry".
type Watcher struct {
	loader  *Loader
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}

	debounceMap map[string]time.Time
	debounceDur time.Duration
}

// NewWatcher creates a Watcher over loader's current SearchPaths. Directories
// that don't exist yet are skipped; they simply go unwatched.
func NewWatcher(loader *Loader) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		loader:      loader,
		watcher:     fw,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		debounceMap: make(map[string]time.Time),
		debounceDur: 300 * time.Millisecond,
	}

	for _, dir := range loader.SearchPaths {
		if err := fw.Add(dir); err != nil {
			logging.Get(logging.CategoryModule).Warnf("module watcher: skipping %s: %v", dir, err)
			continue
		}
		logging.Get(logging.CategoryModule).Infof("module watcher: watching %s", dir)
	}

	return w, nil
}

// Start begins watching in the background. Non-blocking.
func (w *Watcher) Start() {
	go w.run()
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	_ = w.watcher.Close()
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

		case <-ticker.C:
			w.flushDebounced()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".na") {
		return
	}
	switch {
	case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0:
		w.debounceMap[event.Name] = time.Now()
	}
}

func (w *Watcher) flushDebounced() {
	now := time.Now()
	for path, t := range w.debounceMap {
		if now.Sub(t) < w.debounceDur {
			continue
		}
		delete(w.debounceMap, path)
		w.invalidate(path)
	}
}

func (w *Watcher) invalidate(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if w.loader.Invalidate(abs) {
		logging.Get(logging.CategoryModule).Infof("module watcher: invalidated %s", abs)
	}
}
