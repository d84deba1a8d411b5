package store

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a FileSource's path for changes and triggers reloads.
// Edits are debounced so an editor writing temp files does not cause a
// reload storm.
type Watcher struct {
	source     *FileSource
	watcher    *fsnotify.Watcher
	logger     *slog.Logger
	debounce   *debouncer
	extensions []string

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// WatcherConfig contains configuration for the watcher.
type WatcherConfig struct {
	// DebounceInterval is the quiet period required after the last file
	// event before a reload fires. Default: 100ms.
	DebounceInterval time.Duration

	// Extensions is the list of file extensions that trigger reloads.
	// Default: .yaml, .yml.
	Extensions []string
}

// DefaultWatcherConfig returns the default watcher configuration.
func DefaultWatcherConfig() *WatcherConfig {
	return &WatcherConfig{
		DebounceInterval: 100 * time.Millisecond,
		Extensions:       []string{".yaml", ".yml"},
	}
}

// NewWatcher creates a watcher over the source's path.
func NewWatcher(source *FileSource, config *WatcherConfig, logger *slog.Logger) (*Watcher, error) {
	if config == nil {
		config = DefaultWatcherConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		source:   source,
		watcher:  fw,
		logger:   logger,
		debounce: newDebouncer(config.DebounceInterval),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	w.extensions = config.Extensions
	return w, nil
}

// Start begins watching. It returns immediately; reloads happen on a
// background goroutine until Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if err := w.watcher.Add(w.source.Path()); err != nil {
		return err
	}
	w.running = true
	go w.loop(ctx)
	return nil
}

// Stop stops watching and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	w.watcher.Close()
	<-w.doneCh
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)
	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("template file changed", "op", event.Op.String(), "path", event.Name)
			w.debounce.trigger(func() {
				if err := w.source.Reload(ctx); err != nil {
					w.logger.Error("failed to reload templates after file change",
						"error", err,
						"path", event.Name,
					)
				}
			})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("template watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	for _, allowed := range w.extensions {
		if ext == allowed {
			return true
		}
	}
	// Watching a single file: no extension filter applies.
	return w.source.Path() == event.Name
}

// debouncer coalesces bursts of triggers into one call after a quiet
// period.
type debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval}
}

// trigger schedules fn after the quiet period, resetting the clock if a
// trigger is already pending.
func (d *debouncer) trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, fn)
}
