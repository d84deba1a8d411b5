package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Flusher clears the decision cache on a cron schedule, bounding how stale
// a cached decision can get when writes bypass the explicit Flush path
// (templates edited directly in the backing store, file sources rewritten
// out of band).
type Flusher struct {
	cache    *DecisionCache
	cron     *cron.Cron
	schedule string
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewFlusher creates a scheduled flusher. schedule uses standard cron
// syntax, e.g. "*/5 * * * *" for every five minutes. An empty schedule
// disables the flusher.
func NewFlusher(cache *DecisionCache, schedule string, logger *slog.Logger) *Flusher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flusher{
		cache:    cache,
		cron:     cron.New(),
		schedule: schedule,
		logger:   logger.With("component", "cache.flusher"),
	}
}

// Start begins scheduled flushing. A no-op when no schedule is configured.
func (f *Flusher) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return nil
	}
	if f.schedule == "" {
		f.logger.Info("flush schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(f.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", f.schedule, err)
	}
	_, err := f.cron.AddFunc(f.schedule, func() {
		if err := f.cache.Flush(ctx); err != nil {
			f.logger.Error("scheduled cache flush failed", "error", err)
			return
		}
		f.logger.Debug("decision cache flushed")
	})
	if err != nil {
		return err
	}

	f.cron.Start()
	f.running = true
	f.logger.Info("cache flusher started", "schedule", f.schedule)
	return nil
}

// Stop halts scheduled flushing and waits for an in-flight flush to finish.
func (f *Flusher) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return
	}
	stopCtx := f.cron.Stop()
	<-stopCtx.Done()
	f.running = false
}
