package worker

import (
	"context"
	"sync/atomic"
	"time"

	"sjsage522/pricepeek/internal/product"
	"sjsage522/pricepeek/logger"
	"sjsage522/pricepeek/services/publisher"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentRefreshes bounds how many browser sessions one cycle opens at once
const maxConcurrentRefreshes = 4

// CycleStats summarises one refresh cycle
type CycleStats struct {
	Refreshed int
	Failed    int
	Elapsed   time.Duration
}

// Worker keeps the snapshots of a watch list fresh
type Worker struct {
	ctx       context.Context
	cache     product.Getter
	publisher publisher.Publisher
	urls      []string
	interval  time.Duration
	log       *logger.Logger
}

// NewWorker creates a new worker; pub may be nil when no event stream is configured
func NewWorker(
	ctx context.Context,
	cache product.Getter,
	pub publisher.Publisher,
	urls []string,
	interval time.Duration,
) *Worker {
	return &Worker{
		ctx:       ctx,
		cache:     cache,
		publisher: pub,
		urls:      urls,
		interval:  interval,
		log:       logger.ForWorker(),
	}
}

// Start runs refresh cycles until the worker's context is cancelled
func (w *Worker) Start() {
	w.log.Info().
		Int("urls", len(w.urls)).
		Dur("interval", w.interval).
		Msg("Watch worker started")

	for {
		stats := w.RunCycle()
		w.log.Info().
			Int("refreshed", stats.Refreshed).
			Int("failed", stats.Failed).
			Dur("elapsed", stats.Elapsed).
			Msg("Refresh cycle finished")

		select {
		case <-w.ctx.Done():
			w.log.Info().Msg("Watch worker stopped")
			return
		case <-time.After(w.interval):
		}
	}
}

// RunCycle reads every watched URL through the cache and then trims the event streams.
// Only entries older than the cache TTL are scraped again.
func (w *Worker) RunCycle() CycleStats {
	start := time.Now()
	var refreshed, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(maxConcurrentRefreshes)
	for _, url := range w.urls {
		g.Go(func() error {
			if w.ctx.Err() != nil {
				return nil
			}
			if _, err := w.cache.Get(w.ctx, url); err != nil {
				failed.Add(1)
				w.log.Warn().Err(err).Str("url", url).Msg("Refresh failed")
				return nil
			}
			refreshed.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	// Trim all streams after refreshing
	if w.publisher != nil {
		if err := w.publisher.TrimStreams(); err != nil {
			logger.LogError("StreamTrimming", err, "failed to trim streams")
		}
	}

	return CycleStats{
		Refreshed: int(refreshed.Load()),
		Failed:    int(failed.Load()),
		Elapsed:   time.Since(start),
	}
}
