// Package janitor provides the background cleanup loop for the travel-time
// cache. Expired rows are invisible to reads but still take space; the janitor
// deletes them in batches on a slow interval.
package janitor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fieldline/dispatch/internal/observability/statsd"
)

const (
	defaultInterval  = time.Hour
	defaultBatchSize = 1000
)

// ExpiredPurger deletes up to batchSize expired rows and reports how many went.
type ExpiredPurger interface {
	PurgeExpired(ctx context.Context, batchSize int) (int64, error)
}

// Runner drains expired travel-cache rows on a fixed interval.
type Runner struct {
	store     ExpiredPurger
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	metrics   statsd.Sink
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Store     ExpiredPurger
	Interval  time.Duration
	BatchSize int
	Logger    *slog.Logger
	Metrics   statsd.Sink
}

// NewRunner creates a new cache janitor with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Store == nil {
		return nil, errors.New("travel cache store is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Runner{
		store:     opts.Store,
		interval:  opts.Interval,
		batchSize: opts.BatchSize,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}, nil
}

// Run starts the cleanup loop and runs until the context is cancelled. Errors
// are logged and the loop keeps going; a missed sweep just means the next one
// has more to do.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting travel cache janitor",
		"interval", r.interval, "batch_size", r.batchSize)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "travel cache janitor stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			if err := r.sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
				r.logger.ErrorContext(ctx, "travel cache sweep failed", "error", err)
			}
		}
	}
}

// sweep drains expired rows batch by batch until the table is clean.
func (r *Runner) sweep(ctx context.Context) error {
	var total int64
	for {
		purged, err := r.store.PurgeExpired(ctx, r.batchSize)
		if err != nil {
			return err
		}
		total += purged
		if purged < int64(r.batchSize) {
			break
		}
	}

	if r.metrics != nil && total > 0 {
		r.metrics.Count("travel_cache.purged", total, nil)
	}
	if total > 0 {
		r.logger.InfoContext(ctx, "travel cache sweep complete", "purged", total)
	}
	return nil
}
