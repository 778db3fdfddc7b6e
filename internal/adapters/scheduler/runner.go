// Package scheduler provides the interval-based replan trigger: a tick loop
// that starts a run every interval so the plan stays fresh without anyone
// calling the HTTP trigger.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	obserrors "github.com/fieldline/dispatch/internal/observability/errors"
	"github.com/fieldline/dispatch/internal/observability/metrics"
	"github.com/fieldline/dispatch/internal/observability/statsd"
	"github.com/fieldline/dispatch/internal/service"
)

const defaultInterval = 15 * time.Minute

// ReplanTrigger starts one replan run. service.ErrRunInProgress means another
// run (local or on another replica) already holds the slot.
type ReplanTrigger interface {
	Run(ctx context.Context) (*service.RunSummary, error)
}

// Runner ticks at a fixed interval and triggers a replan run on each tick.
type Runner struct {
	replan   ReplanTrigger
	interval time.Duration
	logger   *slog.Logger
	metrics  statsd.Sink
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Replan   ReplanTrigger
	Interval time.Duration
	Logger   *slog.Logger
	Metrics  statsd.Sink
}

// NewRunner creates a new scheduled-replan runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Replan == nil {
		return nil, errors.New("replan trigger is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Runner{
		replan:   opts.Replan,
		interval: opts.Interval,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}, nil
}

// Run starts the tick loop and runs until the context is cancelled. A tick
// that loses the run slot is a noop, not an error; the loop keeps going after
// failed runs.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting scheduled replan runner", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "scheduled replan runner stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			start := time.Now()
			summary, err := r.replan.Run(ctx)
			elapsed := time.Since(start)

			r.emitTickMetrics(elapsed, err)

			switch {
			case errors.Is(err, service.ErrRunInProgress):
				r.logger.DebugContext(ctx, "scheduled replan skipped, run in progress")
			case err != nil:
				r.logger.ErrorContext(ctx, "scheduled replan failed", "error", err)
			default:
				r.logger.InfoContext(ctx, "scheduled replan complete",
					"run_id", summary.RunID,
					"jobs_scheduled", summary.JobsScheduled,
					"jobs_pending_review", summary.JobsPendingReview)
			}
		}
	}
}

func (r *Runner) emitTickMetrics(elapsed time.Duration, err error) {
	if r.metrics == nil {
		return
	}

	result := metrics.ResultSuccess
	switch {
	case errors.Is(err, service.ErrRunInProgress):
		result = metrics.ResultNoop
	case err != nil:
		result = metrics.ResultError
	}

	tags := map[string]string{"result": result}
	if err != nil && result == metrics.ResultError {
		if class := obserrors.Classify(err); class != "" {
			tags["error_class"] = class
		}
	}

	r.metrics.Count("replan.scheduled_tick", 1, tags)
	if elapsed > 0 && result != metrics.ResultNoop {
		r.metrics.Timing("replan.scheduled_tick_duration", elapsed, metrics.CloneTags(tags))
	}
}
