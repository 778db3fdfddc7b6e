package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/fieldline/dispatch/config"
	"github.com/fieldline/dispatch/internal/adapters/janitor"
	"github.com/fieldline/dispatch/internal/adapters/scheduler"
	"github.com/fieldline/dispatch/internal/data"
)

// BackgroundConfig groups the dependencies for the optional background loops.
type BackgroundConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	DB       *sql.DB
	Logger   *slog.Logger
}

// StartBackgroundRunners launches the interval replan trigger and the travel
// cache janitor when their intervals are configured. The loops stop when the
// context is cancelled.
func StartBackgroundRunners(ctx context.Context, cfg *BackgroundConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := sinkOrNil(cfg.Services.Observability.MetricsSink)

	if interval := cfg.Config.Replan.ScheduledInterval; interval > 0 {
		runner, err := scheduler.NewRunner(scheduler.RunnerOptions{
			Replan:   cfg.Services.Replan,
			Interval: interval,
			Logger:   logger,
			Metrics:  metrics,
		})
		if err != nil {
			return fmt.Errorf("build scheduled replan runner: %w", err)
		}
		go func() {
			if err := runner.Run(ctx); err != nil {
				logger.ErrorContext(ctx, "scheduled replan runner exited", "error", err)
			}
		}()
	}

	if interval := cfg.Config.Replan.CacheJanitorInterval; interval > 0 {
		runner, err := janitor.NewRunner(janitor.RunnerOptions{
			Store:     data.NewTravelCacheRepo(cfg.DB),
			Interval:  interval,
			BatchSize: cfg.Config.Replan.CacheJanitorBatchSize,
			Logger:    logger,
			Metrics:   metrics,
		})
		if err != nil {
			return fmt.Errorf("build travel cache janitor: %w", err)
		}
		go func() {
			if err := runner.Run(ctx); err != nil {
				logger.ErrorContext(ctx, "travel cache janitor exited", "error", err)
			}
		}()
	}

	return nil
}
