package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fieldline/dispatch/internal/core"
	"github.com/fieldline/dispatch/internal/data"
	"github.com/fieldline/dispatch/internal/domain/optimize"
	"github.com/fieldline/dispatch/internal/observability/metrics"
	"github.com/fieldline/dispatch/internal/observability/statsd"
)

// providerConcurrency bounds parallel distance-matrix calls when filling
// cache misses.
const providerConcurrency = 8

// TravelTimeService layers the two-tier persistent cache in front of the
// distance-matrix provider. Lookups for today use live traffic (REAL_TIME,
// 20 min TTL); future days use hour-of-week predictions (PREDICTIVE, 24 h TTL).
type TravelTimeService struct {
	store    core.TravelTimeStore
	provider core.DistanceMatrixProvider
	cfg      core.ReplanConfig
	clock    data.TimeProvider
	logger   *slog.Logger
	metrics  statsd.Sink
}

// TravelTimeServiceOptions holds the dependencies for NewTravelTimeService.
type TravelTimeServiceOptions struct {
	Store    core.TravelTimeStore
	Provider core.DistanceMatrixProvider
	Config   core.ReplanConfig
	Clock    data.TimeProvider
	Logger   *slog.Logger
	Metrics  statsd.Sink
}

// NewTravelTimeService creates a TravelTimeService.
func NewTravelTimeService(opts TravelTimeServiceOptions) *TravelTimeService {
	if opts.Clock == nil {
		opts.Clock = &data.RealTimeProvider{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &TravelTimeService{
		store:    opts.Store,
		provider: opts.Provider,
		cfg:      opts.Config,
		clock:    opts.Clock,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
}

// BulkLookup resolves travel seconds for every pair in one pass: one bulk
// cache read, parallel provider calls for the misses, one bulk upsert of the
// fresh answers. Self-pairs are 0 and never stored. A pair the provider
// cannot answer gets the penalty value so the optimizer routes around it
// instead of failing the pass.
func (s *TravelTimeService) BulkLookup(
	ctx context.Context,
	pairs []optimize.PairKey,
	mode optimize.TravelMode,
	departure time.Time,
) (map[optimize.PairKey]int64, error) {
	out := make(map[optimize.PairKey]int64, len(pairs))

	var lookup []optimize.PairKey
	seen := make(map[optimize.PairKey]bool, len(pairs))
	for _, pair := range pairs {
		if pair.IsSelfPair() {
			out[pair] = 0
			continue
		}
		if !seen[pair] {
			seen[pair] = true
			lookup = append(lookup, pair)
		}
	}
	if len(lookup) == 0 {
		return out, nil
	}

	query := core.TravelCacheQuery{Pairs: lookup, Mode: mode}
	if mode == optimize.ModePredictive {
		hour, dow := predictiveBucket(departure)
		query.TargetHourUTC = &hour
		query.TargetDayOfWeekUTC = &dow
	}

	cached, err := s.store.BulkGet(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("travel cache bulk get: %w", err)
	}

	var misses []optimize.PairKey
	for _, pair := range lookup {
		if est, ok := cached[pair]; ok {
			out[pair] = est.DurationSeconds
			continue
		}
		misses = append(misses, pair)
	}

	entries, errCount := s.fillMisses(ctx, misses, mode, departure, query, out)

	metrics.EmitTravelCache(s.metrics, metrics.CacheMetric{
		Mode:   string(mode),
		Hits:   len(lookup) - len(misses),
		Misses: len(misses),
		Errors: errCount,
	})

	if len(entries) > 0 {
		if upsertErr := s.store.BulkUpsert(ctx, entries); upsertErr != nil {
			// Cache write failure degrades future hit rates but must not fail
			// the pass; the matrix already has the values.
			s.logger.WarnContext(ctx, "travel cache bulk upsert failed",
				"entries", len(entries), "error", upsertErr)
		}
	}
	return out, nil
}

// fillMisses queries the provider for every miss in parallel and returns the
// cache entries to persist plus the provider error count. Failed pairs are
// written into out with the penalty value.
func (s *TravelTimeService) fillMisses(
	ctx context.Context,
	misses []optimize.PairKey,
	mode optimize.TravelMode,
	departure time.Time,
	query core.TravelCacheQuery,
	out map[optimize.PairKey]int64,
) ([]core.TravelCacheEntry, int) {
	if len(misses) == 0 {
		return nil, 0
	}

	ttl := s.cfg.RealTimeCacheTTL
	if mode == optimize.ModePredictive {
		ttl = s.cfg.PredictiveCacheTTL
	}

	var (
		mu       sync.Mutex
		entries  []core.TravelCacheEntry
		errCount int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(providerConcurrency)
	for _, pair := range misses {
		g.Go(func() error {
			est, err := s.lookupPair(gctx, pair, mode, departure)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errCount++
				out[pair] = s.cfg.TravelPenaltySeconds
				s.logger.WarnContext(gctx, "distance matrix lookup failed, using penalty",
					"origin", pair.Origin, "destination", pair.Destination, "error", err)
				return nil
			}
			out[pair] = est.DurationSeconds
			entries = append(entries, core.TravelCacheEntry{
				Key:                pair,
				Mode:               mode,
				TargetHourUTC:      query.TargetHourUTC,
				TargetDayOfWeekUTC: query.TargetDayOfWeekUTC,
				Estimate:           est,
				ExpiresAt:          s.clock.Now().UTC().Add(ttl),
			})
			return nil
		})
	}
	// Workers recover per-pair errors locally and never return one.
	_ = g.Wait()

	return entries, errCount
}

func (s *TravelTimeService) lookupPair(
	ctx context.Context,
	pair optimize.PairKey,
	mode optimize.TravelMode,
	departure time.Time,
) (core.TravelEstimate, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.MatrixTimeout)
	defer cancel()

	var dep *time.Time
	if mode == optimize.ModePredictive || mode == optimize.ModeRealTime {
		d := departure
		dep = &d
	}
	return s.provider.TravelTime(callCtx, pair.Origin, pair.Destination, dep)
}

// predictiveBucket maps a departure instant to the (hour-of-day, day-of-week)
// UTC bucket predictive cache entries are keyed by.
func predictiveBucket(departure time.Time) (hour, dayOfWeek int) {
	u := departure.UTC()
	return u.Hour(), int(u.Weekday())
}
