package config

import (
	"fmt"
	"time"

	"github.com/fieldline/dispatch/internal/core"
	"github.com/fieldline/dispatch/internal/domain/model"
)

// ReplanConfig contains the planner tunables loaded from env.
type ReplanConfig struct {
	// MaxOverflowAttempts is how many future days the planner tries after today.
	MaxOverflowAttempts int `env:"MAX_OVERFLOW_ATTEMPTS" envDefault:"4"`

	// BusinessTimezone is the IANA zone technician working hours are stored in.
	BusinessTimezone string `env:"BUSINESS_TIMEZONE" envDefault:"America/Edmonton"`

	// DepotLat and DepotLng place the dispatch depot, location index 0 of
	// every optimizer payload.
	DepotLat float64 `env:"DEPOT_LAT" envDefault:"51.0447"`
	DepotLng float64 `env:"DEPOT_LNG" envDefault:"-114.0719"`

	// PredictiveDepartureHourUTC is the nominal departure hour used for
	// predictive travel-time lookups on future days.
	PredictiveDepartureHourUTC int `env:"PREDICTIVE_DEPARTURE_HOUR_UTC" envDefault:"15"`

	// Travel-time cache TTLs per lookup mode.
	RealTimeCacheTTL   time.Duration `env:"TRAVEL_CACHE_REALTIME_TTL"   envDefault:"20m"`
	PredictiveCacheTTL time.Duration `env:"TRAVEL_CACHE_PREDICTIVE_TTL" envDefault:"24h"`

	// TravelPenaltySeconds fills matrix cells the routing provider could
	// not answer.
	TravelPenaltySeconds int64 `env:"TRAVEL_PENALTY_SECONDS" envDefault:"999999"`

	// RunLeaseTTL bounds the cross-replica run guard lease.
	RunLeaseTTL time.Duration `env:"RUN_LEASE_TTL" envDefault:"15m"`

	// Per-call deadlines on external dependencies.
	OptimizerTimeout time.Duration `env:"OPTIMIZER_TIMEOUT" envDefault:"3m"`
	MatrixTimeout    time.Duration `env:"MATRIX_TIMEOUT"    envDefault:"10s"`
	LocationTimeout  time.Duration `env:"LOCATION_TIMEOUT"  envDefault:"15s"`

	// LocationCacheTTL bounds the shared device location snapshot in Redis.
	LocationCacheTTL time.Duration `env:"LOCATION_CACHE_TTL" envDefault:"60s"`

	// ScheduledInterval enables the interval-based replan trigger when > 0.
	ScheduledInterval time.Duration `env:"REPLAN_INTERVAL" envDefault:"0"`

	// Travel-cache janitor loop. Interval <= 0 disables it.
	CacheJanitorInterval  time.Duration `env:"TRAVEL_CACHE_JANITOR_INTERVAL" envDefault:"1h"`
	CacheJanitorBatchSize int           `env:"TRAVEL_CACHE_JANITOR_BATCH_SIZE" envDefault:"1000"`
}

// Sanitize applies guardrails to planner values loaded from env.
func (c *ReplanConfig) Sanitize() {
	if c.MaxOverflowAttempts <= 0 {
		c.MaxOverflowAttempts = 4
	}
	if c.PredictiveDepartureHourUTC < 0 || c.PredictiveDepartureHourUTC > 23 {
		c.PredictiveDepartureHourUTC = 15
	}
	if c.RealTimeCacheTTL <= 0 {
		c.RealTimeCacheTTL = 20 * time.Minute
	}
	if c.PredictiveCacheTTL <= 0 {
		c.PredictiveCacheTTL = 24 * time.Hour
	}
	if c.TravelPenaltySeconds <= 0 {
		c.TravelPenaltySeconds = 999999
	}
	if c.RunLeaseTTL <= 0 {
		c.RunLeaseTTL = 15 * time.Minute
	}
	if c.OptimizerTimeout <= 0 {
		c.OptimizerTimeout = 3 * time.Minute
	}
	if c.MatrixTimeout <= 0 {
		c.MatrixTimeout = 10 * time.Second
	}
	if c.LocationTimeout <= 0 {
		c.LocationTimeout = 15 * time.Second
	}
	if c.LocationCacheTTL <= 0 {
		c.LocationCacheTTL = 60 * time.Second
	}
	if c.ScheduledInterval < 0 {
		c.ScheduledInterval = 0
	}
	if c.CacheJanitorBatchSize <= 0 {
		c.CacheJanitorBatchSize = 1000
	}
}

// ToCore resolves the timezone and returns the immutable planner settings
// passed down to the services.
func (c ReplanConfig) ToCore() (core.ReplanConfig, error) {
	loc, err := time.LoadLocation(c.BusinessTimezone)
	if err != nil {
		return core.ReplanConfig{}, fmt.Errorf("load business timezone %q: %w", c.BusinessTimezone, err)
	}

	cfg := core.ReplanConfig{
		MaxOverflowAttempts:        c.MaxOverflowAttempts,
		BusinessLocation:           loc,
		Depot:                      model.Coordinates{Lat: c.DepotLat, Lng: c.DepotLng},
		PredictiveDepartureHourUTC: c.PredictiveDepartureHourUTC,
		RealTimeCacheTTL:           c.RealTimeCacheTTL,
		PredictiveCacheTTL:         c.PredictiveCacheTTL,
		TravelPenaltySeconds:       c.TravelPenaltySeconds,
		RunLeaseTTL:                c.RunLeaseTTL,
		OptimizerTimeout:           c.OptimizerTimeout,
		MatrixTimeout:              c.MatrixTimeout,
		LocationTimeout:            c.LocationTimeout,
	}
	cfg.Sanitize()
	return cfg, nil
}
