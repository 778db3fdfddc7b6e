package core

import (
	"time"

	"github.com/fieldline/dispatch/internal/domain/model"
)

// ReplanConfig carries the planner tunables, captured once at init and passed
// down immutably.
type ReplanConfig struct {
	// MaxOverflowAttempts is how many future days the planner tries after today.
	MaxOverflowAttempts int

	// BusinessLocation is the timezone technician hours are stored in.
	BusinessLocation *time.Location

	// Depot is location index 0 of every optimizer payload.
	Depot model.Coordinates

	// PredictiveDepartureHourUTC is the nominal departure hour used for
	// predictive travel-time lookups on future days.
	PredictiveDepartureHourUTC int

	// RealTimeCacheTTL and PredictiveCacheTTL bound travel-time cache entries.
	RealTimeCacheTTL   time.Duration
	PredictiveCacheTTL time.Duration

	// TravelPenaltySeconds fills matrix cells the provider could not answer,
	// steering the optimizer away without failing the pass.
	TravelPenaltySeconds int64

	// RunLeaseTTL bounds the cross-replica run guard lease.
	RunLeaseTTL time.Duration

	// OptimizerTimeout, MatrixTimeout, and LocationTimeout cap how long a
	// single solve, matrix, or device-location call may run.
	OptimizerTimeout time.Duration
	MatrixTimeout    time.Duration
	LocationTimeout  time.Duration
}

// DefaultReplanConfig returns the shipped planner settings.
func DefaultReplanConfig() ReplanConfig {
	loc, err := time.LoadLocation("America/Edmonton")
	if err != nil {
		loc = time.UTC
	}
	return ReplanConfig{
		MaxOverflowAttempts:        4,
		BusinessLocation:           loc,
		Depot:                      model.Coordinates{Lat: 51.0447, Lng: -114.0719},
		PredictiveDepartureHourUTC: 15,
		RealTimeCacheTTL:           20 * time.Minute,
		PredictiveCacheTTL:         24 * time.Hour,
		TravelPenaltySeconds:       999999,
		RunLeaseTTL:                15 * time.Minute,
		OptimizerTimeout:           3 * time.Minute,
		MatrixTimeout:              10 * time.Second,
		LocationTimeout:            15 * time.Second,
	}
}

// Sanitize applies guardrails to values loaded from env.
func (c *ReplanConfig) Sanitize() {
	def := DefaultReplanConfig()
	if c.MaxOverflowAttempts <= 0 {
		c.MaxOverflowAttempts = def.MaxOverflowAttempts
	}
	if c.BusinessLocation == nil {
		c.BusinessLocation = def.BusinessLocation
	}
	if c.PredictiveDepartureHourUTC < 0 || c.PredictiveDepartureHourUTC > 23 {
		c.PredictiveDepartureHourUTC = def.PredictiveDepartureHourUTC
	}
	if c.RealTimeCacheTTL <= 0 {
		c.RealTimeCacheTTL = def.RealTimeCacheTTL
	}
	if c.PredictiveCacheTTL <= 0 {
		c.PredictiveCacheTTL = def.PredictiveCacheTTL
	}
	if c.TravelPenaltySeconds <= 0 {
		c.TravelPenaltySeconds = def.TravelPenaltySeconds
	}
	if c.RunLeaseTTL <= 0 {
		c.RunLeaseTTL = def.RunLeaseTTL
	}
	if c.OptimizerTimeout <= 0 {
		c.OptimizerTimeout = def.OptimizerTimeout
	}
	if c.MatrixTimeout <= 0 {
		c.MatrixTimeout = def.MatrixTimeout
	}
	if c.LocationTimeout <= 0 {
		c.LocationTimeout = def.LocationTimeout
	}
}
