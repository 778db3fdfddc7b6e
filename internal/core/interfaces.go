// Package core defines the consumer-side interfaces the replanner depends on:
// the data-access read/write surface and the external service clients.
// Concrete implementations live in internal/data and internal/adapters.
package core

import (
	"context"
	"time"

	"github.com/fieldline/dispatch/internal/domain/model"
	"github.com/fieldline/dispatch/internal/domain/optimize"
)

// TechnicianRepository reads technicians with their vans, default hours,
// exceptions, and home locations.
type TechnicianRepository interface {
	// ActiveTechnicians returns all active technicians with joined van,
	// default-hours, exception, and home-address data.
	ActiveTechnicians(ctx context.Context) ([]model.Technician, error)
}

// JobRepository reads and writes service jobs.
type JobRepository interface {
	// RelevantJobs returns jobs whose status is in the relevant set (or NULL),
	// joined with address, service, and order data.
	RelevantJobs(ctx context.Context) ([]model.Job, error)
	// JobsByStatus returns jobs in any of the given statuses, with joins.
	JobsByStatus(ctx context.Context, statuses ...model.JobStatus) ([]model.Job, error)
	// UpdateJobs applies the final batched write. Updates carrying identical
	// data are grouped into single statements. A failed group aborts the write.
	UpdateJobs(ctx context.Context, updates []model.JobUpdate) error
}

// EquipmentRepository resolves equipment inventories and requirements.
type EquipmentRepository interface {
	// EquipmentForVans returns the inventory rows for each van id.
	EquipmentForVans(ctx context.Context, vanIDs []int64) (map[int64][]model.VanEquipment, error)
	// RequiredModelsForJob resolves the equipment model strings the job's
	// vehicle/service combination requires, with generic-category fallback.
	RequiredModelsForJob(ctx context.Context, job model.Job) ([]string, error)
	// YMMIDForOrder resolves the order's vehicle to a ymm_id, nil when the
	// vehicle is missing from the reference table.
	YMMIDForOrder(ctx context.Context, orderID int64) (*int64, error)
}

// TravelEstimate is one provider or cache answer for an origin-destination pair.
type TravelEstimate struct {
	DurationSeconds int64
	DistanceMeters  *int64
}

// TravelCacheQuery selects live cache entries for a set of pairs in one mode.
// For predictive mode the hour/day bucket narrows the match.
type TravelCacheQuery struct {
	Pairs              []optimize.PairKey
	Mode               optimize.TravelMode
	TargetHourUTC      *int
	TargetDayOfWeekUTC *int
}

// TravelCacheEntry is one row to upsert into the travel-time cache.
type TravelCacheEntry struct {
	Key                optimize.PairKey
	Mode               optimize.TravelMode
	TargetHourUTC      *int
	TargetDayOfWeekUTC *int
	Estimate           TravelEstimate
	ExpiresAt          time.Time
}

// TravelTimeStore is the persistent two-tier travel-time cache. Upserts are
// idempotent on the full key so concurrent runs can race safely.
type TravelTimeStore interface {
	// BulkGet returns all unexpired entries matching the query's pairs and
	// mode/bucket in one round trip.
	BulkGet(ctx context.Context, query TravelCacheQuery) (map[optimize.PairKey]TravelEstimate, error)
	// BulkUpsert inserts or refreshes the given entries.
	BulkUpsert(ctx context.Context, entries []TravelCacheEntry) error
}

// DistanceMatrixProvider computes a single origin-destination travel time.
// A non-nil departure requests traffic-aware prediction for that instant.
type DistanceMatrixProvider interface {
	TravelTime(ctx context.Context, origin, destination model.Coordinates, departure *time.Time) (TravelEstimate, error)
}

// LocationProvider fetches real-time device positions keyed by device id.
type LocationProvider interface {
	CurrentLocations(ctx context.Context) (map[string]model.DeviceLocation, error)
}

// OptimizerClient calls the remote route optimizer.
type OptimizerClient interface {
	Solve(ctx context.Context, payload *optimize.Payload) (*optimize.Response, error)
}

// RunGuard serializes replan runs across replicas. TryAcquire returns false
// when another run holds the lease.
type RunGuard interface {
	TryAcquire(ctx context.Context, runID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, runID string) error
}
