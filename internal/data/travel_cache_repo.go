package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fieldline/dispatch/internal/core"
	"github.com/fieldline/dispatch/internal/data/pgxutil"
	"github.com/fieldline/dispatch/internal/domain/model"
	"github.com/fieldline/dispatch/internal/domain/optimize"
	apperrors "github.com/fieldline/dispatch/internal/errors"
)

// unbucketed marks real-time rows in the hour/day columns so the conflict key
// stays simple (NULL would break the unique index).
const unbucketed = -1

const travelCacheSelectQuery = `
	SELECT origin_lat, origin_lng, destination_lat, destination_lng,
	       duration_seconds, distance_meters
	FROM travel_time_cache
	WHERE mode = $1
	  AND target_hour_utc = $2
	  AND target_day_of_week_utc = $3
	  AND expires_at > $4
	  AND origin_lat = ANY($5)
	  AND destination_lat = ANY($6)`

const travelCacheUpsertQuery = `
	INSERT INTO travel_time_cache (
		origin_lat, origin_lng, destination_lat, destination_lng,
		mode, target_hour_utc, target_day_of_week_utc,
		duration_seconds, distance_meters, expires_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
	ON CONFLICT (origin_lat, origin_lng, destination_lat, destination_lng,
	             mode, target_hour_utc, target_day_of_week_utc)
	DO UPDATE SET duration_seconds = EXCLUDED.duration_seconds,
	              distance_meters = EXCLUDED.distance_meters,
	              expires_at = EXCLUDED.expires_at,
	              updated_at = now()`

const travelCachePurgeQuery = `
	DELETE FROM travel_time_cache
	WHERE ctid IN (
		SELECT ctid FROM travel_time_cache
		WHERE expires_at <= $1
		LIMIT $2
	)`

type travelCacheRow struct {
	OriginLat       float64 `db:"origin_lat"`
	OriginLng       float64 `db:"origin_lng"`
	DestinationLat  float64 `db:"destination_lat"`
	DestinationLng  float64 `db:"destination_lng"`
	DurationSeconds int64   `db:"duration_seconds"`
	DistanceMeters  *int64  `db:"distance_meters"`
}

// TravelCacheRepo is the persistent two-tier travel-time cache. Rows are keyed
// by rounded origin/destination coordinates, mode, and (for predictive mode)
// the UTC hour-of-day and day-of-week bucket. Upserts are idempotent on the
// full key so concurrent runs can race safely.
type TravelCacheRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewTravelCacheRepo creates a TravelCacheRepo with the real time provider.
func NewTravelCacheRepo(db *sql.DB) *TravelCacheRepo {
	return &TravelCacheRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewTravelCacheRepoWithTimeProvider creates a TravelCacheRepo with a custom
// time provider (useful for tests).
func NewTravelCacheRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *TravelCacheRepo {
	return &TravelCacheRepo{DB: db, timeProvider: tp}
}

// BulkGet returns all unexpired entries matching the query's pairs in one
// round trip. The SQL filter narrows candidates by latitude set membership;
// the exact pair match happens in memory because a pair is four coordinates.
func (r *TravelCacheRepo) BulkGet(
	ctx context.Context,
	query core.TravelCacheQuery,
) (map[optimize.PairKey]core.TravelEstimate, error) {
	out := make(map[optimize.PairKey]core.TravelEstimate, len(query.Pairs))
	if len(query.Pairs) == 0 {
		return out, nil
	}

	wanted := make(map[optimize.PairKey]bool, len(query.Pairs))
	originLats := make([]float64, 0, len(query.Pairs))
	destLats := make([]float64, 0, len(query.Pairs))
	for _, pair := range query.Pairs {
		key := optimize.NewPairKey(pair.Origin, pair.Destination)
		wanted[key] = true
		originLats = append(originLats, key.Origin.Lat)
		destLats = append(destLats, key.Destination.Lat)
	}

	hour, dow := bucketValues(query.TargetHourUTC, query.TargetDayOfWeekUTC)
	now := r.timeProvider.Now().UTC()

	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, travelCacheSelectQuery,
			string(query.Mode), hour, dow, now, originLats, destLats)
		if err != nil {
			return err
		}
		defer rows.Close()
		cacheRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[travelCacheRow])
		if err != nil {
			return err
		}
		for _, row := range cacheRows {
			key := optimize.NewPairKey(
				model.Coordinates{Lat: row.OriginLat, Lng: row.OriginLng},
				model.Coordinates{Lat: row.DestinationLat, Lng: row.DestinationLng},
			)
			if wanted[key] {
				out[key] = core.TravelEstimate{
					DurationSeconds: row.DurationSeconds,
					DistanceMeters:  row.DistanceMeters,
				}
			}
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("travel cache bulk get: %w", err)
	}
	return out, nil
}

// BulkUpsert inserts or refreshes the given entries in one batch.
func (r *TravelCacheRepo) BulkUpsert(ctx context.Context, entries []core.TravelCacheEntry) error {
	if len(entries) == 0 {
		return nil
	}

	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		batch := &pgx.Batch{}
		for _, entry := range entries {
			key := optimize.NewPairKey(entry.Key.Origin, entry.Key.Destination)
			hour, dow := bucketValues(entry.TargetHourUTC, entry.TargetDayOfWeekUTC)
			batch.Queue(travelCacheUpsertQuery,
				key.Origin.Lat, key.Origin.Lng,
				key.Destination.Lat, key.Destination.Lng,
				string(entry.Mode), hour, dow,
				entry.Estimate.DurationSeconds, entry.Estimate.DistanceMeters,
				entry.ExpiresAt.UTC(),
			)
		}
		results := conn.SendBatch(ctx, batch)
		defer results.Close()
		for range entries {
			if _, err := results.Exec(); err != nil {
				return apperrors.MapDBError(err)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("travel cache bulk upsert (%d entries): %w", len(entries), err)
	}
	return nil
}

// PurgeExpired deletes up to batchSize expired cache rows and reports how many
// went. Callers loop until zero to drain a large backlog without one huge
// delete holding locks.
func (r *TravelCacheRepo) PurgeExpired(ctx context.Context, batchSize int) (int64, error) {
	var purged int64
	now := r.timeProvider.Now().UTC()
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, travelCachePurgeQuery, now, batchSize)
		if err != nil {
			return err
		}
		purged = tag.RowsAffected()
		return nil
	}); err != nil {
		return 0, fmt.Errorf("purge expired travel cache: %w", err)
	}
	return purged, nil
}

func bucketValues(hour, dow *int) (int, int) {
	h, d := unbucketed, unbucketed
	if hour != nil {
		h = *hour
	}
	if dow != nil {
		d = *dow
	}
	return h, d
}
