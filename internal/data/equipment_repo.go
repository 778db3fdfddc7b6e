package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fieldline/dispatch/internal/data/pgxutil"
	"github.com/fieldline/dispatch/internal/domain/model"
)

const vanEquipmentQuery = `
	SELECT ve.van_id, ve.equipment_id, e.model
	FROM van_equipment ve
	JOIN equipment e ON e.id = ve.equipment_id
	WHERE ve.van_id = ANY($1)
	ORDER BY ve.van_id, e.model`

const ymmLookupQuery = `
	SELECT y.id
	FROM ymm_references y
	JOIN customer_vehicles cv ON cv.id = (SELECT vehicle_id FROM orders WHERE id = $1)
	WHERE y.year = cv.year
	  AND lower(y.make) = lower(cv.make)
	  AND lower(y.model) = lower(cv.model)
	LIMIT 1`

const requiredModelsQuery = `
	SELECT e.model
	FROM equipment_requirements er
	JOIN equipment e ON e.id = er.equipment_id
	WHERE er.ymm_id = $1 AND er.service_id = $2
	ORDER BY e.model`

const genericFallbackQuery = `
	SELECT model FROM equipment WHERE model = $1 LIMIT 1`

// EquipmentRepo resolves van inventories and per-job equipment requirements.
type EquipmentRepo struct {
	DB *sql.DB
}

// NewEquipmentRepo creates an EquipmentRepo.
func NewEquipmentRepo(db *sql.DB) *EquipmentRepo {
	return &EquipmentRepo{DB: db}
}

// EquipmentForVans returns the inventory rows for each van id in one query.
func (r *EquipmentRepo) EquipmentForVans(ctx context.Context, vanIDs []int64) (map[int64][]model.VanEquipment, error) {
	out := make(map[int64][]model.VanEquipment, len(vanIDs))
	if len(vanIDs) == 0 {
		return out, nil
	}

	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, vanEquipmentQuery, vanIDs)
		if err != nil {
			return err
		}
		defer rows.Close()
		items, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.VanEquipment])
		if err != nil {
			return err
		}
		for _, item := range items {
			out[item.VanID] = append(out[item.VanID], item)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("fetch van equipment: %w", err)
	}
	return out, nil
}

// RequiredModelsForJob resolves the equipment model strings the job's
// vehicle/service combination requires. A job with no service or no resolvable
// vehicle requires nothing. When the vehicle/service pair has no explicit
// requirement rows, an equipment model named exactly after the service
// category is required if it exists (the generic fallback); otherwise nothing.
func (r *EquipmentRepo) RequiredModelsForJob(ctx context.Context, job model.Job) ([]string, error) {
	if job.ServiceID == nil || job.Service == nil {
		return nil, nil
	}

	ymmID, err := r.YMMIDForOrder(ctx, job.OrderID)
	if err != nil {
		return nil, err
	}
	if ymmID == nil {
		return r.genericFallback(ctx, job.Service.Category)
	}

	var models []string
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, requiredModelsQuery, *ymmID, *job.ServiceID)
		if err != nil {
			return err
		}
		defer rows.Close()
		models, err = pgx.CollectRows(rows, pgx.RowTo[string])
		return err
	}); err != nil {
		return nil, fmt.Errorf("fetch required models for job %d: %w", job.ID, err)
	}

	if len(models) == 0 {
		return r.genericFallback(ctx, job.Service.Category)
	}
	return models, nil
}

// YMMIDForOrder resolves the order's vehicle to a ymm_id with a
// case-insensitive make/model match. Nil when the order has no vehicle or the
// vehicle is missing from the reference table.
func (r *EquipmentRepo) YMMIDForOrder(ctx context.Context, orderID int64) (*int64, error) {
	var ymmID *int64
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var id int64
		err := conn.QueryRow(ctx, ymmLookupQuery, orderID).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		ymmID = &id
		return nil
	}); err != nil {
		return nil, fmt.Errorf("resolve ymm for order %d: %w", orderID, err)
	}
	return ymmID, nil
}

func (r *EquipmentRepo) genericFallback(ctx context.Context, category model.ServiceCategory) ([]string, error) {
	if category == "" {
		return nil, nil
	}

	var models []string
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var m string
		err := conn.QueryRow(ctx, genericFallbackQuery, string(category)).Scan(&m)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		models = []string{m}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("generic equipment fallback for %q: %w", category, err)
	}
	return models, nil
}
