// Package data implements the Postgres read/write repositories behind the
// core interfaces, using pgx through the database/sql stdlib bridge.
package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fieldline/dispatch/internal/data/pgxutil"
	"github.com/fieldline/dispatch/internal/domain/model"
)

const technicianListQuery = `
	SELECT t.id, t.user_id, t.name, t.assigned_van_id,
	       v.name AS van_name, v.device_id, v.lat AS van_lat, v.lng AS van_lng,
	       a.lat AS home_lat, a.lng AS home_lng
	FROM technicians t
	LEFT JOIN vans v ON v.id = t.assigned_van_id
	LEFT JOIN addresses a ON a.id = t.home_address_id
	WHERE t.active
	ORDER BY t.id`

const technicianHoursQuery = `
	SELECT technician_id, day_of_week, start_time, end_time, is_available
	FROM technician_default_hours
	WHERE technician_id = ANY($1)
	ORDER BY technician_id, day_of_week, start_time`

const technicianExceptionsQuery = `
	SELECT technician_id, to_char(date, 'YYYY-MM-DD') AS date, exception_type,
	       is_available, start_time, end_time
	FROM technician_availability_exceptions
	WHERE technician_id = ANY($1)
	ORDER BY technician_id, date`

type technicianRow struct {
	ID            int64    `db:"id"`
	UserID        string   `db:"user_id"`
	Name          string   `db:"name"`
	AssignedVanID *int64   `db:"assigned_van_id"`
	VanName       *string  `db:"van_name"`
	DeviceID      *string  `db:"device_id"`
	VanLat        *float64 `db:"van_lat"`
	VanLng        *float64 `db:"van_lng"`
	HomeLat       *float64 `db:"home_lat"`
	HomeLng       *float64 `db:"home_lng"`
}

// TechnicianRepo reads technicians with their vans, hours, and exceptions.
type TechnicianRepo struct {
	DB *sql.DB
}

// NewTechnicianRepo creates a TechnicianRepo.
func NewTechnicianRepo(db *sql.DB) *TechnicianRepo {
	return &TechnicianRepo{DB: db}
}

// ActiveTechnicians returns every active technician with joined van data, home
// coordinates, default weekly hours, and availability exceptions. The stored
// van position seeds CurrentLocation; the orchestrator overlays live device
// positions on top when available.
func (r *TechnicianRepo) ActiveTechnicians(ctx context.Context) ([]model.Technician, error) {
	var technicians []model.Technician
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, technicianListQuery)
		if err != nil {
			return err
		}
		defer rows.Close()
		techRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[technicianRow])
		if err != nil {
			return err
		}
		if len(techRows) == 0 {
			return nil
		}

		ids := make([]int64, len(techRows))
		byID := make(map[int64]*model.Technician, len(techRows))
		technicians = make([]model.Technician, len(techRows))
		for i, row := range techRows {
			technicians[i] = assembleTechnician(row)
			ids[i] = row.ID
			byID[row.ID] = &technicians[i]
		}

		hourRows, err := conn.Query(ctx, technicianHoursQuery, ids)
		if err != nil {
			return err
		}
		defer hourRows.Close()
		hours, err := pgx.CollectRows(hourRows, pgx.RowToStructByName[model.DefaultHours])
		if err != nil {
			return err
		}
		for _, h := range hours {
			if tech, ok := byID[h.TechnicianID]; ok {
				tech.DefaultHours = append(tech.DefaultHours, h)
			}
		}

		excRows, err := conn.Query(ctx, technicianExceptionsQuery, ids)
		if err != nil {
			return err
		}
		defer excRows.Close()
		exceptions, err := pgx.CollectRows(excRows, pgx.RowToStructByName[model.AvailabilityException])
		if err != nil {
			return err
		}
		for _, exc := range exceptions {
			if tech, ok := byID[exc.TechnicianID]; ok {
				tech.Exceptions = append(tech.Exceptions, exc)
			}
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("fetch active technicians: %w", err)
	}
	return technicians, nil
}

func assembleTechnician(row technicianRow) model.Technician {
	tech := model.Technician{
		ID:            row.ID,
		UserID:        row.UserID,
		Name:          row.Name,
		AssignedVanID: row.AssignedVanID,
	}
	if row.AssignedVanID != nil {
		van := &model.Van{ID: *row.AssignedVanID, DeviceID: row.DeviceID, Lat: row.VanLat, Lng: row.VanLng}
		if row.VanName != nil {
			van.Name = *row.VanName
		}
		tech.Van = van
		if row.VanLat != nil && row.VanLng != nil {
			tech.CurrentLocation = &model.Coordinates{Lat: *row.VanLat, Lng: *row.VanLng}
		}
	}
	if row.HomeLat != nil && row.HomeLng != nil {
		tech.HomeLocation = &model.Coordinates{Lat: *row.HomeLat, Lng: *row.HomeLng}
	}
	return tech
}
