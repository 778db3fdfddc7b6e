package data

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fieldline/dispatch/internal/data/pgxutil"
	"github.com/fieldline/dispatch/internal/domain/model"
	apperrors "github.com/fieldline/dispatch/internal/errors"
)

const jobSelectColumns = `
	SELECT j.id, j.order_id, j.service_id, j.address_id, j.priority, j.status,
	       j.job_duration, j.assigned_technician, j.estimated_sched,
	       j.fixed_schedule_time, j.fixed_assignment,
	       a.street_address, a.lat AS address_lat, a.lng AS address_lng,
	       o.customer_name, o.earliest_available_time, o.vehicle_id,
	       cv.year AS vehicle_year, cv.make AS vehicle_make, cv.model AS vehicle_model,
	       s.name AS service_name, s.category AS service_category
	FROM jobs j
	JOIN addresses a ON a.id = j.address_id
	JOIN orders o ON o.id = j.order_id
	LEFT JOIN customer_vehicles cv ON cv.id = o.vehicle_id
	LEFT JOIN services s ON s.id = j.service_id`

const relevantJobsQuery = jobSelectColumns + `
	WHERE j.status = ANY($1) OR j.status IS NULL
	ORDER BY j.id`

const jobsByStatusQuery = jobSelectColumns + `
	WHERE j.status = ANY($1)
	ORDER BY j.id`

const jobBatchUpdateQuery = `
	UPDATE jobs
	SET status = $1, assigned_technician = $2, estimated_sched = $3, updated_at = now()
	WHERE id = ANY($4)`

type jobRow struct {
	ID                 int64      `db:"id"`
	OrderID            int64      `db:"order_id"`
	ServiceID          *int64     `db:"service_id"`
	AddressID          int64      `db:"address_id"`
	Priority           int        `db:"priority"`
	Status             *string    `db:"status"`
	JobDuration        int        `db:"job_duration"`
	AssignedTechnician *int64     `db:"assigned_technician"`
	EstimatedSched     *time.Time `db:"estimated_sched"`
	FixedScheduleTime  *time.Time `db:"fixed_schedule_time"`
	FixedAssignment    bool       `db:"fixed_assignment"`

	StreetAddress         string     `db:"street_address"`
	AddressLat            *float64   `db:"address_lat"`
	AddressLng            *float64   `db:"address_lng"`
	CustomerName          string     `db:"customer_name"`
	EarliestAvailableTime *time.Time `db:"earliest_available_time"`
	VehicleID             *int64     `db:"vehicle_id"`
	VehicleYear           *int       `db:"vehicle_year"`
	VehicleMake           *string    `db:"vehicle_make"`
	VehicleModel          *string    `db:"vehicle_model"`
	ServiceName           *string    `db:"service_name"`
	ServiceCategory       *string    `db:"service_category"`
}

// JobRepo reads and batch-writes service jobs.
type JobRepo struct {
	DB *sql.DB
}

// NewJobRepo creates a JobRepo.
func NewJobRepo(db *sql.DB) *JobRepo {
	return &JobRepo{DB: db}
}

// RelevantJobs returns the jobs a run plans over: status in the relevant set
// or NULL, with address, order, vehicle, and service joins.
func (r *JobRepo) RelevantJobs(ctx context.Context) ([]model.Job, error) {
	statuses := make([]string, 0, len(model.RelevantJobStatuses()))
	for _, s := range model.RelevantJobStatuses() {
		statuses = append(statuses, string(s))
	}
	jobs, err := r.queryJobs(ctx, relevantJobsQuery, statuses)
	if err != nil {
		return nil, fmt.Errorf("fetch relevant jobs: %w", err)
	}
	return jobs, nil
}

// JobsByStatus returns jobs in any of the given statuses, with joins.
func (r *JobRepo) JobsByStatus(ctx context.Context, statuses ...model.JobStatus) ([]model.Job, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	jobs, err := r.queryJobs(ctx, jobsByStatusQuery, values)
	if err != nil {
		return nil, fmt.Errorf("fetch jobs by status %v: %w", statuses, err)
	}
	return jobs, nil
}

func (r *JobRepo) queryJobs(ctx context.Context, query string, statuses []string) ([]model.Job, error) {
	var jobs []model.Job
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, statuses)
		if err != nil {
			return err
		}
		defer rows.Close()
		jobRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[jobRow])
		if err != nil {
			return err
		}
		jobs = make([]model.Job, len(jobRows))
		for i, row := range jobRows {
			jobs[i] = assembleJob(row)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return jobs, nil
}

// UpdateJobs applies the run's final write. Updates carrying identical data
// are grouped into one statement per payload, and all groups run inside a
// single transaction so a failed group aborts the whole write.
func (r *JobRepo) UpdateJobs(ctx context.Context, updates []model.JobUpdate) error {
	if len(updates) == 0 {
		return ErrNoUpdates
	}

	type group struct {
		data model.JobUpdateData
		ids  []int64
	}
	groups := make(map[string]*group)
	var keys []string
	for _, upd := range updates {
		key := upd.Data.GroupKey()
		g, ok := groups[key]
		if !ok {
			g = &group{data: upd.Data}
			groups[key] = g
			keys = append(keys, key)
		}
		g.ids = append(g.ids, upd.JobID)
	}
	sort.Strings(keys)

	if err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{Fn: func(tx pgx.Tx) error {
		for _, key := range keys {
			g := groups[key]
			sort.Slice(g.ids, func(i, j int) bool { return g.ids[i] < g.ids[j] })
			tag, err := tx.Exec(ctx, jobBatchUpdateQuery,
				string(g.data.Status), g.data.AssignedTechnician, g.data.EstimatedSched, g.ids)
			if err != nil {
				return fmt.Errorf("update jobs %v: %w", g.ids, apperrors.MapDBError(err))
			}
			if tag.RowsAffected() != int64(len(g.ids)) {
				return fmt.Errorf("update jobs %v: %d of %d rows updated",
					g.ids, tag.RowsAffected(), len(g.ids))
			}
		}
		return nil
	}}); err != nil {
		return fmt.Errorf("batched job write: %w", err)
	}
	return nil
}

func assembleJob(row jobRow) model.Job {
	job := model.Job{
		ID:                 row.ID,
		OrderID:            row.OrderID,
		ServiceID:          row.ServiceID,
		AddressID:          row.AddressID,
		Priority:           row.Priority,
		JobDuration:        row.JobDuration,
		AssignedTechnician: row.AssignedTechnician,
		EstimatedSched:     row.EstimatedSched,
		FixedScheduleTime:  row.FixedScheduleTime,
		FixedAssignment:    row.FixedAssignment,
	}
	if row.Status != nil {
		job.Status = model.JobStatus(*row.Status)
	}

	job.Address = &model.Address{
		ID:            row.AddressID,
		StreetAddress: row.StreetAddress,
		Lat:           row.AddressLat,
		Lng:           row.AddressLng,
	}

	order := &model.Order{
		ID:                    row.OrderID,
		CustomerName:          row.CustomerName,
		AddressID:             row.AddressID,
		VehicleID:             row.VehicleID,
		EarliestAvailableTime: row.EarliestAvailableTime,
	}
	if row.VehicleID != nil && row.VehicleYear != nil {
		vehicle := &model.CustomerVehicle{ID: *row.VehicleID, Year: *row.VehicleYear}
		if row.VehicleMake != nil {
			vehicle.Make = *row.VehicleMake
		}
		if row.VehicleModel != nil {
			vehicle.Model = *row.VehicleModel
		}
		order.Vehicle = vehicle
	}
	job.Order = order

	if row.ServiceID != nil && row.ServiceName != nil {
		svc := &model.Service{ID: *row.ServiceID, Name: *row.ServiceName}
		if row.ServiceCategory != nil {
			svc.Category = model.ServiceCategory(*row.ServiceCategory)
		}
		job.Service = svc
	}
	return job
}
