package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline/dispatch/internal/domain/model"
	"github.com/fieldline/dispatch/internal/testutil"
)

// seedJobWithStatus creates the minimal address/order/job chain for one job.
func seedJobWithStatus(t *testing.T, db *sql.DB, status *string) int64 {
	t.Helper()
	addr := testutil.SeedAddress(t, db, "123 Main St SW", 51.0447, -114.0719)
	order := testutil.SeedOrder(t, db, testutil.OrderParams{CustomerName: "Acme Glass", AddressID: addr})
	return testutil.SeedJob(t, db, testutil.JobParams{
		OrderID:         order,
		AddressID:       addr,
		Status:          status,
		DurationMinutes: 60,
	})
}

func TestJobRepo_RelevantJobs(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db)

		queued := seedJobWithStatus(t, db, testutil.StringPtr("queued"))
		enRoute := seedJobWithStatus(t, db, testutil.StringPtr("en_route"))
		nullStatus := seedJobWithStatus(t, db, nil)
		seedJobWithStatus(t, db, testutil.StringPtr("completed"))
		seedJobWithStatus(t, db, testutil.StringPtr("cancelled"))
		seedJobWithStatus(t, db, testutil.StringPtr("pending_review"))

		jobs, err := repo.RelevantJobs(context.Background())
		require.NoError(t, err)
		require.Len(t, jobs, 3)

		// Ordered by id, so insertion order.
		assert.Equal(t, queued, jobs[0].ID)
		assert.Equal(t, model.JobStatusQueued, jobs[0].Status)
		assert.Equal(t, enRoute, jobs[1].ID)
		assert.Equal(t, nullStatus, jobs[2].ID)
		assert.Equal(t, model.JobStatus(""), jobs[2].Status)
	})
}

func TestJobRepo_RelevantJobs_Joins(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db)

		addr := testutil.SeedAddress(t, db, "456 Centre St", 51.05, -114.06)
		vehicle := testutil.SeedVehicle(t, db, 2021, "Toyota", "RAV4")
		earliest := time.Date(2026, 8, 28, 14, 0, 0, 0, time.UTC)
		order := testutil.SeedOrder(t, db, testutil.OrderParams{
			CustomerName: "Jordan Lee",
			AddressID:    addr,
			VehicleID:    &vehicle,
			Earliest:     &earliest,
		})
		svc := testutil.SeedServiceRow(t, db, "Windshield Replacement", "adas_calibration")
		jobID := testutil.SeedJob(t, db, testutil.JobParams{
			OrderID:         order,
			ServiceID:       &svc,
			AddressID:       addr,
			Priority:        8,
			Status:          testutil.StringPtr("queued"),
			DurationMinutes: 90,
		})

		jobs, err := repo.RelevantJobs(context.Background())
		require.NoError(t, err)
		require.Len(t, jobs, 1)

		job := jobs[0]
		assert.Equal(t, jobID, job.ID)
		assert.Equal(t, 8, job.Priority)
		assert.Equal(t, 90, job.JobDuration)

		require.NotNil(t, job.Address)
		assert.Equal(t, "456 Centre St", job.Address.StreetAddress)
		require.NotNil(t, job.Address.Lat)
		assert.InDelta(t, 51.05, *job.Address.Lat, 1e-9)

		require.NotNil(t, job.Order)
		assert.Equal(t, "Jordan Lee", job.Order.CustomerName)
		require.NotNil(t, job.Order.EarliestAvailableTime)
		assert.True(t, earliest.Equal(*job.Order.EarliestAvailableTime))
		require.NotNil(t, job.Order.Vehicle)
		assert.Equal(t, 2021, job.Order.Vehicle.Year)
		assert.Equal(t, "RAV4", job.Order.Vehicle.Model)

		require.NotNil(t, job.Service)
		assert.Equal(t, "Windshield Replacement", job.Service.Name)
		assert.Equal(t, model.ServiceCategory("adas_calibration"), job.Service.Category)
	})
}

func TestJobRepo_JobsByStatus(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db)

		seedJobWithStatus(t, db, testutil.StringPtr("queued"))
		pending := seedJobWithStatus(t, db, testutil.StringPtr("pending_review"))
		seedJobWithStatus(t, db, nil)

		jobs, err := repo.JobsByStatus(context.Background(), model.JobStatusPendingReview)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, pending, jobs[0].ID)

		// No statuses means no query at all.
		jobs, err = repo.JobsByStatus(context.Background())
		require.NoError(t, err)
		assert.Nil(t, jobs)
	})
}

func TestJobRepo_UpdateJobs_GroupsIdenticalPayloads(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db)

		tech := seedTechnicianFixture(t, db, "tech-1")
		a := seedJobWithStatus(t, db, testutil.StringPtr("queued"))
		b := seedJobWithStatus(t, db, testutil.StringPtr("queued"))
		c := seedJobWithStatus(t, db, testutil.StringPtr("queued"))

		sched := time.Date(2026, 8, 27, 16, 30, 0, 0, time.UTC)
		updates := []model.JobUpdate{
			{JobID: a, Data: model.JobUpdateData{
				Status:             model.JobStatusQueued,
				AssignedTechnician: &tech,
				EstimatedSched:     &sched,
			}},
			{JobID: b, Data: model.JobUpdateData{Status: model.JobStatusPendingReview}},
			{JobID: c, Data: model.JobUpdateData{Status: model.JobStatusPendingReview}},
		}
		require.NoError(t, repo.UpdateJobs(context.Background(), updates))

		status, techID, estimated := readJobRow(t, db, a)
		assert.Equal(t, "queued", status)
		require.NotNil(t, techID)
		assert.Equal(t, tech, *techID)
		require.NotNil(t, estimated)
		assert.True(t, sched.Equal(*estimated))

		for _, id := range []int64{b, c} {
			status, techID, estimated := readJobRow(t, db, id)
			assert.Equal(t, "pending_review", status)
			assert.Nil(t, techID)
			assert.Nil(t, estimated)
		}
	})
}

func TestJobRepo_UpdateJobs_MissingJobAbortsWrite(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db)

		a := seedJobWithStatus(t, db, testutil.StringPtr("queued"))

		updates := []model.JobUpdate{
			{JobID: a, Data: model.JobUpdateData{Status: model.JobStatusPendingReview}},
			{JobID: a + 9999, Data: model.JobUpdateData{Status: model.JobStatusPendingReview}},
		}
		err := repo.UpdateJobs(context.Background(), updates)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rows updated")

		// The whole write rolls back, including the row that did exist.
		status, _, _ := readJobRow(t, db, a)
		assert.Equal(t, "queued", status)
	})
}

func TestJobRepo_UpdateJobs_Empty(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db)
		err := repo.UpdateJobs(context.Background(), nil)
		require.ErrorIs(t, err, ErrNoUpdates)
	})
}

// seedTechnicianFixture creates an active technician with no van.
func seedTechnicianFixture(t *testing.T, db *sql.DB, userID string) int64 {
	t.Helper()
	return testutil.SeedTechnician(t, db, testutil.TechnicianParams{
		UserID: userID,
		Name:   "Tech " + userID,
		Active: true,
	})
}

func readJobRow(t *testing.T, db *sql.DB, id int64) (string, *int64, *time.Time) {
	t.Helper()
	var (
		status    string
		techID    *int64
		estimated *time.Time
	)
	err := db.QueryRow(
		`SELECT status, assigned_technician, estimated_sched FROM jobs WHERE id = $1`, id,
	).Scan(&status, &techID, &estimated)
	require.NoError(t, err)
	return status, techID, estimated
}
