package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fieldline/dispatch/internal/core"
	"github.com/fieldline/dispatch/internal/data"
	"github.com/fieldline/dispatch/internal/domain/model"
	"github.com/fieldline/dispatch/internal/domain/optimize"
	"github.com/fieldline/dispatch/internal/domain/schedule"
	"github.com/fieldline/dispatch/internal/mocks"
)

type replanFixture struct {
	techRepo  *mocks.MockTechnicianRepository
	jobRepo   *mocks.MockJobRepository
	equipment *mocks.MockEquipmentRepository
	optimizer *mocks.MockOptimizerClient
	locations *mocks.MockLocationProvider
	guard     *mocks.MockRunGuard
	store     *mocks.MockTravelTimeStore
	provider  *mocks.MockDistanceMatrixProvider
	clock     *data.FixedTimeProvider
	svc       *ReplanService

	updates []model.JobUpdate
}

func newReplanFixture(t *testing.T, now time.Time) *replanFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &replanFixture{
		techRepo:  mocks.NewMockTechnicianRepository(ctrl),
		jobRepo:   mocks.NewMockJobRepository(ctrl),
		equipment: mocks.NewMockEquipmentRepository(ctrl),
		optimizer: mocks.NewMockOptimizerClient(ctrl),
		locations: mocks.NewMockLocationProvider(ctrl),
		guard:     mocks.NewMockRunGuard(ctrl),
		store:     mocks.NewMockTravelTimeStore(ctrl),
		provider:  mocks.NewMockDistanceMatrixProvider(ctrl),
		clock:     data.NewFixedTimeProvider(now),
	}

	cfg := core.DefaultReplanConfig()
	availability := NewAvailabilityService(edmonton(t), nil)
	travel := NewTravelTimeService(TravelTimeServiceOptions{
		Store: f.store, Provider: f.provider, Config: cfg, Clock: f.clock,
	})
	payloads := NewPayloadBuilder(PayloadBuilderOptions{
		Travel: travel, Availability: availability, Config: cfg, Clock: f.clock,
	})

	f.svc = NewReplanService(ReplanServiceOptions{
		Technicians:  f.techRepo,
		Jobs:         f.jobRepo,
		Equipment:    f.equipment,
		Optimizer:    f.optimizer,
		Locations:    f.locations,
		Guard:        f.guard,
		Availability: availability,
		Eligibility:  NewEligibilityService(f.equipment, nil),
		Payloads:     payloads,
		Results:      NewResultsProcessor(nil),
		Config:       cfg,
		Clock:        f.clock,
	})
	return f
}

// stubCommon wires the collaborators every scenario shares: one acquired and
// released lease, empty travel cache, equipment-free jobs, no device
// positions, captured writes.
func (f *replanFixture) stubCommon(technicians []model.Technician, jobs, fixed []model.Job) {
	f.guard.EXPECT().TryAcquire(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil).Times(1)
	f.guard.EXPECT().Release(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	f.locations.EXPECT().CurrentLocations(gomock.Any()).Return(map[string]model.DeviceLocation{}, nil).Times(1)
	f.techRepo.EXPECT().ActiveTechnicians(gomock.Any()).Return(technicians, nil).AnyTimes()
	f.jobRepo.EXPECT().RelevantJobs(gomock.Any()).Return(jobs, nil).Times(1)
	f.jobRepo.EXPECT().JobsByStatus(gomock.Any(), gomock.Any()).Return(fixed, nil).Times(1)
	f.equipment.EXPECT().EquipmentForVans(gomock.Any(), gomock.Any()).
		Return(map[int64][]model.VanEquipment{}, nil).AnyTimes()
	f.equipment.EXPECT().RequiredModelsForJob(gomock.Any(), gomock.Any()).Return([]string{}, nil).AnyTimes()
	f.store.EXPECT().BulkGet(gomock.Any(), gomock.Any()).
		Return(map[optimize.PairKey]core.TravelEstimate{}, nil).AnyTimes()
	f.store.EXPECT().BulkUpsert(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.provider.EXPECT().TravelTime(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(core.TravelEstimate{DurationSeconds: 600}, nil).AnyTimes()
	f.jobRepo.EXPECT().UpdateJobs(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, updates []model.JobUpdate) error {
			f.updates = updates
			return nil
		}).AnyTimes()
}

func (f *replanFixture) updateFor(jobID int64) (model.JobUpdateData, bool) {
	for _, u := range f.updates {
		if u.JobID == jobID {
			return u.Data, true
		}
	}
	return model.JobUpdateData{}, false
}

// everydayTech works the same clock hours all seven days.
func everydayTech(id, vanID int64, start, end string) model.Technician {
	tech := weekdayTech(id, vanID, start, end)
	tech.DefaultHours = append(tech.DefaultHours,
		model.DefaultHours{TechnicianID: id, DayOfWeek: 0, StartTime: start, EndTime: end},
		model.DefaultHours{TechnicianID: id, DayOfWeek: 6, StartTime: start, EndTime: end},
	)
	return tech
}

func threeQueuedJobs() []model.Job {
	return []model.Job{
		queuedJob(101, 1001, 60, 3),
		queuedJob(102, 1001, 30, 3),
		queuedJob(103, 1002, 45, 1),
	}
}

func TestRunHappyPathSinglePass(t *testing.T) {
	now := utc(2025, 6, 6, 14, 0) // Friday
	f := newReplanFixture(t, now)

	techs := []model.Technician{
		weekdayTech(1, 10, "08:00:00", "17:00:00"),
		weekdayTech(2, 20, "08:00:00", "17:00:00"),
	}
	f.stubCommon(techs, threeQueuedJobs(), nil)

	f.optimizer.EXPECT().Solve(gomock.Any(), gomock.Any()).Return(&optimize.Response{
		Status: optimize.StatusSuccess,
		Routes: []optimize.Route{
			{TechnicianID: 1, Stops: []optimize.Stop{{ItemID: "bundle_1001", StartTimeISO: "2025-06-06T15:00:00Z"}}},
			{TechnicianID: 2, Stops: []optimize.Stop{{ItemID: "job_103", StartTimeISO: "2025-06-06T16:30:00Z"}}},
		},
	}, nil).Times(1)

	summary, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Passes)
	assert.Equal(t, 1, summary.OptimizerCalls)
	assert.Equal(t, 3, summary.JobsScheduled)
	assert.Equal(t, 0, summary.JobsPendingReview)

	require.Len(t, f.updates, 3)
	for _, jobID := range []int64{101, 102} {
		upd, ok := f.updateFor(jobID)
		require.True(t, ok)
		assert.Equal(t, model.JobStatusQueued, upd.Status)
		require.NotNil(t, upd.AssignedTechnician)
		assert.Equal(t, int64(1), *upd.AssignedTechnician)
		require.NotNil(t, upd.EstimatedSched)
		assert.Equal(t, utc(2025, 6, 6, 15, 0), *upd.EstimatedSched)
	}
	upd, ok := f.updateFor(103)
	require.True(t, ok)
	require.NotNil(t, upd.AssignedTechnician)
	assert.Equal(t, int64(2), *upd.AssignedTechnician)
	assert.Equal(t, utc(2025, 6, 6, 16, 30), *upd.EstimatedSched)
}

func TestRunOverflowIntoNextDay(t *testing.T) {
	now := utc(2025, 6, 6, 14, 0)
	f := newReplanFixture(t, now)

	techs := []model.Technician{
		everydayTech(1, 10, "08:00:00", "17:00:00"),
		everydayTech(2, 20, "08:00:00", "17:00:00"),
	}
	f.stubCommon(techs, threeQueuedJobs(), nil)

	f.optimizer.EXPECT().Solve(gomock.Any(), gomock.Any()).Return(&optimize.Response{
		Status: optimize.StatusPartial,
		Routes: []optimize.Route{
			{TechnicianID: 1, Stops: []optimize.Stop{{ItemID: "bundle_1001", StartTimeISO: "2025-06-06T15:00:00Z"}}},
		},
		UnassignedItemIDs: []string{"job_103"},
	}, nil).Times(1)
	f.optimizer.EXPECT().Solve(gomock.Any(), gomock.Any()).Return(&optimize.Response{
		Status: optimize.StatusSuccess,
		Routes: []optimize.Route{
			{TechnicianID: 2, Stops: []optimize.Stop{{ItemID: "job_103", StartTimeISO: "2025-06-07T15:30:00Z"}}},
		},
	}, nil).Times(1)

	summary, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Passes)
	assert.Equal(t, 2, summary.OptimizerCalls)
	assert.Equal(t, 3, summary.JobsScheduled)

	upd, ok := f.updateFor(103)
	require.True(t, ok)
	assert.Equal(t, model.JobStatusQueued, upd.Status)
	require.NotNil(t, upd.AssignedTechnician)
	assert.Equal(t, int64(2), *upd.AssignedTechnician)
	assert.Equal(t, utc(2025, 6, 7, 15, 30), *upd.EstimatedSched)
}

func TestRunExhaustedOverflowFinalizesPendingReview(t *testing.T) {
	now := utc(2025, 6, 6, 14, 0)
	f := newReplanFixture(t, now)

	techs := []model.Technician{everydayTech(1, 10, "08:00:00", "17:00:00")}
	f.stubCommon(techs, threeQueuedJobs(), nil)

	maxAttempts := core.DefaultReplanConfig().MaxOverflowAttempts
	f.optimizer.EXPECT().Solve(gomock.Any(), gomock.Any()).Return(&optimize.Response{
		Status:            optimize.StatusPartial,
		UnassignedItemIDs: []string{"bundle_1001", "job_103"},
	}, nil).Times(1 + maxAttempts)

	summary, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1+maxAttempts, summary.Passes)
	assert.Equal(t, 0, summary.JobsScheduled)
	assert.Equal(t, 3, summary.JobsPendingReview)

	require.Len(t, f.updates, 3)
	for _, u := range f.updates {
		assert.Equal(t, model.JobStatusPendingReview, u.Data.Status)
		assert.Nil(t, u.Data.AssignedTechnician)
		assert.Nil(t, u.Data.EstimatedSched)
	}
}

func TestRunWeekendSkipAdvancesAttemptsWithoutSolving(t *testing.T) {
	now := utc(2025, 6, 6, 14, 0) // Friday
	f := newReplanFixture(t, now)

	techs := []model.Technician{
		weekdayTech(1, 10, "08:00:00", "17:00:00"),
		weekdayTech(2, 20, "08:00:00", "17:00:00"),
	}
	f.stubCommon(techs, threeQueuedJobs(), nil)

	f.optimizer.EXPECT().Solve(gomock.Any(), gomock.Any()).Return(&optimize.Response{
		Status: optimize.StatusPartial,
		Routes: []optimize.Route{
			{TechnicianID: 1, Stops: []optimize.Stop{{ItemID: "bundle_1001", StartTimeISO: "2025-06-06T15:00:00Z"}}},
		},
		UnassignedItemIDs: []string{"job_103"},
	}, nil).Times(1)
	f.optimizer.EXPECT().Solve(gomock.Any(), gomock.Any()).Return(&optimize.Response{
		Status: optimize.StatusSuccess,
		Routes: []optimize.Route{
			{TechnicianID: 2, Stops: []optimize.Stop{{ItemID: "job_103", StartTimeISO: "2025-06-09T15:30:00Z"}}},
		},
	}, nil).Times(1)

	summary, err := f.svc.Run(context.Background())
	require.NoError(t, err)

	// Friday solve + Saturday skip + Sunday skip + Monday solve.
	assert.Equal(t, 4, summary.Passes)
	assert.Equal(t, 2, summary.OptimizerCalls)
	assert.Equal(t, 3, summary.JobsScheduled)

	upd, ok := f.updateFor(103)
	require.True(t, ok)
	assert.Equal(t, utc(2025, 6, 9, 15, 30), *upd.EstimatedSched)
}

func TestRunConfirmsFixedTimeJobOverSolver(t *testing.T) {
	now := utc(2025, 6, 6, 14, 0)
	f := newReplanFixture(t, now)

	fixedAt := utc(2025, 6, 6, 18, 0)
	fixed := fixedJob(201, 2001, 1, 60, fixedAt)

	techs := []model.Technician{weekdayTech(1, 10, "08:00:00", "17:00:00")}
	jobs := append(threeQueuedJobs(), fixed)
	f.stubCommon(techs, jobs, []model.Job{fixed})

	// The solver places the fixed item somewhere else; its own time must win.
	f.optimizer.EXPECT().Solve(gomock.Any(), gomock.Any()).Return(&optimize.Response{
		Status: optimize.StatusSuccess,
		Routes: []optimize.Route{
			{TechnicianID: 1, Stops: []optimize.Stop{
				{ItemID: "bundle_1001", StartTimeISO: "2025-06-06T15:00:00Z"},
				{ItemID: "job_103", StartTimeISO: "2025-06-06T16:30:00Z"},
				{ItemID: "job_201", StartTimeISO: "2025-06-06T20:00:00Z"},
			}},
		},
	}, nil).Times(1)

	summary, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, summary.JobsScheduled)

	upd, ok := f.updateFor(201)
	require.True(t, ok)
	assert.Equal(t, model.JobStatusFixedTime, upd.Status)
	require.NotNil(t, upd.AssignedTechnician)
	assert.Equal(t, int64(1), *upd.AssignedTechnician)
	require.NotNil(t, upd.EstimatedSched)
	assert.Equal(t, fixedAt, *upd.EstimatedSched, "the committed fixed time overrides the solver")
}

func TestConfirmFixedJobsWithoutTechnicianFailsPersistent(t *testing.T) {
	now := utc(2025, 6, 6, 14, 0)
	f := newReplanFixture(t, now)

	fixed := fixedJob(301, 3001, 1, 60, utc(2025, 6, 6, 18, 0))
	fixed.AssignedTechnician = nil

	st := &runState{
		fixedJobs:      []model.Job{fixed},
		jobsByID:       map[int64]model.Job{301: fixed},
		states:         map[int64]*schedule.JobSchedulingState{301: {JobID: 301, LastStatus: schedule.StatusPending}},
		assignments:    map[int64]schedule.FinalAssignment{},
		confirmedFixed: map[int64]schedule.FinalAssignment{},
	}

	f.svc.confirmFixedJobs(context.Background(), f.svc.logger, st, now, "2025-06-06")

	state := st.states[301]
	assert.Equal(t, schedule.StatusFailedPersistent, state.LastStatus)
	require.Len(t, state.Attempts, 1)
	assert.Equal(t, schedule.ReasonFixedTimeUnassigned, state.Attempts[0].FailureReason)
	assert.Empty(t, st.confirmedFixed, "an unassigned fixed job is never confirmed")
}

func TestRunRejectsOverlappingRuns(t *testing.T) {
	now := utc(2025, 6, 6, 14, 0)
	f := newReplanFixture(t, now)

	// TryAcquire loses the lease; Release must not be called.
	f.guard.EXPECT().TryAcquire(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil).Times(1)

	_, err := f.svc.Run(context.Background())
	require.ErrorIs(t, err, ErrRunInProgress)
}

func TestRunOptimizerErrorFailsRunWithoutWrites(t *testing.T) {
	now := utc(2025, 6, 6, 14, 0)
	f := newReplanFixture(t, now)

	techs := []model.Technician{weekdayTech(1, 10, "08:00:00", "17:00:00")}
	f.stubCommon(techs, threeQueuedJobs(), nil)

	f.optimizer.EXPECT().Solve(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("optimizer 503")).Times(1)

	_, err := f.svc.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, f.updates, "a failed run must not write job updates")
}

func TestRunNoPlannableJobsWritesNothing(t *testing.T) {
	now := utc(2025, 6, 6, 14, 0)
	f := newReplanFixture(t, now)

	techs := []model.Technician{weekdayTech(1, 10, "08:00:00", "17:00:00")}
	f.stubCommon(techs, nil, nil)

	summary, err := f.svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Passes)
	assert.Equal(t, 0, summary.JobsScheduled)
	assert.Nil(t, f.updates)

	last := f.svc.LastSummary()
	require.NotNil(t, last)
	assert.Equal(t, summary.RunID, last.RunID)
}
