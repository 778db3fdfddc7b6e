package service

import (
	"context"
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

func newPayloadBuilder(t *testing.T, now time.Time) (*PayloadBuilder, *mocks.MockTravelTimeStore, *mocks.MockDistanceMatrixProvider) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockTravelTimeStore(ctrl)
	provider := mocks.NewMockDistanceMatrixProvider(ctrl)
	cfg := core.DefaultReplanConfig()
	clock := data.NewFixedTimeProvider(now)

	travel := NewTravelTimeService(TravelTimeServiceOptions{
		Store:    store,
		Provider: provider,
		Config:   cfg,
		Clock:    clock,
	})
	availability := NewAvailabilityService(edmonton(t), nil)
	builder := NewPayloadBuilder(PayloadBuilderOptions{
		Travel:       travel,
		Availability: availability,
		Config:       cfg,
		Clock:        clock,
	})
	return builder, store, provider
}

func stubTravel(store *mocks.MockTravelTimeStore, provider *mocks.MockDistanceMatrixProvider, seconds int64) {
	store.EXPECT().BulkGet(gomock.Any(), gomock.Any()).
		Return(map[optimize.PairKey]core.TravelEstimate{}, nil).AnyTimes()
	provider.EXPECT().TravelTime(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(core.TravelEstimate{DurationSeconds: seconds}, nil).AnyTimes()
	store.EXPECT().BulkUpsert(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func TestBuildDepotIsIndexZeroAndMatrixDiagonalZero(t *testing.T) {
	now := utc(2025, 6, 6, 14, 0) // Friday
	builder, store, provider := newPayloadBuilder(t, now)
	stubTravel(store, provider, 600)

	tech := weekdayTech(1, 10, "08:00:00", "17:00:00")
	item := schedule.SingleJob{Job: queuedJob(101, 1001, 60, 1), Eligible: []int64{1}}

	built, err := builder.Build(context.Background(), BuildPayloadParams{
		Technicians: []model.Technician{tech},
		Items:       []schedule.SchedulableItem{item},
		TargetDate:  now,
	})
	require.NoError(t, err)

	p := built.Payload
	depot := core.DefaultReplanConfig().Depot
	require.NotEmpty(t, p.Locations)
	assert.Equal(t, 0, p.Locations[0].Index)
	assert.Equal(t, depot.Lat, p.Locations[0].Lat)
	assert.Equal(t, depot.Lng, p.Locations[0].Lng)

	n := len(p.Locations)
	require.Len(t, p.TravelTimeMatrix, n)
	for i := 0; i < n; i++ {
		require.Len(t, p.TravelTimeMatrix[i], n)
		assert.Equal(t, int64(0), p.TravelTimeMatrix[i][i])
		for j := 0; j < n; j++ {
			if i != j {
				assert.Equal(t, int64(600), p.TravelTimeMatrix[i][j])
			}
		}
	}

	require.Len(t, built.ItemsByID, 1)
	assert.Contains(t, built.ItemsByID, "job_101")
}

func TestBuildPerturbsTechnicianStartOnItemCollision(t *testing.T) {
	now := utc(2025, 6, 6, 14, 0)
	builder, store, provider := newPayloadBuilder(t, now)
	stubTravel(store, provider, 600)

	job := queuedJob(101, 1001, 60, 1)
	itemCoords := model.Coordinates{Lat: *job.Address.Lat, Lng: *job.Address.Lng}

	tech := weekdayTech(1, 10, "08:00:00", "17:00:00")
	tech.CurrentLocation = &itemCoords

	built, err := builder.Build(context.Background(), BuildPayloadParams{
		Technicians: []model.Technician{tech},
		Items:       []schedule.SchedulableItem{schedule.SingleJob{Job: job, Eligible: []int64{1}}},
		TargetDate:  now,
	})
	require.NoError(t, err)

	p := built.Payload
	require.Len(t, p.Technicians, 1)
	startIdx := p.Technicians[0].StartLocationIndex

	itemIdx := p.Items[0].LocationIndex
	assert.NotEqual(t, itemIdx, startIdx, "colliding start must get its own index")
	assert.InDelta(t, itemCoords.Lat+0.00001, p.Locations[startIdx].Lat, 1e-9)
	assert.Equal(t, itemCoords.Lng, p.Locations[startIdx].Lng)
}

func TestBuildEmptyAvailabilityGetsMiddayZeroShift(t *testing.T) {
	now := utc(2025, 6, 6, 14, 0)
	builder, store, provider := newPayloadBuilder(t, now)
	stubTravel(store, provider, 600)

	// Saturday: weekday tech has no hours.
	target := utc(2025, 6, 7, 0, 0)
	tech := weekdayTech(1, 10, "08:00:00", "17:00:00")

	built, err := builder.Build(context.Background(), BuildPayloadParams{
		Technicians: []model.Technician{tech},
		Items: []schedule.SchedulableItem{
			schedule.SingleJob{Job: queuedJob(101, 1001, 60, 1), Eligible: []int64{1}},
		},
		TargetDate: target,
	})
	require.NoError(t, err)

	require.Len(t, built.Payload.Technicians, 1)
	dto := built.Payload.Technicians[0]
	assert.Equal(t, "2025-06-07T12:00:00Z", dto.EarliestStartISO)
	assert.Equal(t, "2025-06-07T12:00:00Z", dto.LatestEndISO)
	assert.Empty(t, built.Payload.TechnicianUnavailabilities)
	assert.NotContains(t, built.ShiftsByTechnician, int64(1),
		"a technician with no working time carries no shift envelope")
}

func TestBuildEmitsGapsBetweenWindows(t *testing.T) {
	now := utc(2025, 6, 6, 14, 0)
	builder, store, provider := newPayloadBuilder(t, now)
	stubTravel(store, provider, 600)

	tech := model.Technician{
		ID:            1,
		AssignedVanID: ptr(int64(10)),
		Van:           &model.Van{ID: 10},
		HomeLocation:  &model.Coordinates{Lat: 51.02, Lng: -114.10},
		DefaultHours: []model.DefaultHours{
			{TechnicianID: 1, DayOfWeek: 5, StartTime: "08:00:00", EndTime: "12:00:00"},
			{TechnicianID: 1, DayOfWeek: 5, StartTime: "13:00:00", EndTime: "17:00:00"},
		},
	}

	built, err := builder.Build(context.Background(), BuildPayloadParams{
		Technicians: []model.Technician{tech},
		Items: []schedule.SchedulableItem{
			schedule.SingleJob{Job: queuedJob(101, 1001, 60, 1), Eligible: []int64{1}},
		},
		TargetDate: now,
	})
	require.NoError(t, err)

	require.Len(t, built.Payload.TechnicianUnavailabilities, 1)
	gap := built.Payload.TechnicianUnavailabilities[0]
	assert.Equal(t, int64(1), gap.TechnicianID)
	// 12:00 to 13:00 Edmonton is 18:00 to 19:00 UTC in June.
	assert.Equal(t, "2025-06-06T18:00:00Z", gap.StartTimeISO)
	assert.Equal(t, int64(3600), gap.DurationSeconds)

	envelope := built.Payload.Technicians[0]
	assert.Equal(t, "2025-06-06T14:00:00Z", envelope.EarliestStartISO)
	assert.Equal(t, "2025-06-06T23:00:00Z", envelope.LatestEndISO)

	require.Contains(t, built.ShiftsByTechnician, int64(1))
	shift := built.ShiftsByTechnician[1]
	assert.Equal(t, utc(2025, 6, 6, 14, 0), shift.Start)
	assert.Equal(t, utc(2025, 6, 6, 23, 0), shift.End)
}

func TestBuildOmitsGapCoveredByFixedJobThisPass(t *testing.T) {
	now := utc(2025, 6, 6, 14, 0)
	builder, store, provider := newPayloadBuilder(t, now)
	stubTravel(store, provider, 600)

	tech := model.Technician{
		ID:            1,
		AssignedVanID: ptr(int64(10)),
		Van:           &model.Van{ID: 10},
		HomeLocation:  &model.Coordinates{Lat: 51.02, Lng: -114.10},
		DefaultHours: []model.DefaultHours{
			{TechnicianID: 1, DayOfWeek: 5, StartTime: "08:00:00", EndTime: "12:00:00"},
			{TechnicianID: 1, DayOfWeek: 5, StartTime: "13:00:00", EndTime: "17:00:00"},
		},
	}

	// Fixed job occupying exactly the 18:00-19:00 UTC gap.
	fixed := fixedJob(201, 2001, 1, 60, utc(2025, 6, 6, 18, 0))

	built, err := builder.Build(context.Background(), BuildPayloadParams{
		Technicians: []model.Technician{tech},
		Items: []schedule.SchedulableItem{
			schedule.SingleJob{Job: fixed, Eligible: []int64{1}},
		},
		TargetDate: now,
	})
	require.NoError(t, err)

	assert.Empty(t, built.Payload.TechnicianUnavailabilities,
		"a gap matching a fixed job this pass is carried by the job itself")

	require.Len(t, built.Payload.Items, 1)
	item := built.Payload.Items[0]
	assert.True(t, item.IsFixedTime)
	require.NotNil(t, item.FixedTimeISO)
	assert.Equal(t, "2025-06-06T18:00:00Z", *item.FixedTimeISO)
}

func TestBuildFiltersFixedJobsForOtherDates(t *testing.T) {
	now := utc(2025, 6, 6, 14, 0)
	builder, store, provider := newPayloadBuilder(t, now)
	stubTravel(store, provider, 600)

	tech := weekdayTech(1, 10, "08:00:00", "17:00:00")
	todayFixed := fixedJob(201, 2001, 1, 60, utc(2025, 6, 6, 18, 0))
	mondayFixed := fixedJob(202, 2002, 1, 60, utc(2025, 6, 9, 18, 0))

	built, err := builder.Build(context.Background(), BuildPayloadParams{
		Technicians: []model.Technician{tech},
		Items: []schedule.SchedulableItem{
			schedule.SingleJob{Job: todayFixed, Eligible: []int64{1}},
			schedule.SingleJob{Job: mondayFixed, Eligible: []int64{1}},
		},
		TargetDate: now,
	})
	require.NoError(t, err)

	require.Len(t, built.Payload.Items, 1)
	assert.Equal(t, "job_201", built.Payload.Items[0].ID)
	assert.NotContains(t, built.ItemsByID, "job_202")
}

func TestBuildBundleEarliestStartIsLatestOfJobs(t *testing.T) {
	now := utc(2025, 6, 6, 14, 0)
	builder, store, provider := newPayloadBuilder(t, now)
	stubTravel(store, provider, 600)

	early := utc(2025, 6, 6, 15, 0)
	late := utc(2025, 6, 6, 16, 30)
	j1 := queuedJob(101, 1001, 60, 1)
	j1.Order = &model.Order{ID: 1001, EarliestAvailableTime: &early}
	j2 := queuedJob(102, 1001, 30, 1)
	j2.Order = &model.Order{ID: 1001, EarliestAvailableTime: &late}
	j2.Address = j1.Address

	tech := weekdayTech(1, 10, "08:00:00", "17:00:00")
	bundle := schedule.Bundle{OrderID: 1001, Items: []model.Job{j1, j2}, Eligible: []int64{1}}

	built, err := builder.Build(context.Background(), BuildPayloadParams{
		Technicians: []model.Technician{tech},
		Items:       []schedule.SchedulableItem{bundle},
		TargetDate:  now,
	})
	require.NoError(t, err)

	require.Len(t, built.Payload.Items, 1)
	item := built.Payload.Items[0]
	assert.Equal(t, "bundle_1001", item.ID)
	assert.Equal(t, int64(90*60), item.DurationSeconds)
	require.NotNil(t, item.EarliestStartTimeISO)
	assert.Equal(t, "2025-06-06T16:30:00Z", *item.EarliestStartTimeISO)
}
