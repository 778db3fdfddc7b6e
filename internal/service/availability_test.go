package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldline/dispatch/internal/domain/model"
	"github.com/fieldline/dispatch/internal/domain/schedule"
)

func edmonton(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Edmonton")
	require.NoError(t, err)
	return loc
}

func TestCalculateWindowsDefaultHours(t *testing.T) {
	svc := NewAvailabilityService(edmonton(t), nil)
	tech := weekdayTech(1, 10, "08:00:00", "17:00:00")

	// 2025-06-06 is a Friday; Edmonton is on MDT (UTC-6) in June.
	date := utc(2025, 6, 6, 0, 0)
	availability := svc.CalculateWindows(tech, date, date)

	windows, ok := availability["2025-06-06"]
	require.True(t, ok)
	require.Len(t, windows, 1)
	assert.Equal(t, utc(2025, 6, 6, 14, 0), windows[0].Start)
	assert.Equal(t, utc(2025, 6, 6, 23, 0), windows[0].End)
}

func TestCalculateWindowsWeekendEmpty(t *testing.T) {
	svc := NewAvailabilityService(edmonton(t), nil)
	tech := weekdayTech(1, 10, "08:00:00", "17:00:00")

	// 2025-06-07 is a Saturday.
	date := utc(2025, 6, 7, 0, 0)
	availability := svc.CalculateWindows(tech, date, date)
	assert.Empty(t, availability)
	assert.False(t, svc.HasAnyWindow([]model.Technician{tech}, date))
}

func TestCalculateWindowsTimeOffException(t *testing.T) {
	svc := NewAvailabilityService(edmonton(t), nil)
	tech := weekdayTech(1, 10, "08:00:00", "17:00:00")
	tech.Exceptions = []model.AvailabilityException{{
		TechnicianID:  1,
		Date:          "2025-06-06",
		ExceptionType: model.ExceptionTimeOff,
	}}

	date := utc(2025, 6, 6, 0, 0)
	assert.Empty(t, svc.CalculateWindows(tech, date, date))
}

func TestCalculateWindowsCustomHoursException(t *testing.T) {
	svc := NewAvailabilityService(edmonton(t), nil)
	tech := weekdayTech(1, 10, "08:00:00", "17:00:00")
	tech.Exceptions = []model.AvailabilityException{{
		TechnicianID:  1,
		Date:          "2025-06-06",
		ExceptionType: model.ExceptionCustomHours,
		IsAvailable:   true,
		StartTime:     ptr("10:00:00"),
		EndTime:       ptr("13:00:00"),
	}}

	date := utc(2025, 6, 6, 0, 0)
	windows := svc.CalculateWindows(tech, date, date)["2025-06-06"]
	require.Len(t, windows, 1)
	assert.Equal(t, utc(2025, 6, 6, 16, 0), windows[0].Start)
	assert.Equal(t, utc(2025, 6, 6, 19, 0), windows[0].End)
}

func TestCalculateWindowsDSTSpringForward(t *testing.T) {
	svc := NewAvailabilityService(edmonton(t), nil)
	tech := weekdayTech(1, 10, "08:00:00", "17:00:00")

	// Friday before the switch: MST, UTC-7.
	before := utc(2025, 3, 7, 0, 0)
	windows := svc.CalculateWindows(tech, before, before)["2025-03-07"]
	require.Len(t, windows, 1)
	assert.Equal(t, utc(2025, 3, 7, 15, 0), windows[0].Start)

	// Monday after the switch: MDT, UTC-6.
	after := utc(2025, 3, 10, 0, 0)
	windows = svc.CalculateWindows(tech, after, after)["2025-03-10"]
	require.Len(t, windows, 1)
	assert.Equal(t, utc(2025, 3, 10, 14, 0), windows[0].Start)
}

func TestApplyLockedJobsTighterTimingForOngoingJob(t *testing.T) {
	svc := NewAvailabilityService(edmonton(t), nil)
	techID := int64(1)
	day := utc(2025, 6, 6, 0, 0)
	now := utc(2025, 6, 6, 14, 30)

	windows := []schedule.TimeWindow{{Start: utc(2025, 6, 6, 9, 0), End: utc(2025, 6, 6, 18, 0)}}

	started := utc(2025, 6, 6, 13, 0)
	ongoing := model.Job{
		ID:                 50,
		Status:             model.JobStatusInProgress,
		JobDuration:        120,
		AssignedTechnician: &techID,
		EstimatedSched:     &started,
	}

	got := svc.ApplyLockedJobs(windows, []model.Job{ongoing}, techID, day, now)
	require.Len(t, got, 2)
	assert.Equal(t, utc(2025, 6, 6, 9, 0), got[0].Start)
	assert.Equal(t, utc(2025, 6, 6, 14, 30), got[0].End, "only the remainder from now is blocked")
	assert.Equal(t, utc(2025, 6, 6, 15, 0), got[1].Start)
	assert.Equal(t, utc(2025, 6, 6, 18, 0), got[1].End)
}

func TestApplyLockedJobsFinishedJobBlocksNothing(t *testing.T) {
	svc := NewAvailabilityService(edmonton(t), nil)
	techID := int64(1)
	day := utc(2025, 6, 6, 0, 0)
	now := utc(2025, 6, 6, 14, 30)

	windows := []schedule.TimeWindow{{Start: utc(2025, 6, 6, 9, 0), End: utc(2025, 6, 6, 18, 0)}}

	started := utc(2025, 6, 6, 10, 0)
	finished := model.Job{
		ID:                 51,
		Status:             model.JobStatusInProgress,
		JobDuration:        120,
		AssignedTechnician: &techID,
		EstimatedSched:     &started,
	}

	got := svc.ApplyLockedJobs(windows, []model.Job{finished}, techID, day, now)
	require.Len(t, got, 1)
	assert.Equal(t, windows[0], got[0])
}

func TestApplyLockedJobsFixedTimeBlocksCommittedInterval(t *testing.T) {
	svc := NewAvailabilityService(edmonton(t), nil)
	techID := int64(1)
	day := utc(2025, 6, 6, 0, 0)
	now := utc(2025, 6, 6, 8, 0)

	windows := []schedule.TimeWindow{{Start: utc(2025, 6, 6, 9, 0), End: utc(2025, 6, 6, 18, 0)}}
	fixedAt := utc(2025, 6, 6, 12, 0)
	fixed := model.Job{
		ID:                 52,
		Status:             model.JobStatusFixedTime,
		JobDuration:        60,
		AssignedTechnician: &techID,
		FixedScheduleTime:  &fixedAt,
	}

	got := svc.ApplyLockedJobs(windows, []model.Job{fixed}, techID, day, now)
	require.Len(t, got, 2)
	assert.Equal(t, utc(2025, 6, 6, 12, 0), got[0].End)
	assert.Equal(t, utc(2025, 6, 6, 13, 0), got[1].Start)
}

func TestApplyLockedJobsIgnoresOtherTechnicians(t *testing.T) {
	svc := NewAvailabilityService(edmonton(t), nil)
	day := utc(2025, 6, 6, 0, 0)
	now := utc(2025, 6, 6, 8, 0)
	otherTech := int64(99)

	windows := []schedule.TimeWindow{{Start: utc(2025, 6, 6, 9, 0), End: utc(2025, 6, 6, 18, 0)}}
	fixedAt := utc(2025, 6, 6, 12, 0)
	fixed := model.Job{
		ID:                 53,
		Status:             model.JobStatusFixedTime,
		JobDuration:        60,
		AssignedTechnician: &otherTech,
		FixedScheduleTime:  &fixedAt,
	}

	got := svc.ApplyLockedJobs(windows, []model.Job{fixed}, 1, day, now)
	require.Len(t, got, 1)
	assert.Equal(t, windows[0], got[0])
}
