package service

import (
	"log/slog"
	"time"

	"github.com/fieldline/dispatch/internal/domain/model"
	"github.com/fieldline/dispatch/internal/domain/schedule"
	"github.com/fieldline/dispatch/internal/timeutil"
)

// AvailabilityService turns technician default hours and exceptions into
// concrete UTC working windows, subtracts locked jobs, and finds the gaps the
// optimizer must route around.
type AvailabilityService struct {
	loc    *time.Location
	logger *slog.Logger
}

// NewAvailabilityService creates an AvailabilityService for the given
// business timezone.
func NewAvailabilityService(loc *time.Location, logger *slog.Logger) *AvailabilityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AvailabilityService{loc: loc, logger: logger}
}

// CalculateWindows computes the technician's working windows for every UTC
// calendar date in [startDate, endDate]. Days with no windows carry no entry.
//
// Per date: an exception wins over default hours. A custom_hours exception
// with availability replaces the defaults with a single window; time_off (or
// an unavailable custom_hours row) empties the day. Default-hours entries
// apply unless explicitly marked unavailable. All wall times are parsed in
// the business timezone against that date.
func (s *AvailabilityService) CalculateWindows(
	tech model.Technician,
	startDate, endDate time.Time,
) schedule.DailyAvailability {
	availability := make(schedule.DailyAvailability)

	for date := timeutil.StartOfUTCDay(startDate); !date.After(endDate.UTC()); date = timeutil.AddDays(date, 1) {
		windows := s.windowsForDate(tech, date)
		if len(windows) > 0 {
			availability[timeutil.DateKey(date)] = windows
		}
	}
	return availability
}

func (s *AvailabilityService) windowsForDate(tech model.Technician, date time.Time) []schedule.TimeWindow {
	dateKey := timeutil.DateKey(date)

	if exc, ok := tech.ExceptionForDate(dateKey); ok {
		if exc.ExceptionType == model.ExceptionCustomHours && exc.IsAvailable &&
			exc.StartTime != nil && exc.EndTime != nil {
			w, err := s.parseWindow(date, *exc.StartTime, *exc.EndTime)
			if err != nil {
				s.logger.Warn("skipping malformed custom-hours exception",
					"technician_id", tech.ID, "date", dateKey, "error", err)
				return nil
			}
			if !w.IsValid() {
				return nil
			}
			return []schedule.TimeWindow{w}
		}
		// time_off, or custom_hours marked unavailable: the day is empty.
		return nil
	}

	var windows []schedule.TimeWindow
	for _, dh := range tech.DefaultHoursForDay(date.UTC().Weekday()) {
		if !dh.Available() {
			continue
		}
		w, err := s.parseWindow(date, dh.StartTime, dh.EndTime)
		if err != nil {
			s.logger.Warn("skipping malformed default hours",
				"technician_id", tech.ID, "date", dateKey, "error", err)
			continue
		}
		if !w.IsValid() {
			continue
		}
		windows = append(windows, w)
	}
	schedule.SortWindows(windows)
	return windows
}

func (s *AvailabilityService) parseWindow(date time.Time, startClock, endClock string) (schedule.TimeWindow, error) {
	start, err := timeutil.AtBusinessTime(s.loc, date, startClock)
	if err != nil {
		return schedule.TimeWindow{}, err
	}
	end, err := timeutil.AtBusinessTime(s.loc, date, endClock)
	if err != nil {
		return schedule.TimeWindow{}, err
	}
	return schedule.TimeWindow{Start: start, End: end}, nil
}

// ApplyLockedJobs subtracts the technician's locked jobs on targetDate from
// the given windows. Fixed-time jobs block their committed interval. On
// today, en_route/in_progress jobs block from now to their (possibly already
// running) end, so the optimizer can never retroactively shorten an ongoing
// job past the present; a job whose end is already behind now blocks nothing.
// For non-today dates these statuses block their original interval unchanged.
func (s *AvailabilityService) ApplyLockedJobs(
	windows []schedule.TimeWindow,
	lockedJobs []model.Job,
	techID int64,
	targetDate, now time.Time,
) []schedule.TimeWindow {
	isToday := timeutil.SameUTCDay(targetDate, now)

	for _, job := range lockedJobs {
		if job.AssignedTechnician == nil || *job.AssignedTechnician != techID {
			continue
		}
		block, ok := s.blockedInterval(job, targetDate, now, isToday)
		if !ok {
			continue
		}
		windows = schedule.SubtractFromWindows(windows, block)
	}
	return windows
}

func (s *AvailabilityService) blockedInterval(
	job model.Job,
	targetDate, now time.Time,
	isToday bool,
) (schedule.TimeWindow, bool) {
	switch job.Status {
	case model.JobStatusFixedTime:
		if job.FixedScheduleTime == nil || !timeutil.SameUTCDay(*job.FixedScheduleTime, targetDate) {
			return schedule.TimeWindow{}, false
		}
		start := *job.FixedScheduleTime
		return schedule.TimeWindow{Start: start, End: start.Add(job.Duration())}, true

	case model.JobStatusEnRoute, model.JobStatusInProgress:
		if job.EstimatedSched == nil || !timeutil.SameUTCDay(*job.EstimatedSched, targetDate) {
			return schedule.TimeWindow{}, false
		}
		start := *job.EstimatedSched
		end := start.Add(job.Duration())
		if !isToday {
			return schedule.TimeWindow{Start: start, End: end}, true
		}
		if !now.Before(end) {
			// Already finished; nothing left to block.
			return schedule.TimeWindow{}, false
		}
		if !now.Before(start) {
			// Ongoing: only the remainder is blocked.
			return schedule.TimeWindow{Start: now, End: end}, true
		}
		return schedule.TimeWindow{Start: start, End: end}, true
	}
	return schedule.TimeWindow{}, false
}

// FindAvailabilityGaps derives the unavailable intervals within the shift
// envelope for a technician's day.
func (s *AvailabilityService) FindAvailabilityGaps(
	techID int64,
	envelope schedule.TimeWindow,
	windows []schedule.TimeWindow,
) []schedule.Gap {
	return schedule.FindGaps(techID, envelope, windows)
}

// HasAnyWindow reports whether any technician in the list has at least one
// working window on the given date. The overflow loop probes this before
// spending an optimizer call on an empty day.
func (s *AvailabilityService) HasAnyWindow(technicians []model.Technician, date time.Time) bool {
	for _, tech := range technicians {
		if len(s.windowsForDate(tech, timeutil.StartOfUTCDay(date))) > 0 {
			return true
		}
	}
	return false
}
