package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fieldline/dispatch/internal/core"
	"github.com/fieldline/dispatch/internal/data"
	"github.com/fieldline/dispatch/internal/domain/model"
	"github.com/fieldline/dispatch/internal/domain/schedule"
	"github.com/fieldline/dispatch/internal/observability/metrics"
	"github.com/fieldline/dispatch/internal/observability/statsd"
	"github.com/fieldline/dispatch/internal/timeutil"
)

// ErrRunInProgress is returned when a replan run is already executing, either
// in this process or in another replica holding the lease.
var ErrRunInProgress = errors.New("replan run already in progress")

// ReplanService is the multi-pass orchestrator: one today pass plus up to
// MaxOverflowAttempts next-day passes, a scheduling-state map tracking every
// plannable job across passes, and a single batched final write.
type ReplanService struct {
	technicians core.TechnicianRepository
	jobs        core.JobRepository
	equipment   core.EquipmentRepository
	optimizer   core.OptimizerClient
	locations   core.LocationProvider
	guard       core.RunGuard

	availability *AvailabilityService
	eligibility  *EligibilityService
	payloads     *PayloadBuilder
	results      *ResultsProcessor

	cfg     core.ReplanConfig
	clock   data.TimeProvider
	logger  *slog.Logger
	metrics statsd.Sink

	running atomic.Bool
	mu      sync.Mutex
	last    *RunSummary
}

// ReplanServiceOptions holds the dependencies for NewReplanService.
type ReplanServiceOptions struct {
	Technicians core.TechnicianRepository
	Jobs        core.JobRepository
	Equipment   core.EquipmentRepository
	Optimizer   core.OptimizerClient
	Locations   core.LocationProvider
	Guard       core.RunGuard

	Availability *AvailabilityService
	Eligibility  *EligibilityService
	Payloads     *PayloadBuilder
	Results      *ResultsProcessor

	Config  core.ReplanConfig
	Clock   data.TimeProvider
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// NewReplanService creates a ReplanService.
func NewReplanService(opts ReplanServiceOptions) *ReplanService {
	if opts.Clock == nil {
		opts.Clock = &data.RealTimeProvider{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &ReplanService{
		technicians:  opts.Technicians,
		jobs:         opts.Jobs,
		equipment:    opts.Equipment,
		optimizer:    opts.Optimizer,
		locations:    opts.Locations,
		guard:        opts.Guard,
		availability: opts.Availability,
		eligibility:  opts.Eligibility,
		payloads:     opts.Payloads,
		results:      opts.Results,
		cfg:          opts.Config,
		clock:        opts.Clock,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
	}
}

// RunSummary is the reportable outcome of one replan run.
type RunSummary struct {
	RunID             string    `json:"run_id"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
	Passes            int       `json:"passes"`
	OptimizerCalls    int       `json:"optimizer_calls"`
	JobsScheduled     int       `json:"jobs_scheduled"`
	JobsPendingReview int       `json:"jobs_pending_review"`
	Error             string    `json:"error,omitempty"`
}

// Running reports whether a run is executing in this process.
func (s *ReplanService) Running() bool { return s.running.Load() }

// LastSummary returns the most recent run's summary, nil before the first run.
func (s *ReplanService) LastSummary() *RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	cp := *s.last
	return &cp
}

// Run executes one full replan. At most one run executes at a time: a second
// caller gets ErrRunInProgress, as does a caller in another replica while the
// lease is held.
func (s *ReplanService) Run(ctx context.Context) (*RunSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID)

	if s.guard != nil {
		ok, err := s.guard.TryAcquire(ctx, runID, s.cfg.RunLeaseTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire run lease: %w", err)
		}
		if !ok {
			return nil, ErrRunInProgress
		}
		defer func() {
			if err := s.guard.Release(context.WithoutCancel(ctx), runID); err != nil {
				logger.Warn("release run lease failed", "error", err)
			}
		}()
	}

	started := s.clock.Now().UTC()
	logger.InfoContext(ctx, "replan run starting")

	summary, err := s.run(ctx, logger, runID, started)
	summary.FinishedAt = s.clock.Now().UTC()

	result := metrics.ResultSuccess
	if err != nil {
		summary.Error = err.Error()
		result = metrics.ResultError
		logger.ErrorContext(ctx, "replan run failed", "error", err)
	} else {
		logger.InfoContext(ctx, "replan run finished",
			"passes", summary.Passes,
			"jobs_scheduled", summary.JobsScheduled,
			"jobs_pending_review", summary.JobsPendingReview)
	}
	metrics.EmitRun(s.metrics, metrics.RunMetric{
		Result:            result,
		Passes:            summary.Passes,
		JobsScheduled:     summary.JobsScheduled,
		JobsPendingReview: summary.JobsPendingReview,
		Duration:          summary.FinishedAt.Sub(started),
		Err:               err,
	})

	s.mu.Lock()
	s.last = summary
	s.mu.Unlock()

	if err != nil {
		return summary, err
	}
	return summary, nil
}

// runState is the working memory of one run, owned exclusively by it.
type runState struct {
	technicians []model.Technician
	lockedJobs  []model.Job
	fixedJobs   []model.Job

	jobsByID    map[int64]model.Job
	states      map[int64]*schedule.JobSchedulingState
	assignments map[int64]schedule.FinalAssignment

	// confirmedFixed holds fixed-time jobs re-confirmed on their own date that
	// have no entry in states.
	confirmedFixed map[int64]schedule.FinalAssignment

	passes         int
	optimizerCalls int
}

func (s *ReplanService) run(ctx context.Context, logger *slog.Logger, runID string, started time.Time) (*RunSummary, error) {
	summary := &RunSummary{RunID: runID, StartedAt: started}

	st, err := s.fetchAndEnrich(ctx, logger)
	if err != nil {
		return summary, err
	}

	now := s.clock.Now().UTC()
	today := timeutil.StartOfUTCDay(now)

	if len(s.openJobs(st, today)) > 0 || len(fixedJobsForDate(st.fixedJobs, today)) > 0 {
		if err := s.runPass(ctx, logger, st, today, now); err != nil {
			return s.fillSummary(summary, st), err
		}
	}

	for loop := 1; loop <= s.cfg.MaxOverflowAttempts; loop++ {
		targetDate := timeutil.AddDays(today, loop)
		open := s.openJobs(st, targetDate)
		if len(open) == 0 {
			break
		}

		techs, err := s.technicians.ActiveTechnicians(ctx)
		if err != nil {
			return s.fillSummary(summary, st), fmt.Errorf("refetch technicians: %w", err)
		}
		st.technicians = techs

		if !s.availability.HasAnyWindow(techs, targetDate) {
			dayKey := timeutil.DateKey(targetDate)
			logger.InfoContext(ctx, "no technician availability, skipping date",
				"planning_day", dayKey, "open_jobs", len(open))
			at := s.clock.Now().UTC()
			for _, job := range open {
				st.states[job.ID].RecordFailure(at, dayKey, schedule.ReasonNoTechnicianAvailability)
			}
			st.passes++
			metrics.EmitPass(s.metrics, metrics.PassMetric{
				PlanningDay: dayKey,
				Result:      metrics.ResultNoop,
			})
			continue
		}

		if err := s.runPass(ctx, logger, st, targetDate, now); err != nil {
			return s.fillSummary(summary, st), err
		}
	}

	if err := s.finalWrite(ctx, logger, st); err != nil {
		return s.fillSummary(summary, st), err
	}
	return s.fillSummary(summary, st), nil
}

// fetchAndEnrich performs the phase-0 reads in parallel and overlays live
// device positions onto technicians. A failed location fetch degrades to
// stored positions instead of failing the run.
func (s *ReplanService) fetchAndEnrich(ctx context.Context, logger *slog.Logger) (*runState, error) {
	var (
		technicians []model.Technician
		relevant    []model.Job
		fixed       []model.Job
		positions   map[string]model.DeviceLocation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		technicians, err = s.technicians.ActiveTechnicians(gctx)
		if err != nil {
			return fmt.Errorf("fetch technicians: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		relevant, err = s.jobs.RelevantJobs(gctx)
		if err != nil {
			return fmt.Errorf("fetch relevant jobs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		fixed, err = s.jobs.JobsByStatus(gctx, model.JobStatusFixedTime)
		if err != nil {
			return fmt.Errorf("fetch fixed-time jobs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if s.locations == nil {
			return nil
		}
		callCtx, cancel := context.WithTimeout(gctx, s.cfg.LocationTimeout)
		defer cancel()
		var err error
		positions, err = s.locations.CurrentLocations(callCtx)
		if err != nil {
			logger.WarnContext(gctx, "device location fetch failed, using stored positions", "error", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range technicians {
		tech := &technicians[i]
		if tech.Van == nil || tech.Van.DeviceID == nil {
			continue
		}
		if pos, ok := positions[*tech.Van.DeviceID]; ok {
			loc := pos.Location
			tech.CurrentLocation = &loc
		}
	}

	st := &runState{
		technicians:    technicians,
		fixedJobs:      fixed,
		jobsByID:       make(map[int64]model.Job, len(relevant)),
		states:         make(map[int64]*schedule.JobSchedulingState),
		assignments:    make(map[int64]schedule.FinalAssignment),
		confirmedFixed: make(map[int64]schedule.FinalAssignment),
	}
	for _, job := range relevant {
		st.jobsByID[job.ID] = job
		switch {
		case job.Status == model.JobStatusQueued:
			st.states[job.ID] = &schedule.JobSchedulingState{JobID: job.ID, LastStatus: schedule.StatusPending}
		case job.Status.IsLocked():
			st.lockedJobs = append(st.lockedJobs, job)
		}
	}

	logger.InfoContext(ctx, "replan inputs fetched",
		"technicians", len(technicians),
		"plannable_jobs", len(st.states),
		"locked_jobs", len(st.lockedJobs),
		"fixed_jobs", len(fixed))
	return st, nil
}

// openJobs returns the still-plannable jobs for a pass, sorted by id. A job
// whose status is fixed_time with a committed time strictly before the target
// date has become unreachable and is dropped.
func (s *ReplanService) openJobs(st *runState, targetDate time.Time) []model.Job {
	var out []model.Job
	for id, state := range st.states {
		if !state.Open() {
			continue
		}
		job := st.jobsByID[id]
		if job.Status == model.JobStatusFixedTime && job.FixedScheduleTime != nil &&
			job.FixedScheduleTime.Before(timeutil.StartOfUTCDay(targetDate)) {
			continue
		}
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func fixedJobsForDate(fixed []model.Job, targetDate time.Time) []model.Job {
	var out []model.Job
	for _, job := range fixed {
		if job.FixedScheduleTime != nil && timeutil.SameUTCDay(*job.FixedScheduleTime, targetDate) {
			out = append(out, job)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// runPass executes one planning pass for targetDate: bundle, eligibility,
// payload, solve, results, fixed-time confirmation.
func (s *ReplanService) runPass(
	ctx context.Context,
	logger *slog.Logger,
	st *runState,
	targetDate time.Time,
	now time.Time,
) error {
	dayKey := timeutil.DateKey(targetDate)
	passStart := s.clock.Now()
	st.passes++

	passJobs := dedupeJobs(s.openJobs(st, targetDate), fixedJobsForDate(st.fixedJobs, targetDate))
	items := BundleJobs(passJobs)

	vanEquipment, err := s.equipment.EquipmentForVans(ctx, vanIDs(st.technicians))
	if err != nil {
		return fmt.Errorf("fetch van equipment: %w", err)
	}

	resolved, err := s.eligibility.Resolve(ctx, items, st.technicians, vanEquipment)
	if err != nil {
		return fmt.Errorf("resolve eligibility: %w", err)
	}

	at := s.clock.Now().UTC()
	for _, inel := range resolved.Ineligible {
		for _, jobID := range inel.Item.JobIDs() {
			if state, ok := st.states[jobID]; ok {
				state.RecordFailure(at, dayKey, inel.Reason)
			}
		}
	}

	var outcome PassOutcome
	if len(resolved.Eligible) > 0 {
		outcome, err = s.solvePass(ctx, st, resolved.Eligible, targetDate, now, dayKey)
		if err != nil {
			metrics.EmitPass(s.metrics, metrics.PassMetric{
				PlanningDay: dayKey,
				Result:      metrics.ResultError,
				ItemsSent:   len(resolved.Eligible),
				Duration:    s.clock.Now().Sub(passStart),
				Err:         err,
			})
			return err
		}
	}

	s.confirmFixedJobs(ctx, logger, st, targetDate, dayKey)

	metrics.EmitPass(s.metrics, metrics.PassMetric{
		PlanningDay:    dayKey,
		Result:         metrics.ResultSuccess,
		ItemsSent:      len(resolved.Eligible),
		JobsScheduled:  len(outcome.Scheduled),
		JobsUnassigned: len(outcome.Unassigned),
		Duration:       s.clock.Now().Sub(passStart),
	})
	logger.InfoContext(ctx, "planning pass complete",
		"planning_day", dayKey,
		"items_sent", len(resolved.Eligible),
		"items_ineligible", len(resolved.Ineligible),
		"jobs_scheduled", len(outcome.Scheduled),
		"jobs_unassigned", len(outcome.Unassigned))
	return nil
}

func (s *ReplanService) solvePass(
	ctx context.Context,
	st *runState,
	eligible []schedule.SchedulableItem,
	targetDate, now time.Time,
	dayKey string,
) (PassOutcome, error) {
	var locked []model.Job
	if timeutil.SameUTCDay(targetDate, now) {
		locked = st.lockedJobs
	}

	built, err := s.payloads.Build(ctx, BuildPayloadParams{
		Technicians: st.technicians,
		Items:       eligible,
		LockedJobs:  locked,
		TargetDate:  targetDate,
	})
	if err != nil {
		return PassOutcome{}, fmt.Errorf("build payload: %w", err)
	}

	solveCtx, cancel := context.WithTimeout(ctx, s.cfg.OptimizerTimeout)
	defer cancel()
	st.optimizerCalls++
	resp, err := s.optimizer.Solve(solveCtx, built.Payload)
	if err != nil {
		return PassOutcome{}, fmt.Errorf("optimizer solve: %w", err)
	}

	outcome, err := s.results.Process(ctx, resp, built.ItemsByID, built.ShiftsByTechnician)
	if err != nil {
		return PassOutcome{}, fmt.Errorf("process optimizer results: %w", err)
	}

	at := s.clock.Now().UTC()
	for _, upd := range outcome.Scheduled {
		state, ok := st.states[upd.JobID]
		if !ok {
			// A fixed-time job placed by the solver; its own confirmation wins.
			continue
		}
		if !state.Open() {
			s.logger.Warn("solver placed a job already resolved this run",
				"job_id", upd.JobID, "last_status", state.LastStatus)
			continue
		}
		state.RecordSuccess(at, dayKey, upd.TechnicianID, upd.EstimatedSched)
		st.assignments[upd.JobID] = schedule.FinalAssignment{
			TechnicianID:  upd.TechnicianID,
			ScheduledTime: upd.EstimatedSched,
		}
	}

	reason := ClassifyUnassigned(resp.Message)
	for _, item := range outcome.Unassigned {
		for _, jobID := range item.JobIDs() {
			if state, ok := st.states[jobID]; ok {
				state.RecordFailure(at, dayKey, reason)
			}
		}
	}
	return outcome, nil
}

// confirmFixedJobs re-asserts every fixed-time job committed to targetDate:
// its own technician and time override whatever the solver returned.
func (s *ReplanService) confirmFixedJobs(
	ctx context.Context,
	logger *slog.Logger,
	st *runState,
	targetDate time.Time,
	dayKey string,
) {
	at := s.clock.Now().UTC()
	for _, job := range fixedJobsForDate(st.fixedJobs, targetDate) {
		if job.AssignedTechnician == nil {
			if state, ok := st.states[job.ID]; ok {
				state.RecordFailure(at, dayKey, schedule.ReasonFixedTimeUnassigned)
				continue
			}
			logger.WarnContext(ctx, "fixed-time job has no assigned technician, cannot confirm",
				"job_id", job.ID, "planning_day", dayKey)
			continue
		}

		assignment := schedule.FinalAssignment{
			TechnicianID:  *job.AssignedTechnician,
			ScheduledTime: job.FixedScheduleTime.UTC(),
		}
		if state, ok := st.states[job.ID]; ok {
			if state.LastStatus == schedule.StatusFailedPersistent {
				continue
			}
			state.RecordSuccess(at, dayKey, assignment.TechnicianID, assignment.ScheduledTime)
			st.assignments[job.ID] = assignment
			continue
		}
		st.confirmedFixed[job.ID] = assignment
	}
}

// finalWrite builds one update per tracked job and applies them in a single
// batched call.
func (s *ReplanService) finalWrite(ctx context.Context, logger *slog.Logger, st *runState) error {
	updates := make([]model.JobUpdate, 0, len(st.states)+len(st.confirmedFixed))

	for _, id := range sortedKeys(st.states) {
		state := st.states[id]
		if state.LastStatus == schedule.StatusScheduled {
			assignment := st.assignments[id]
			status := model.JobStatusQueued
			if st.jobsByID[id].Status == model.JobStatusFixedTime {
				status = model.JobStatusFixedTime
			}
			tech := assignment.TechnicianID
			sched := assignment.ScheduledTime
			updates = append(updates, model.JobUpdate{JobID: id, Data: model.JobUpdateData{
				Status:             status,
				AssignedTechnician: &tech,
				EstimatedSched:     &sched,
			}})
			continue
		}
		updates = append(updates, model.JobUpdate{JobID: id, Data: model.JobUpdateData{
			Status: model.JobStatusPendingReview,
		}})
	}

	for _, id := range sortedKeys(st.confirmedFixed) {
		assignment := st.confirmedFixed[id]
		tech := assignment.TechnicianID
		sched := assignment.ScheduledTime
		updates = append(updates, model.JobUpdate{JobID: id, Data: model.JobUpdateData{
			Status:             model.JobStatusFixedTime,
			AssignedTechnician: &tech,
			EstimatedSched:     &sched,
		}})
	}

	if len(updates) == 0 {
		logger.InfoContext(ctx, "no job updates to write")
		return nil
	}
	if err := s.jobs.UpdateJobs(ctx, updates); err != nil {
		return fmt.Errorf("final batched write (%d updates): %w", len(updates), err)
	}
	logger.InfoContext(ctx, "final batched write applied", "updates", len(updates))
	return nil
}

func (s *ReplanService) fillSummary(summary *RunSummary, st *runState) *RunSummary {
	summary.Passes = st.passes
	summary.OptimizerCalls = st.optimizerCalls
	for _, state := range st.states {
		if state.LastStatus == schedule.StatusScheduled {
			summary.JobsScheduled++
		} else {
			summary.JobsPendingReview++
		}
	}
	summary.JobsScheduled += len(st.confirmedFixed)
	return summary
}

// dedupeJobs merges the open set with the target date's fixed jobs, fixed-job
// data taking precedence on id collision.
func dedupeJobs(open, fixed []model.Job) []model.Job {
	fixedIDs := make(map[int64]bool, len(fixed))
	for _, job := range fixed {
		fixedIDs[job.ID] = true
	}
	out := make([]model.Job, 0, len(open)+len(fixed))
	for _, job := range open {
		if !fixedIDs[job.ID] {
			out = append(out, job)
		}
	}
	out = append(out, fixed...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func vanIDs(technicians []model.Technician) []int64 {
	seen := make(map[int64]bool)
	var out []int64
	for _, tech := range technicians {
		if tech.AssignedVanID != nil && !seen[*tech.AssignedVanID] {
			seen[*tech.AssignedVanID] = true
			out = append(out, *tech.AssignedVanID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
