package schedule

import "time"

// SchedulingStatus is the in-run state of one job's scheduling attempt.
type SchedulingStatus string

const (
	// StatusPending means the job has not been placed yet.
	StatusPending SchedulingStatus = "pending"
	// StatusScheduled means a pass placed the job; later passes leave it alone.
	StatusScheduled SchedulingStatus = "scheduled"
	// StatusFailedTransient means the last attempt failed for a reason that
	// may resolve on a later day.
	StatusFailedTransient SchedulingStatus = "failed_transient"
	// StatusFailedPersistent means no later pass can succeed; the job goes to
	// review without further attempts.
	StatusFailedPersistent SchedulingStatus = "failed_persistent"
)

// FailureReason classifies why an attempt did not place a job.
type FailureReason string

const (
	// ReasonNoEligibleTechEquipment: no van carries the required equipment. Persistent.
	ReasonNoEligibleTechEquipment FailureReason = "NO_ELIGIBLE_TECHNICIAN_EQUIPMENT"
	// ReasonNoAssignedVan: the only candidate technician has no van. Persistent.
	ReasonNoAssignedVan FailureReason = "NO_ASSIGNED_VAN"
	// ReasonFixedTimeUnassigned: a fixed-time job carries no committed
	// technician, so no pass can confirm it. Persistent.
	ReasonFixedTimeUnassigned FailureReason = "FIXED_TIME_UNASSIGNED"
	// ReasonOptimizerTimeConstraint: the solver could not meet a time constraint.
	ReasonOptimizerTimeConstraint FailureReason = "OPTIMIZER_TIME_CONSTRAINT"
	// ReasonOptimizerCapacityConstraint: the solver ran out of capacity.
	ReasonOptimizerCapacityConstraint FailureReason = "OPTIMIZER_CAPACITY_CONSTRAINT"
	// ReasonOptimizerOther: the solver left the item unassigned without detail.
	ReasonOptimizerOther FailureReason = "OPTIMIZER_OTHER"
	// ReasonNoTechnicianAvailability: nobody has a window on the target date.
	ReasonNoTechnicianAvailability FailureReason = "NO_TECHNICIAN_AVAILABILITY"
	// ReasonUnknown is the fallback classification.
	ReasonUnknown FailureReason = "UNKNOWN"
)

// IsPersistent reports whether the reason can never resolve by retrying on a
// later day. Equipment, missing-van, and unassigned fixed-time failures qualify.
func (r FailureReason) IsPersistent() bool {
	return r == ReasonNoEligibleTechEquipment ||
		r == ReasonNoAssignedVan ||
		r == ReasonFixedTimeUnassigned
}

// SchedulingAttempt records one try at placing a job during a run.
type SchedulingAttempt struct {
	Timestamp            time.Time     `json:"timestamp"`
	PlanningDay          string        `json:"planning_day"` // YYYY-MM-DD target date of the pass
	Success              bool          `json:"success"`
	FailureReason        FailureReason `json:"failure_reason,omitempty"`
	AssignedTechnicianID *int64        `json:"assigned_technician_id,omitempty"`
	AssignedTime         *time.Time    `json:"assigned_time,omitempty"`
}

// JobSchedulingState tracks one job across the passes of a run.
type JobSchedulingState struct {
	JobID      int64               `json:"job_id"`
	Attempts   []SchedulingAttempt `json:"attempts"`
	LastStatus SchedulingStatus    `json:"last_status"`
}

// Open reports whether the job is still waiting to be placed.
func (s *JobSchedulingState) Open() bool {
	return s.LastStatus == StatusPending || s.LastStatus == StatusFailedTransient
}

// RecordSuccess appends a successful attempt and moves the job to scheduled.
func (s *JobSchedulingState) RecordSuccess(at time.Time, planningDay string, techID int64, scheduled time.Time) {
	s.Attempts = append(s.Attempts, SchedulingAttempt{
		Timestamp:            at,
		PlanningDay:          planningDay,
		Success:              true,
		AssignedTechnicianID: &techID,
		AssignedTime:         &scheduled,
	})
	s.LastStatus = StatusScheduled
}

// RecordFailure appends a failed attempt and classifies the job as transient
// or persistent. A job already failed persistently stays persistent.
func (s *JobSchedulingState) RecordFailure(at time.Time, planningDay string, reason FailureReason) {
	s.Attempts = append(s.Attempts, SchedulingAttempt{
		Timestamp:     at,
		PlanningDay:   planningDay,
		Success:       false,
		FailureReason: reason,
	})
	if s.LastStatus == StatusFailedPersistent {
		return
	}
	if reason.IsPersistent() {
		s.LastStatus = StatusFailedPersistent
		return
	}
	s.LastStatus = StatusFailedTransient
}

// FinalAssignment is the outcome for a scheduled job: who does it and when.
type FinalAssignment struct {
	TechnicianID  int64     `json:"technician_id"`
	ScheduledTime time.Time `json:"scheduled_time"`
}
