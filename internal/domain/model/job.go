// Package model defines the core data types used throughout the dispatch replanner.
package model

import (
	"fmt"
	"strings"
	"time"
)

// JobStatus represents the current status of a service job.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobStatus string

const (
	// JobStatusQueued indicates a job is waiting to be scheduled.
	JobStatusQueued JobStatus = "queued"
	// JobStatusEnRoute indicates the assigned technician is driving to the job.
	JobStatusEnRoute JobStatus = "en_route"
	// JobStatusInProgress indicates the job is being worked right now.
	JobStatusInProgress JobStatus = "in_progress"
	// JobStatusFixedTime indicates the job has a customer-committed start time
	// that the planner must never move.
	JobStatusFixedTime JobStatus = "fixed_time"
	// JobStatusPendingReview indicates the planner could not place the job and
	// a human needs to look at it.
	JobStatusPendingReview JobStatus = "pending_review"
	// JobStatusCompleted indicates the job is done.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusCancelled indicates the job was cancelled.
	JobStatusCancelled JobStatus = "cancelled"
)

// Valid returns true if the JobStatus is a known value.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusQueued, JobStatusEnRoute, JobStatusInProgress, JobStatusFixedTime,
		JobStatusPendingReview, JobStatusCompleted, JobStatusCancelled:
		return true
	}
	return false
}

// UnmarshalText implements encoding.TextUnmarshaler so the status can be
// parsed from env and database values.
func (s *JobStatus) UnmarshalText(text []byte) error {
	v := JobStatus(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid JobStatus: %q", string(text))
	}
	*s = v
	return nil
}

// IsLocked reports whether the job's time on its technician's day is not
// re-planned: en_route, in_progress, and fixed_time jobs stay where they are.
func (s JobStatus) IsLocked() bool {
	return s == JobStatusEnRoute || s == JobStatusInProgress || s == JobStatusFixedTime
}

// RelevantJobStatuses are the statuses the replanner reads at the start of a run.
// Jobs with a NULL status are treated as relevant as well.
func RelevantJobStatuses() []JobStatus {
	return []JobStatus{JobStatusQueued, JobStatusEnRoute, JobStatusInProgress, JobStatusFixedTime}
}

// Job represents a single service job against one vehicle at one address.
// Duration is whole minutes. Higher Priority is more urgent.
type Job struct {
	ID                 int64      `json:"id"                              db:"id"`
	OrderID            int64      `json:"order_id"                       db:"order_id"`
	ServiceID          *int64     `json:"service_id,omitempty"           db:"service_id"`
	AddressID          int64      `json:"address_id"                     db:"address_id"`
	Priority           int        `json:"priority"                       db:"priority"`
	Status             JobStatus  `json:"status"                         db:"status"`
	JobDuration        int        `json:"job_duration"                   db:"job_duration"`
	AssignedTechnician *int64     `json:"assigned_technician,omitempty"  db:"assigned_technician"`
	EstimatedSched     *time.Time `json:"estimated_sched,omitempty"      db:"estimated_sched"`
	FixedScheduleTime  *time.Time `json:"fixed_schedule_time,omitempty"  db:"fixed_schedule_time"`
	FixedAssignment    bool       `json:"fixed_assignment"               db:"fixed_assignment"`

	// Joined data, populated by the read side.
	Address *Address `json:"address,omitempty"`
	Order   *Order   `json:"order,omitempty"`
	Service *Service `json:"service,omitempty"`
}

// Duration returns the job duration as a time.Duration.
func (j Job) Duration() time.Duration {
	return time.Duration(j.JobDuration) * time.Minute
}

// JobUpdate is one element of the final batched write: the fields of a single
// job the run is allowed to mutate. Nil pointers write SQL NULL.
type JobUpdate struct {
	JobID int64
	Data  JobUpdateData
}

// JobUpdateData is the mutable subset of a job row.
type JobUpdateData struct {
	Status             JobStatus
	AssignedTechnician *int64
	EstimatedSched     *time.Time
}

// GroupKey returns a deterministic key identifying identical payloads, so the
// write side can batch updates that set the same values.
func (d JobUpdateData) GroupKey() string {
	tech := "null"
	if d.AssignedTechnician != nil {
		tech = fmt.Sprintf("%d", *d.AssignedTechnician)
	}
	sched := "null"
	if d.EstimatedSched != nil {
		sched = d.EstimatedSched.UTC().Format(time.RFC3339)
	}
	return string(d.Status) + "|" + tech + "|" + sched
}
