package schedule

import (
	"fmt"
	"time"

	"github.com/fieldline/dispatch/internal/domain/model"
)

// SchedulableItem is one atomic unit the optimizer places: either a single
// job or a bundle of same-order jobs. The ItemID scheme ("job_{id}",
// "bundle_{orderId}") is part of the optimizer wire contract and must be
// preserved exactly.
type SchedulableItem interface {
	// ItemID is the identifier used in the optimizer payload and response.
	ItemID() string
	// JobIDs lists the constituent job ids.
	JobIDs() []int64
	// Jobs lists the constituent jobs.
	Jobs() []model.Job
	// Address is the shared service address.
	Address() *model.Address
	// Duration is the total working time.
	Duration() time.Duration
	// Priority is the urgency used by the optimizer (higher is more urgent).
	Priority() int
	// EligibleTechnicians lists technician ids that can perform the item.
	EligibleTechnicians() []int64

	schedulable()
}

// SingleJob wraps one job as a schedulable item.
type SingleJob struct {
	Job      model.Job
	Eligible []int64
}

func (s SingleJob) ItemID() string               { return fmt.Sprintf("job_%d", s.Job.ID) }
func (s SingleJob) JobIDs() []int64              { return []int64{s.Job.ID} }
func (s SingleJob) Jobs() []model.Job            { return []model.Job{s.Job} }
func (s SingleJob) Address() *model.Address      { return s.Job.Address }
func (s SingleJob) Duration() time.Duration      { return s.Job.Duration() }
func (s SingleJob) Priority() int                { return s.Job.Priority }
func (s SingleJob) EligibleTechnicians() []int64 { return s.Eligible }
func (s SingleJob) schedulable()                 {}

// Bundle is a group of same-order jobs scheduled as one block: summed
// duration, max priority, shared address.
type Bundle struct {
	OrderID  int64
	Items    []model.Job
	Eligible []int64
}

func (b Bundle) ItemID() string { return fmt.Sprintf("bundle_%d", b.OrderID) }

func (b Bundle) JobIDs() []int64 {
	ids := make([]int64, len(b.Items))
	for i, j := range b.Items {
		ids[i] = j.ID
	}
	return ids
}

func (b Bundle) Jobs() []model.Job { return b.Items }

func (b Bundle) Address() *model.Address {
	if len(b.Items) == 0 {
		return nil
	}
	return b.Items[0].Address
}

func (b Bundle) Duration() time.Duration {
	var total time.Duration
	for _, j := range b.Items {
		total += j.Duration()
	}
	return total
}

func (b Bundle) Priority() int {
	maxPriority := 0
	for _, j := range b.Items {
		if j.Priority > maxPriority {
			maxPriority = j.Priority
		}
	}
	return maxPriority
}

func (b Bundle) EligibleTechnicians() []int64 { return b.Eligible }
func (b Bundle) schedulable()                 {}

// IneligibleItem is an item no technician can perform, with the reason.
type IneligibleItem struct {
	Item   SchedulableItem
	Reason FailureReason
}
