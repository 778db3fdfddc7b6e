// Package service implements the replanning business logic: availability,
// bundling, eligibility, payload assembly, results processing, and the
// multi-pass orchestrator.
package service

import (
	"sort"

	"github.com/fieldline/dispatch/internal/domain/model"
	"github.com/fieldline/dispatch/internal/domain/schedule"
)

// BundleJobs groups the jobs of one pass into schedulable items: jobs sharing
// an order become one atomic bundle, everything else is a single item.
// Fixed-time jobs are never bundled, whatever their order; moving them as part
// of a block would move their committed start.
func BundleJobs(jobs []model.Job) []schedule.SchedulableItem {
	var items []schedule.SchedulableItem

	byOrder := make(map[int64][]model.Job)
	var orderIDs []int64
	for _, job := range jobs {
		if job.Status == model.JobStatusFixedTime {
			items = append(items, schedule.SingleJob{Job: job})
			continue
		}
		if _, seen := byOrder[job.OrderID]; !seen {
			orderIDs = append(orderIDs, job.OrderID)
		}
		byOrder[job.OrderID] = append(byOrder[job.OrderID], job)
	}

	// Deterministic output order keeps payloads and tests stable.
	sort.Slice(orderIDs, func(i, j int) bool { return orderIDs[i] < orderIDs[j] })

	for _, orderID := range orderIDs {
		group := byOrder[orderID]
		if len(group) == 1 {
			items = append(items, schedule.SingleJob{Job: group[0]})
			continue
		}
		items = append(items, schedule.Bundle{OrderID: orderID, Items: group})
	}
	return items
}
