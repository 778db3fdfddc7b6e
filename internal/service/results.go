package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fieldline/dispatch/internal/domain/optimize"
	"github.com/fieldline/dispatch/internal/domain/schedule"
)

// ScheduledJobUpdate is one job placement extracted from an optimizer route.
// Every job in a bundle shares the bundle's stop start time.
type ScheduledJobUpdate struct {
	JobID          int64
	TechnicianID   int64
	EstimatedSched time.Time
}

// PassOutcome is the interpreted optimizer response for one pass.
type PassOutcome struct {
	Scheduled  []ScheduledJobUpdate
	Unassigned []schedule.SchedulableItem
}

// ResultsProcessor translates optimizer responses back into job placements.
type ResultsProcessor struct {
	logger *slog.Logger
}

// NewResultsProcessor creates a ResultsProcessor.
func NewResultsProcessor(logger *slog.Logger) *ResultsProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultsProcessor{logger: logger}
}

// Process maps the response's routes and unassigned list back onto the items
// that were sent. An error status fails the whole pass. Item ids the solver
// echoes that were never sent are logged and dropped; sent items the solver
// never mentions are treated as unassigned. An item echoed in more than one
// stop keeps its first placement, so every job in a bundle shares one start.
// Placements outside the technician's shift envelope are accepted with a
// warning rather than silently.
func (p *ResultsProcessor) Process(
	ctx context.Context,
	resp *optimize.Response,
	itemsByID map[string]schedule.SchedulableItem,
	shifts map[int64]schedule.TimeWindow,
) (PassOutcome, error) {
	if resp.Status == optimize.StatusError {
		return PassOutcome{}, fmt.Errorf("optimizer returned error: %s", resp.Message)
	}

	var outcome PassOutcome
	accounted := make(map[string]bool, len(itemsByID))

	for _, route := range resp.Routes {
		for _, stop := range route.Stops {
			item, ok := itemsByID[stop.ItemID]
			if !ok {
				p.logger.WarnContext(ctx, "optimizer returned unknown item id",
					"item_id", stop.ItemID, "technician_id", route.TechnicianID)
				continue
			}
			start, err := time.Parse(time.RFC3339, stop.StartTimeISO)
			if err != nil {
				p.logger.WarnContext(ctx, "optimizer stop has unparseable start time, item treated as unassigned",
					"item_id", stop.ItemID, "start_time", stop.StartTimeISO, "error", err)
				continue
			}
			if accounted[stop.ItemID] {
				p.logger.WarnContext(ctx, "optimizer placed item more than once, keeping first placement",
					"item_id", stop.ItemID, "technician_id", route.TechnicianID)
				continue
			}
			p.checkShift(ctx, route.TechnicianID, item, start.UTC(), shifts)
			accounted[stop.ItemID] = true
			for _, jobID := range item.JobIDs() {
				outcome.Scheduled = append(outcome.Scheduled, ScheduledJobUpdate{
					JobID:          jobID,
					TechnicianID:   route.TechnicianID,
					EstimatedSched: start.UTC(),
				})
			}
		}
	}

	for _, id := range resp.UnassignedItemIDs {
		item, ok := itemsByID[id]
		if !ok {
			p.logger.WarnContext(ctx, "optimizer reported unknown unassigned item id", "item_id", id)
			continue
		}
		if accounted[id] {
			continue
		}
		accounted[id] = true
		outcome.Unassigned = append(outcome.Unassigned, item)
	}

	for id, item := range itemsByID {
		if !accounted[id] {
			p.logger.WarnContext(ctx, "item missing from optimizer response, treated as unassigned",
				"item_id", id)
			outcome.Unassigned = append(outcome.Unassigned, item)
		}
	}
	return outcome, nil
}

// checkShift warns when a placement does not fit inside the technician's
// working envelope. The placement still stands; the warning surfaces that the
// solver bent a constraint so a dispatcher can review the assignment.
func (p *ResultsProcessor) checkShift(
	ctx context.Context,
	techID int64,
	item schedule.SchedulableItem,
	start time.Time,
	shifts map[int64]schedule.TimeWindow,
) {
	shift, ok := shifts[techID]
	if !ok {
		return
	}
	end := start.Add(item.Duration())
	if start.Before(shift.Start) || end.After(shift.End) {
		p.logger.WarnContext(ctx, "optimizer placed item outside technician shift",
			"item_id", item.ItemID(), "technician_id", techID,
			"start", start, "end", end,
			"shift_start", shift.Start, "shift_end", shift.End)
	}
}

// ClassifyUnassigned maps the optimizer's free-text message to a failure
// reason for unassigned items.
func ClassifyUnassigned(message string) schedule.FailureReason {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "time"):
		return schedule.ReasonOptimizerTimeConstraint
	case strings.Contains(lower, "capacity"):
		return schedule.ReasonOptimizerCapacityConstraint
	default:
		return schedule.ReasonOptimizerOther
	}
}
