// Package metrics provides standardised metric emission helpers for the
// replanner's StatsD sink.
package metrics

import (
	"time"

	obserrors "github.com/fieldline/dispatch/internal/observability/errors"
	"github.com/fieldline/dispatch/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// PassMetric captures one planning pass for metric emission.
type PassMetric struct {
	PlanningDay    string
	Result         string
	ItemsSent      int
	JobsScheduled  int
	JobsUnassigned int
	Duration       time.Duration
	Err            error
}

// EmitPass emits standardised per-pass planning metrics.
func EmitPass(sink statsd.Sink, in PassMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"planning_day": in.PlanningDay,
		"result":       in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("replan.pass", 1, tags)
	if in.ItemsSent > 0 {
		sink.Count("replan.items_sent", int64(in.ItemsSent), tags)
	}
	if in.JobsScheduled > 0 {
		sink.Count("replan.jobs_scheduled", int64(in.JobsScheduled), tags)
	}
	if in.JobsUnassigned > 0 {
		sink.Count("replan.jobs_unassigned", int64(in.JobsUnassigned), tags)
	}
	if in.Duration > 0 {
		sink.Timing("replan.pass_duration", in.Duration, CloneTags(tags))
	}
}

// RunMetric captures a whole replan run.
type RunMetric struct {
	Result            string
	Passes            int
	JobsScheduled     int
	JobsPendingReview int
	Duration          time.Duration
	Err               error
}

// EmitRun emits standardised per-run planning metrics.
func EmitRun(sink statsd.Sink, in RunMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{"result": in.Result}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("replan.run", 1, tags)
	sink.Count("replan.run_passes", int64(in.Passes), tags)
	sink.Gauge("replan.jobs_scheduled_last_run", float64(in.JobsScheduled), nil)
	sink.Gauge("replan.jobs_pending_review_last_run", float64(in.JobsPendingReview), nil)
	if in.Duration > 0 {
		sink.Timing("replan.run_duration", in.Duration, CloneTags(tags))
	}
	if in.Err == nil {
		sink.Gauge("replan.last_success_epoch", float64(time.Now().Unix()), nil)
	}
}

// CacheMetric captures one bulk travel-time lookup.
type CacheMetric struct {
	Mode   string
	Hits   int
	Misses int
	Errors int
}

// EmitTravelCache emits hit/miss counters for the travel-time cache.
func EmitTravelCache(sink statsd.Sink, in CacheMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{"mode": in.Mode}
	if in.Hits > 0 {
		sink.Count("travel_cache.hit", int64(in.Hits), tags)
	}
	if in.Misses > 0 {
		sink.Count("travel_cache.miss", int64(in.Misses), tags)
	}
	if in.Errors > 0 {
		sink.Count("travel_cache.provider_error", int64(in.Errors), tags)
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
