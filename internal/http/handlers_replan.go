package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fieldline/dispatch/internal/service"
)

// ReplanRunner is the orchestrator surface the trigger endpoint needs.
type ReplanRunner interface {
	Run(ctx context.Context) (*service.RunSummary, error)
	Running() bool
	LastSummary() *service.RunSummary
}

// ReplanHandlers exposes the replan trigger and status endpoints.
type ReplanHandlers struct {
	Svc    ReplanRunner
	Logger *slog.Logger
}

// NewReplanHandlers creates ReplanHandlers.
func NewReplanHandlers(svc ReplanRunner, logger *slog.Logger) *ReplanHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReplanHandlers{Svc: svc, Logger: logger}
}

type triggerResponse struct {
	Status string `json:"status"`
}

// Trigger starts a replan run in the background and answers 202. An already
// running replan (in this process or holding the cross-replica lease) answers
// 429; the caller retries after the current run finishes.
func (h *ReplanHandlers) Trigger(w http.ResponseWriter, r *http.Request) {
	if h.Svc.Running() {
		WriteError(w, ErrorParams{
			Code:    http.StatusTooManyRequests,
			ErrCode: "run_in_progress",
			Err:     service.ErrRunInProgress,
		})
		return
	}

	// The run outlives the trigger request.
	go func() {
		if _, err := h.Svc.Run(context.WithoutCancel(r.Context())); err != nil {
			if errors.Is(err, service.ErrRunInProgress) {
				h.Logger.Info("replan trigger lost the race to a concurrent run")
				return
			}
			h.Logger.Error("replan run failed", "error", err)
		}
	}()

	WriteJSON(w, http.StatusAccepted, triggerResponse{Status: "accepted"})
}

type statusResponse struct {
	Running bool                `json:"running"`
	LastRun *service.RunSummary `json:"last_run,omitempty"`
}

// Status reports whether a run is executing and the last run's summary.
func (h *ReplanHandlers) Status(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, statusResponse{
		Running: h.Svc.Running(),
		LastRun: h.Svc.LastSummary(),
	})
}
