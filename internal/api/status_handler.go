// Package api exposes read-only observability endpoints for the task pool:
// a health probe, a PoolInfo snapshot, and Prometheus metrics.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phrazzld/taskpool/internal/task"
)

// PoolInfoProvider provides pool statistics snapshots.
type PoolInfoProvider interface {
	PoolInfo() task.PoolInfo
}

// PoolInfoResponse is the JSON shape of a pool snapshot.
type PoolInfoResponse struct {
	ActiveCount    int    `json:"active_count"`
	QueuedCount    int    `json:"queued_count"`
	MaxWorkers     int    `json:"max_workers"`
	SubmittedTotal uint64 `json:"submitted_total"`
	CompletedTotal uint64 `json:"completed_total"`
	FailedTotal    uint64 `json:"failed_total"`
	CancelledTotal uint64 `json:"cancelled_total"`
}

// StatusHandler serves the observability endpoints.
type StatusHandler struct {
	pool   PoolInfoProvider
	logger *slog.Logger
}

// NewStatusHandler creates a StatusHandler with the given dependencies.
func NewStatusHandler(pool PoolInfoProvider, logger *slog.Logger) *StatusHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusHandler{
		pool:   pool,
		logger: logger,
	}
}

// Routes returns the router for the status endpoints.
func (h *StatusHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", h.Health)
	r.Get("/pool", h.Pool)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Health handles the /healthz endpoint.
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"})
}

// Pool handles the /pool endpoint with a consistent PoolInfo snapshot.
func (h *StatusHandler) Pool(w http.ResponseWriter, r *http.Request) {
	info := h.pool.PoolInfo()
	h.writeJSON(w, PoolInfoResponse{
		ActiveCount:    info.ActiveCount,
		QueuedCount:    info.QueuedCount,
		MaxWorkers:     info.MaxWorkers,
		SubmittedTotal: info.SubmittedTotal,
		CompletedTotal: info.CompletedTotal,
		FailedTotal:    info.FailedTotal,
		CancelledTotal: info.CancelledTotal,
	})
}

func (h *StatusHandler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
