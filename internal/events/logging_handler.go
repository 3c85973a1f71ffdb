package events

import (
	"context"
	"log/slog"

	"github.com/phrazzld/taskpool/internal/redact"
)

// LoggingHandler is an EventHandler that records every task's terminal
// transition as a structured audit line. It gives operators a lifecycle
// trail even when no other consumer is registered.
type LoggingHandler struct {
	logger *slog.Logger
}

// NewLoggingHandler creates a LoggingHandler writing through logger.
func NewLoggingHandler(logger *slog.Logger) *LoggingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingHandler{
		logger: logger.With("component", "lifecycle_audit"),
	}
}

// HandleEvent logs one lifecycle event. Failures and cancellations include
// the task's error; it never returns an error itself.
func (h *LoggingHandler) HandleEvent(_ context.Context, event *TaskLifecycleEvent) error {
	attrs := []any{
		"event_id", event.ID,
		"task_id", event.TaskID,
		"state", event.State,
		"occurred_at", event.OccurredAt,
	}
	if event.Err != nil {
		attrs = append(attrs, "error", redact.Error(event.Err))
	}
	h.logger.Info("task lifecycle", attrs...)
	return nil
}
