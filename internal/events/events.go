package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Terminal task states carried on lifecycle events.
const (
	TaskCompleted = "completed"
	TaskFailed    = "failed"
	TaskCancelled = "cancelled"
)

// TaskLifecycleEvent notifies interested components that a task reached a
// terminal state. It carries everything a consumer needs without a direct
// dependency on the task package.
type TaskLifecycleEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID

	// TaskID is the finished task's identifier
	TaskID string

	// State is the terminal state: TaskCompleted, TaskFailed or TaskCancelled
	State string

	// Result holds the task's result for completed tasks, nil otherwise
	Result any

	// Err holds the task's error for failed and cancelled tasks, nil otherwise
	Err error

	// OccurredAt is the timestamp when the event was created
	OccurredAt time.Time
}

// NewTaskLifecycleEvent creates an event for one terminal transition.
func NewTaskLifecycleEvent(taskID, state string, result any, err error) *TaskLifecycleEvent {
	return &TaskLifecycleEvent{
		ID:         uuid.New(),
		TaskID:     taskID,
		State:      state,
		Result:     result,
		Err:        err,
		OccurredAt: time.Now(),
	}
}

// EventHandler defines an interface for components that consume lifecycle
// events. Handlers are responsible for processing events and taking
// appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskLifecycleEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows the executor to publish events without direct knowledge of
// handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *TaskLifecycleEvent) error
}
