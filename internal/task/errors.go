package task

import "errors"

// Common errors returned by the Executor
var (
	// ErrExecutorClosed is returned by Submit after Shutdown has been called.
	ErrExecutorClosed = errors.New("executor is shut down")

	// ErrNilTask is returned by Submit when the task function is nil.
	ErrNilTask = errors.New("task function is nil")

	// ErrTaskCancelled is the error a task function returns to report that it
	// observed the cancellation flag and exited early. It is also the error
	// stored on a Handle that is cancelled before it ever runs.
	ErrTaskCancelled = errors.New("task cancelled")
)
