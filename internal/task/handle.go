package task

import (
	"sync"
	"sync/atomic"
	"time"
)

// State represents the current lifecycle state of a task
type State int32

// Possible task states. Transitions are one-directional:
// Pending -> {Running, Cancelled}; Running -> {Completed, Failed, Cancelled}.
const (
	StatePending State = iota
	StateRunning
	StateCompleted
	StateFailed
	StateCancelled
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is one of the terminal states.
// Terminal states never transition again.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// Handle represents one submitted unit of work: its identity, lifecycle
// state, cancellation flag, and completion callbacks.
//
// The running task function receives the Handle and is expected to poll
// CancelRequested at safe points; the framework never forcibly interrupts
// arbitrary code.
type Handle struct {
	id string

	// timeout is advisory: recorded for diagnostics, never enforced.
	timeout time.Duration

	// cancelRequested is set at most once to true and polled voluntarily
	// by the task function.
	cancelRequested atomic.Bool

	mu     sync.Mutex
	state  State
	result any
	err    error

	// done is closed exactly once, on the terminal transition.
	done chan struct{}

	// Completion callbacks, fired exactly once, outside all internal locks.
	onCompleted func(result any)
	onFailed    func(err error)
}

func newHandle(id string, timeout time.Duration, onCompleted func(any), onFailed func(error)) *Handle {
	return &Handle{
		id:          id,
		timeout:     timeout,
		done:        make(chan struct{}),
		onCompleted: onCompleted,
		onFailed:    onFailed,
	}
}

// ID returns the task's unique identifier.
func (h *Handle) ID() string {
	return h.id
}

// Timeout returns the advisory timeout recorded at submission time.
func (h *Handle) Timeout() time.Duration {
	return h.timeout
}

// State returns the task's current lifecycle state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// CancelRequested reports whether cancellation has been requested. Task
// functions should poll this at safe points and return ErrTaskCancelled to
// acknowledge.
func (h *Handle) CancelRequested() bool {
	return h.cancelRequested.Load()
}

// Done returns a channel that is closed when the task reaches a terminal
// state.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Result returns the task's result and error. It is only meaningful after
// Done is closed; before that both values are zero.
func (h *Handle) Result() (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result, h.err
}

// requestCancel raises the cancellation flag. The flag is one-way.
func (h *Handle) requestCancel() {
	h.cancelRequested.Store(true)
}

// tryStart moves the handle from Pending to Running. It returns false if the
// task is no longer Pending (already started, or cancelled before running).
func (h *Handle) tryStart() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != StatePending {
		return false
	}
	h.state = StateRunning
	return true
}

// cancelIfPending moves Pending straight to Cancelled, so the task never
// runs. It returns false if the task has already started or finished.
func (h *Handle) cancelIfPending() bool {
	h.mu.Lock()
	if h.state != StatePending {
		h.mu.Unlock()
		return false
	}
	h.state = StateCancelled
	h.err = ErrTaskCancelled
	onFailed := h.onFailed
	h.mu.Unlock()

	close(h.done)
	if onFailed != nil {
		onFailed(ErrTaskCancelled)
	}
	return true
}

// finish applies a terminal transition, closes the done channel, and fires
// the matching callback outside the lock to avoid reentrancy deadlocks.
// It returns false if the handle was already terminal; terminal states are
// write-once.
func (h *Handle) finish(s State, result any, err error) bool {
	h.mu.Lock()
	if h.state.Terminal() {
		h.mu.Unlock()
		return false
	}
	h.state = s
	h.result = result
	h.err = err
	onCompleted := h.onCompleted
	onFailed := h.onFailed
	h.mu.Unlock()

	close(h.done)

	switch {
	case s == StateCompleted && onCompleted != nil:
		onCompleted(result)
	case (s == StateFailed || s == StateCancelled) && onFailed != nil:
		onFailed(err)
	}
	return true
}
