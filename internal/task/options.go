package task

import "time"

// submitOptions collects per-submission settings.
type submitOptions struct {
	timeout     time.Duration
	onCompleted func(result any)
	onFailed    func(err error)
}

// SubmitOption configures a single submission.
type SubmitOption func(*submitOptions)

// WithTimeout records an advisory timeout on the task's Handle, replacing
// the executor default. The timeout is explicit and named here on purpose:
// it is never inferred from the task function's arguments, and it is stored
// for diagnostics only, never preemptively enforced.
func WithTimeout(d time.Duration) SubmitOption {
	return func(o *submitOptions) {
		o.timeout = d
	}
}

// WithOnCompleted sets the callback fired once when the task completes
// successfully. It runs outside all executor locks.
func WithOnCompleted(fn func(result any)) SubmitOption {
	return func(o *submitOptions) {
		o.onCompleted = fn
	}
}

// WithOnFailed sets the callback fired once when the task fails or is
// cancelled; on cancellation it receives ErrTaskCancelled. It runs outside
// all executor locks.
func WithOnFailed(fn func(err error)) SubmitOption {
	return func(o *submitOptions) {
		o.onFailed = fn
	}
}
