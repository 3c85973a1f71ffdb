// Package task implements the asynchronous task execution subsystem: a
// bounded worker pool (Executor) that runs submitted functions, tracks each
// one through an explicit lifecycle (Handle), supports cooperative
// cancellation by id (Registry), and periodically audits its own bookkeeping
// (Janitor).
//
// Cancellation is cooperative, never preemptive: Cancel sets a flag on the
// task's Handle and the running function is expected to poll it at safe
// points. A task that ignores the flag runs to completion normally.
package task
