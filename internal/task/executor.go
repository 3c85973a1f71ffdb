package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskpool/internal/events"
	"github.com/phrazzld/taskpool/internal/redact"
)

// TaskFunc is a unit of work. The context is cancelled when the executor
// shuts down; the Handle is the task's own, so the function can poll
// h.CancelRequested() at safe points and return ErrTaskCancelled to
// acknowledge a cancellation request.
type TaskFunc func(ctx context.Context, h *Handle) (any, error)

// Config holds configuration for the Executor. Values are fixed for the
// executor's lifetime; there is no hot reload.
type Config struct {
	// MaxWorkers caps execution concurrency. Submissions beyond it queue
	// FIFO and run as workers free up.
	MaxWorkers int

	// DefaultTaskTimeout is the advisory timeout recorded on handles
	// submitted without WithTimeout. It is diagnostic only.
	DefaultTaskTimeout time.Duration

	// JanitorInterval is how often the registry consistency sweep runs.
	JanitorInterval time.Duration

	// ShutdownGrace bounds how long Shutdown waits for in-flight tasks.
	ShutdownGrace time.Duration
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		MaxWorkers:         4,
		DefaultTaskTimeout: 300 * time.Second,
		JanitorInterval:    30 * time.Second,
		ShutdownGrace:      10 * time.Second,
	}
}

// PoolInfo is a read-only snapshot of pool health, taken under a single lock
// so the counts are mutually consistent.
type PoolInfo struct {
	ActiveCount    int
	QueuedCount    int
	MaxWorkers     int
	SubmittedTotal uint64
	CompletedTotal uint64
	FailedTotal    uint64
	CancelledTotal uint64
}

// LogPipeline is the part of the logging pipeline the Executor drives during
// shutdown.
type LogPipeline interface {
	Stop()
}

// Throttling of the routine per-submission trace: above the active-task
// threshold only every Nth submission is logged. Warnings and errors are
// never throttled.
const (
	activeLogThreshold = 20
	submissionLogEvery = 5
)

// unit pairs a handle with its function. The unit is the single owning
// reference to the function; it lives in the queue and then in the worker's
// frame until the task finishes.
type unit struct {
	handle *Handle
	fn     TaskFunc
}

// Executor owns a fixed-size pool of workers, accepts submissions, and
// exposes pool health. Submit never blocks the caller: the logical queue is
// unbounded while execution concurrency is capped at MaxWorkers.
type Executor struct {
	cfg      Config
	logger   *slog.Logger
	instance uuid.UUID

	registry *Registry
	janitor  *Janitor
	pipeline LogPipeline
	emitter  events.EventEmitter

	// ctx is handed to task functions and cancelled at shutdown.
	ctx    context.Context
	cancel context.CancelFunc

	wg sync.WaitGroup

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []*unit
	closed  bool
	started bool

	nextID      uint64
	pending     int
	active      int
	submitted   uint64
	completed   uint64
	failed      uint64
	cancelled   uint64
	submissions uint64

	shutdownOnce sync.Once
}

// Option configures an Executor at construction time.
type Option func(*Executor)

// WithLogPipeline hands the executor the logging pipeline it should stop as
// the final step of Shutdown.
func WithLogPipeline(p LogPipeline) Option {
	return func(e *Executor) {
		e.pipeline = p
	}
}

// WithEventEmitter makes the executor publish a lifecycle event each time a
// task reaches a terminal state.
func WithEventEmitter(em events.EventEmitter) Option {
	return func(e *Executor) {
		e.emitter = em
	}
}

// New creates an Executor. Invalid config values are replaced with defaults;
// call Start to begin processing.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultConfig()
	if cfg.MaxWorkers <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", cfg.MaxWorkers,
			"default_count", defaults.MaxWorkers)
		cfg.MaxWorkers = defaults.MaxWorkers
	}
	if cfg.DefaultTaskTimeout <= 0 {
		cfg.DefaultTaskTimeout = defaults.DefaultTaskTimeout
	}
	if cfg.JanitorInterval <= 0 {
		cfg.JanitorInterval = defaults.JanitorInterval
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = defaults.ShutdownGrace
	}

	ctx, cancel := context.WithCancel(context.Background())

	e := &Executor{
		cfg:      cfg,
		instance: uuid.New(),
		registry: NewRegistry(),
		ctx:      ctx,
		cancel:   cancel,
	}
	e.cond = sync.NewCond(&e.mu)
	e.logger = logger.With("executor_id", e.instance.String())

	for _, opt := range opts {
		opt(e)
	}

	e.janitor = NewJanitor(cfg.JanitorInterval, e.registry, e.PoolInfo, e.logger)
	return e
}

// Start launches the worker goroutines and the janitor. Calling Start more
// than once is a no-op.
func (e *Executor) Start() {
	e.mu.Lock()
	if e.started || e.closed {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.mu.Unlock()

	for i := 0; i < e.cfg.MaxWorkers; i++ {
		e.wg.Add(1)
		go e.worker(i)
	}
	e.janitor.Start()

	e.logger.Info("executor started",
		"max_workers", e.cfg.MaxWorkers,
		"default_task_timeout", e.cfg.DefaultTaskTimeout)
}

// Submit enqueues fn for execution and returns the new task's id and Handle.
// It never blocks; the only failure after construction is ErrExecutorClosed.
func (e *Executor) Submit(fn TaskFunc, opts ...SubmitOption) (string, *Handle, error) {
	if fn == nil {
		return "", nil, ErrNilTask
	}

	so := submitOptions{timeout: e.cfg.DefaultTaskTimeout}
	for _, opt := range opts {
		opt(&so)
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return "", nil, ErrExecutorClosed
	}
	e.nextID++
	id := fmt.Sprintf("task-%d", e.nextID)
	h := newHandle(id, so.timeout, so.onCompleted, so.onFailed)
	e.registry.Add(h)
	e.queue = append(e.queue, &unit{handle: h, fn: fn})
	e.pending++
	e.submitted++
	e.submissions++
	active := e.active
	queued := e.pending
	nth := e.submissions
	e.cond.Signal()
	e.mu.Unlock()

	if active <= activeLogThreshold || nth%submissionLogEvery == 0 {
		e.logger.Debug("task submitted",
			"task_id", id,
			"queued", queued,
			"active", active)
	}
	return id, h, nil
}

// RunInBackground submits fn with default options and returns only the
// Handle. It exists for callers of the old submission API and forwards to
// Submit so there is exactly one bookkeeping path.
func (e *Executor) RunInBackground(fn TaskFunc) (*Handle, error) {
	_, h, err := e.Submit(fn)
	return h, err
}

// Cancel requests cancellation of the task registered under id. A Pending
// task transitions straight to Cancelled without ever running; a Running
// task only gets its flag set and must honor it itself. Cancel returns false
// when the id is unknown or the task has already finished.
func (e *Executor) Cancel(id string) bool {
	h, ok := e.registry.Get(id)
	if !ok {
		return false
	}
	h.requestCancel()

	if h.cancelIfPending() {
		e.registry.Remove(id)
		e.mu.Lock()
		e.pending--
		e.cancelled++
		e.cond.Broadcast()
		e.mu.Unlock()
		e.logger.Debug("cancelled pending task", "task_id", id)
		e.notify(h, StateCancelled)
		return true
	}

	if h.State().Terminal() {
		// Finished in the window between lookup and the flag; from the
		// caller's point of view it was already gone.
		return false
	}

	e.logger.Debug("cancellation requested", "task_id", id)
	return true
}

// WaitForCompletion blocks until every tracked task has reached a terminal
// state, or the timeout elapses. It reports whether the pool went idle.
func (e *Executor) WaitForCompletion(timeout time.Duration) bool {
	idle := make(chan struct{})
	go func() {
		e.mu.Lock()
		for e.pending+e.active > 0 {
			e.cond.Wait()
		}
		e.mu.Unlock()
		close(idle)
	}()

	select {
	case <-idle:
		return true
	case <-time.After(timeout):
		// The waiter goroutine unblocks on a later completion broadcast.
		return false
	}
}

// Shutdown tears the executor down exactly once: it cancels everything still
// tracked, discards unscheduled queued work, waits up to the configured grace
// period, stops the janitor, and finally stops the log pipeline if one was
// wired in. Second and subsequent calls are no-ops.
func (e *Executor) Shutdown() {
	e.shutdownOnce.Do(e.doShutdown)
}

func (e *Executor) doShutdown() {
	e.logger.Info("executor shutting down")

	e.mu.Lock()
	e.closed = true
	discarded := e.queue
	e.queue = nil
	e.cond.Broadcast()
	e.mu.Unlock()

	// Unscheduled queued work is discarded, not run.
	for _, u := range discarded {
		if u.handle.cancelIfPending() {
			e.registry.Remove(u.handle.ID())
			e.mu.Lock()
			e.pending--
			e.cancelled++
			e.mu.Unlock()
			e.notify(u.handle, StateCancelled)
		}
	}

	// Ask every task still tracked to stop. Running tasks honor this only
	// if they poll the flag; the context gives ctx-aware functions the same
	// signal.
	for _, h := range e.registry.Handles() {
		h.requestCancel()
	}
	e.cancel()

	if !e.WaitForCompletion(e.cfg.ShutdownGrace) {
		e.logger.Warn("some tasks did not finish within the shutdown grace period",
			"grace", e.cfg.ShutdownGrace)
	}

	e.janitor.Stop()

	workersDone := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(workersDone)
	}()
	select {
	case <-workersDone:
	case <-time.After(e.cfg.ShutdownGrace):
		e.logger.Warn("worker goroutines still busy at shutdown")
	}

	e.logger.Info("executor shutdown complete")

	// The pipeline goes last so every shutdown record is still delivered.
	if e.pipeline != nil {
		e.pipeline.Stop()
	}
}

// PoolInfo returns a consistent snapshot of pool counters. Safe to call
// concurrently with everything else.
func (e *Executor) PoolInfo() PoolInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return PoolInfo{
		ActiveCount:    e.active,
		QueuedCount:    e.pending,
		MaxWorkers:     e.cfg.MaxWorkers,
		SubmittedTotal: e.submitted,
		CompletedTotal: e.completed,
		FailedTotal:    e.failed,
		CancelledTotal: e.cancelled,
	}
}

// worker pulls units off the queue until the executor closes.
func (e *Executor) worker(id int) {
	defer e.wg.Done()

	e.logger.Debug("starting worker", "worker_id", id)

	for {
		u, ok := e.next()
		if !ok {
			e.logger.Debug("stopping worker", "worker_id", id)
			return
		}
		e.run(u, id)
	}
}

// next blocks until a runnable unit is available or the executor is closed
// with an empty queue. Units cancelled before running are skipped; their
// bookkeeping was settled by Cancel.
func (e *Executor) next() (*unit, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for {
		for len(e.queue) > 0 {
			u := e.queue[0]
			e.queue[0] = nil
			e.queue = e.queue[1:]
			if !u.handle.tryStart() {
				continue
			}
			e.active++
			e.pending--
			return u, true
		}
		if e.closed {
			return nil, false
		}
		e.cond.Wait()
	}
}

// run executes one task and settles its terminal state, counters, and
// registry entry. The registry entry is removed synchronously on every
// terminal path.
func (e *Executor) run(u *unit, workerID int) {
	h := u.handle
	log := e.logger.With("task_id", h.ID(), "worker_id", workerID)

	log.Debug("task started")
	result, err := e.invoke(u)

	var final State
	switch {
	case errors.Is(err, ErrTaskCancelled),
		h.CancelRequested() && errors.Is(err, context.Canceled):
		final = StateCancelled
		result, err = nil, ErrTaskCancelled
	case err != nil:
		final = StateFailed
		result = nil
	default:
		final = StateCompleted
	}

	h.finish(final, result, err)
	e.registry.Remove(h.ID())

	e.mu.Lock()
	e.active--
	switch final {
	case StateCompleted:
		e.completed++
	case StateFailed:
		e.failed++
	case StateCancelled:
		e.cancelled++
	}
	e.cond.Broadcast()
	e.mu.Unlock()

	switch final {
	case StateFailed:
		// Task errors come from arbitrary application code and may embed
		// credentials or paths.
		log.Error("task failed", "error", redact.Error(err))
	case StateCancelled:
		log.Debug("task cancelled")
	default:
		log.Debug("task completed")
	}

	e.notify(h, final)
}

// notify publishes one lifecycle event for a terminal transition. Emission
// failures are logged and otherwise ignored; task outcomes never depend on
// event consumers.
func (e *Executor) notify(h *Handle, final State) {
	if e.emitter == nil {
		return
	}
	var state string
	switch final {
	case StateCompleted:
		state = events.TaskCompleted
	case StateFailed:
		state = events.TaskFailed
	case StateCancelled:
		state = events.TaskCancelled
	default:
		return
	}
	result, err := h.Result()
	event := events.NewTaskLifecycleEvent(h.ID(), state, result, err)
	if emitErr := e.emitter.EmitEvent(context.Background(), event); emitErr != nil {
		e.logger.Warn("lifecycle event handler failed",
			"task_id", h.ID(),
			"state", state,
			"error", emitErr)
	}
}

// invoke runs the task function, converting a panic into an error so a
// misbehaving task never takes down the pool or its worker.
func (e *Executor) invoke(u *unit) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return u.fn(e.ctx, u.handle)
}
