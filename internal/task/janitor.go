package task

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Janitor periodically audits the registry and emits pool statistics,
// independent of task traffic. Each tick removes registry entries whose task
// already finished (a missed synchronous removal is a lifecycle bug, so each
// one is logged) and reports the current PoolInfo at debug level. The
// Janitor never cancels or mutates tasks.
type Janitor struct {
	interval time.Duration
	registry *Registry
	poolInfo func() PoolInfo
	logger   *slog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
	stop      chan struct{}
	done      chan struct{}
}

// NewJanitor creates a janitor sweeping registry every interval.
func NewJanitor(interval time.Duration, registry *Registry, poolInfo func() PoolInfo, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{
		interval: interval,
		registry: registry,
		poolInfo: poolInfo,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop. Repeated calls are no-ops.
func (j *Janitor) Start() {
	j.startOnce.Do(func() {
		j.started.Store(true)
		go j.loop()
	})
}

// Stop halts the sweep loop and waits for the in-flight tick, if any, to
// finish. Repeated calls are safe, as is stopping a janitor that never ran.
func (j *Janitor) Stop() {
	j.stopOnce.Do(func() {
		close(j.stop)
	})
	if j.started.Load() {
		<-j.done
	}
}

func (j *Janitor) loop() {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stop:
			return
		case <-ticker.C:
			j.tick()
		}
	}
}

// tick runs one maintenance pass. A clean registry is a no-op, not an error.
func (j *Janitor) tick() {
	removed := j.registry.Sweep(func(h *Handle) {
		j.logger.Warn("registry entry outlived its task",
			"task_id", h.ID(),
			"state", h.State().String())
	})
	if removed > 0 {
		j.logger.Debug("swept stale registry entries", "count", removed)
	}

	info := j.poolInfo()
	j.logger.Debug("pool status",
		"active", info.ActiveCount,
		"queued", info.QueuedCount,
		"max_workers", info.MaxWorkers,
		"completed_total", info.CompletedTotal,
		"failed_total", info.FailedTotal,
		"cancelled_total", info.CancelledTotal)
}
