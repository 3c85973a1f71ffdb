package task

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskpool/internal/platform/logger"
)

// TestSubmissionTraceThrottledUnderLoad verifies the rate limiter on the
// routine "task submitted" trace: with more than 20 tasks active, only every
// 5th submission is traced. The trace count is observed through a counting
// sink on a real pipeline, the same way a log consumer would see it.
func TestSubmissionTraceThrottledUnderLoad(t *testing.T) {
	const workers = 21

	var traces atomic.Int64
	pipeline := logger.NewPipeline(256)
	pipeline.RegisterSink(logger.SinkFunc(func(r logger.Record) error {
		if r.Message == "task submitted" {
			traces.Add(1)
		}
		return nil
	}))

	log := slog.New(logger.NewHandler(pipeline, slog.LevelDebug, "executor"))
	e := New(Config{
		MaxWorkers:         workers,
		DefaultTaskTimeout: time.Minute,
		JanitorInterval:    time.Minute,
		ShutdownGrace:      time.Second,
	}, log, WithLogPipeline(pipeline))
	e.Start()

	// Fill every worker with a blocked task so ActiveCount sits at 21.
	release := make(chan struct{})
	for i := 0; i < workers; i++ {
		_, _, err := e.Submit(func(ctx context.Context, h *Handle) (any, error) {
			<-release
			return nil, nil
		})
		require.NoError(t, err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for e.PoolInfo().ActiveCount != workers {
		if time.Now().After(deadline) {
			t.Fatalf("pool never reached %d active tasks", workers)
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Submissions 22..31 happen with 21 tasks active; only the 25th and
	// 30th overall submissions may produce the routine trace.
	for i := 0; i < 10; i++ {
		_, _, err := e.Submit(func(ctx context.Context, h *Handle) (any, error) {
			return nil, nil
		})
		require.NoError(t, err)
	}

	close(release)
	require.True(t, e.WaitForCompletion(2*time.Second))
	e.Shutdown() // drains and stops the pipeline

	// The first 21 submissions all traced (at most 20 were active during
	// each); of the 10 made under load, exactly 1 in 5 traced.
	assert.Equal(t, int64(workers+2), traces.Load())
}
