package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_LevelFiltering(t *testing.T) {
	p := NewPipeline(64)
	sink := &collectingSink{}
	p.RegisterSink(sink)

	log := slog.New(NewHandler(p, slog.LevelInfo, "test"))

	log.Debug("filtered out")
	log.Info("kept")
	log.Warn("also kept")
	p.Stop()

	assert.Equal(t, []string{"kept", "also kept"}, sink.messages())
}

func TestHandler_Enabled(t *testing.T) {
	h := NewHandler(NewPipeline(1), slog.LevelWarn, "test")

	ctx := context.Background()
	assert.False(t, h.Enabled(ctx, slog.LevelDebug))
	assert.False(t, h.Enabled(ctx, slog.LevelInfo))
	assert.True(t, h.Enabled(ctx, slog.LevelWarn))
	assert.True(t, h.Enabled(ctx, slog.LevelError))
}

func TestHandler_RecordCarriesSourceAndAttrs(t *testing.T) {
	p := NewPipeline(64)
	sink := &collectingSink{}
	p.RegisterSink(sink)

	log := slog.New(NewHandler(p, slog.LevelDebug, "executor"))
	log = log.With("executor_id", "abc")

	log.Info("task submitted", "task_id", "task-1")
	p.Stop()

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.Equal(t, "executor", rec.Source)
	assert.Equal(t, slog.LevelInfo, rec.Level)
	assert.False(t, rec.Time.IsZero())

	keys := make(map[string]any, len(rec.Attrs))
	for _, a := range rec.Attrs {
		keys[a.Key] = a.Value.Any()
	}
	assert.Equal(t, "abc", keys["executor_id"])
	assert.Equal(t, "task-1", keys["task_id"])
}

func TestHandler_GroupsQualifyKeys(t *testing.T) {
	p := NewPipeline(64)
	sink := &collectingSink{}
	p.RegisterSink(sink)

	log := slog.New(NewHandler(p, slog.LevelDebug, "test")).WithGroup("pool")
	log.Info("status", "active", 3)
	p.Stop()

	require.Len(t, sink.records, 1)
	require.Len(t, sink.records[0].Attrs, 1)
	assert.Equal(t, "pool.active", sink.records[0].Attrs[0].Key)
}

func TestHandler_NeverBlocksProducer(t *testing.T) {
	// A stopped pipeline drops records instead of raising or blocking.
	p := NewPipeline(1)
	p.Stop()

	log := slog.New(NewHandler(p, slog.LevelDebug, "test"))
	for i := 0; i < 100; i++ {
		log.Info("ignored")
	}
	assert.Equal(t, uint64(100), p.Dropped())
}
