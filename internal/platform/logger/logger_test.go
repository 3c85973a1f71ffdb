package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskpool/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug},
		{"info level", "info", slog.LevelInfo},
		{"warn level", "warn", slog.LevelWarn},
		{"error level", "error", slog.LevelError},
		{"mixed case", "DeBuG", slog.LevelDebug},
		{"invalid falls back to info", "verbose", slog.LevelInfo},
		{"empty falls back to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestSetup_BuildsWorkingLogger(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	pipeline, log, err := Setup(config.LoggingConfig{
		Level:     "debug",
		QueueSize: 64,
	})
	require.NoError(t, err)
	require.NotNil(t, pipeline)
	require.NotNil(t, log)

	sink := &collectingSink{}
	pipeline.RegisterSink(sink)

	log.Info("wired up", "component", "test")
	pipeline.Stop()

	require.Len(t, sink.records, 1)
	assert.Equal(t, "wired up", sink.records[0].Message)
	assert.Equal(t, "app", sink.records[0].Source)
}

func TestSetup_FileSinkWritesToConfiguredDir(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	dir := t.TempDir()
	pipeline, log, err := Setup(config.LoggingConfig{
		Level:     "info",
		LogToFile: true,
		LogDir:    dir,
		QueueSize: 64,
	})
	require.NoError(t, err)

	log.Info("to disk")
	pipeline.Stop()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "to disk")
}

func TestSetup_FileSinkFailureStopsPipeline(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	// Using an existing file as the log directory must fail cleanly.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, _, err := Setup(config.LoggingConfig{
		Level:     "info",
		LogToFile: true,
		LogDir:    blocker,
		QueueSize: 64,
	})
	assert.Error(t, err)
}
