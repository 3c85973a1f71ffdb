package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/taskpool/internal/config"
)

// Setup builds the application's logging stack from configuration: the
// pipeline, the configured sinks, and a slog.Logger bridged onto the
// pipeline. The pipeline must be stopped exactly once at shutdown; the
// executor does this when wired with task.WithLogPipeline.
//
// The returned logger is also installed as the slog default so package-level
// slog calls flow through the same ordered queue.
func Setup(cfg config.LoggingConfig) (*Pipeline, *slog.Logger, error) {
	level := parseLevel(cfg.Level)

	p := NewPipeline(cfg.QueueSize)
	if cfg.LogToConsole {
		p.RegisterSink(NewConsoleSink(os.Stderr))
	}
	if cfg.LogToFile {
		fs, err := NewFileSink(cfg.LogDir)
		if err != nil {
			p.Stop()
			return nil, nil, fmt.Errorf("failed to set up file sink: %w", err)
		}
		p.RegisterSink(fs)
	}

	log := slog.New(NewHandler(p, level, "app"))
	slog.SetDefault(log)

	return p, log, nil
}

// parseLevel maps a configured level name to a slog.Level. The comparison is
// case-insensitive; an unknown name logs a warning and falls back to info.
func parseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmp.Warn("invalid log level configured, using default level",
			"configured_level", name,
			"default_level", "info")
		return slog.LevelInfo
	}
}
