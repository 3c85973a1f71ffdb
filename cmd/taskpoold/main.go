// Package main implements the entry point for the task pool daemon, which
// runs the background task executor and serves its observability endpoints.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/taskpool/internal/api"
	"github.com/phrazzld/taskpool/internal/config"
	"github.com/phrazzld/taskpool/internal/events"
	"github.com/phrazzld/taskpool/internal/observability/prometheus"
	"github.com/phrazzld/taskpool/internal/platform/logger"
	"github.com/phrazzld/taskpool/internal/task"
)

func main() {
	executor, srv, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Shutdown stops the janitor and the log pipeline as well, so it is the
	// last teardown step.
	defer executor.Shutdown()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown: %v", err)
	}
}

// initializeApp loads configuration and wires the application components:
// logging pipeline, executor, metrics, and the status HTTP listener.
func initializeApp() (*task.Executor, *http.Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	pipeline, appLogger, err := logger.Setup(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	emitter := events.NewInMemoryEventEmitter(appLogger)
	emitter.RegisterHandler(events.NewLoggingHandler(appLogger))

	executor := task.New(task.Config{
		MaxWorkers:         cfg.Executor.MaxWorkers,
		DefaultTaskTimeout: time.Duration(cfg.Executor.DefaultTaskTimeoutSeconds) * time.Second,
		JanitorInterval:    time.Duration(cfg.Executor.JanitorIntervalSeconds) * time.Second,
		ShutdownGrace:      time.Duration(cfg.Executor.ShutdownGraceSeconds) * time.Second,
	}, appLogger, task.WithLogPipeline(pipeline), task.WithEventEmitter(emitter))
	executor.Start()

	if _, err := prometheus.Register("taskpool", nil, executor); err != nil {
		executor.Shutdown()
		return nil, nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	router := chi.NewRouter()
	router.Mount("/", api.NewStatusHandler(executor, appLogger).Routes())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("status listener failed", "error", err)
		}
	}()

	appLogger.Info("taskpool daemon started",
		"port", cfg.Server.Port,
		"max_workers", cfg.Executor.MaxWorkers,
		"log_level", cfg.Logging.Level)

	return executor, srv, nil
}
