package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take
// precedence and use the TASKPOOL_ prefix with underscores for nesting
// (e.g. TASKPOOL_EXECUTOR_MAX_WORKERS). Returns a populated, validated
// Config or an error describing what failed.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults mirror the executor's own: a small pool, advisory 5 minute
	// task timeout, 30 second janitor sweep.
	v.SetDefault("server.port", 8080)
	v.SetDefault("executor.max_workers", 4)
	v.SetDefault("executor.default_task_timeout_seconds", 300)
	v.SetDefault("executor.janitor_interval_seconds", 30)
	v.SetDefault("executor.shutdown_grace_seconds", 10)
	v.SetDefault("logging.log_level", "info")
	v.SetDefault("logging.log_to_console", true)
	v.SetDefault("logging.log_to_file", false)
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.queue_size", 1000)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TASKPOOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; everything has defaults and env
		// overrides. Any other read error is real.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
