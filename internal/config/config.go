package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Executor ExecutorConfig `mapstructure:"executor" validate:"required"`
	Logging  LoggingConfig  `mapstructure:"logging"  validate:"required"`
}

// ServerConfig contains settings for the status/metrics HTTP listener.
type ServerConfig struct {
	Port int `mapstructure:"port" validate:"required,gt=0,lt=65536"`
}

// ExecutorConfig contains the worker pool settings. They are fixed for the
// executor's lifetime; changing them requires a restart.
type ExecutorConfig struct {
	MaxWorkers int `mapstructure:"max_workers" validate:"required,gt=0"`

	// DefaultTaskTimeoutSeconds is advisory: recorded on each task for
	// diagnostics, never preemptively enforced.
	DefaultTaskTimeoutSeconds int `mapstructure:"default_task_timeout_seconds" validate:"gte=0"`

	JanitorIntervalSeconds int `mapstructure:"janitor_interval_seconds" validate:"gte=0"`
	ShutdownGraceSeconds   int `mapstructure:"shutdown_grace_seconds"   validate:"gte=0"`
}

// LoggingConfig contains the log pipeline settings.
type LoggingConfig struct {
	Level        string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogToConsole bool   `mapstructure:"log_to_console"`
	LogToFile    bool   `mapstructure:"log_to_file"`
	LogDir       string `mapstructure:"log_dir" validate:"required_if=LogToFile true"`
	QueueSize    int    `mapstructure:"queue_size" validate:"gte=0"`
}
