package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Storage   StorageConfig   `mapstructure:"storage" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// StorageConfig contains the document storage settings.
type StorageConfig struct {
	// DataFile is the path of the JSON document holding the homework
	// collection and user settings.
	DataFile string `mapstructure:"data_file" validate:"required"`
}

// SchedulerConfig contains the task coordinator and load pipeline tuning.
type SchedulerConfig struct {
	// TickIntervalMS is the coordinator poll period in milliseconds.
	TickIntervalMS int `mapstructure:"tick_interval_ms" validate:"required,gt=0"`

	// QueueSize bounds the pending-task queue.
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`

	// BatchSize is the number of records per load pipeline batch.
	BatchSize int `mapstructure:"batch_size" validate:"required,gt=0"`

	// ChannelCapacity bounds the pipeline stage channels.
	ChannelCapacity int `mapstructure:"channel_capacity" validate:"required,gt=0"`

	// EagerBatches is how many leading batches are surfaced as partial
	// views during a bulk load.
	EagerBatches int `mapstructure:"eager_batches" validate:"gte=0"`

	// DateCacheSize bounds the memoized date parser.
	DateCacheSize int `mapstructure:"date_cache_size" validate:"required,gt=0"`

	// RecomputeSchedule is the cron expression for the periodic status
	// recompute.
	RecomputeSchedule string `mapstructure:"recompute_schedule" validate:"required"`
}

// TickInterval returns the poll period as a duration.
func (s SchedulerConfig) TickInterval() time.Duration {
	return time.Duration(s.TickIntervalMS) * time.Millisecond
}
