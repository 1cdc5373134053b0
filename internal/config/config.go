package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Board    BoardConfig    `mapstructure:"board" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// BoardConfig contains settings for the task-position engine.
type BoardConfig struct {
	// LockTimeoutMillis is how long a mutation waits for a lane lock
	// before giving up with a retryable lock-timeout error.
	LockTimeoutMillis int `mapstructure:"lock_timeout_millis" validate:"required,gt=0"`
}
