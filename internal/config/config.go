package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Store    StoreConfig    `mapstructure:"store" validate:"required"`
	Worker   WorkerConfig   `mapstructure:"worker" validate:"required"`
	Session  SessionConfig  `mapstructure:"session" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Host                   string `mapstructure:"host" validate:"required"`
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
	// StaticDir overrides the embedded assets when set.
	StaticDir string `mapstructure:"static_dir"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required_if=Driver postgres,omitempty,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`

	// Driver mirrors Store.Driver so the URL requirement can be expressed
	// on this struct. Load fills it in; it is not read from the environment.
	Driver string `mapstructure:"-"`
}

// StoreConfig selects the Task Store backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres memory"`
}

// WorkerConfig sizes the database worker pool.
type WorkerConfig struct {
	Count int `mapstructure:"count" validate:"gte=1,lte=64"`
	// RequestTimeoutMS bounds how long a request waits for its result.
	// Zero waits indefinitely.
	RequestTimeoutMS int `mapstructure:"request_timeout_ms" validate:"gte=0"`
}

// SessionConfig configures the signed flash cookie.
type SessionConfig struct {
	Secret     string `mapstructure:"secret" validate:"required,min=32"`
	CookieName string `mapstructure:"cookie_name" validate:"required"`
	Secure     bool   `mapstructure:"secure"`
}
