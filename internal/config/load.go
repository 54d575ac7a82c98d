package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. TODO_SERVER_PORT.
const EnvPrefix = "TODO"

// Default values applied before any file or environment source.
const (
	DefaultHost            = "localhost"
	DefaultPort            = 8088
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 10
	DefaultMaxOpenConns    = 10
	DefaultStoreDriver     = "postgres"
	DefaultWorkerCount     = 3
	DefaultCookieName      = "todo-session"
)

// keys lists every configuration key that may come from the environment.
// viper's AutomaticEnv only resolves keys it already knows, so each is bound
// explicitly.
var keys = []string{
	"server.host",
	"server.port",
	"server.log_level",
	"server.shutdown_timeout_seconds",
	"server.static_dir",
	"database.url",
	"database.max_open_conns",
	"database.auto_migrate",
	"store.driver",
	"worker.count",
	"worker.request_timeout_ms",
	"session.secret",
	"session.cookie_name",
	"session.secure",
}

// Options adjusts where Load looks for configuration.
type Options struct {
	// ConfigFile is an explicit YAML file. When empty, config.yaml in the
	// working directory is used if present.
	ConfigFile string

	// SkipDotEnv disables loading .env.
	SkipDotEnv bool
}

// Load reads configuration with default options.
func Load() (*Config, error) {
	return LoadWithOptions(Options{})
}

// LoadWithOptions reads configuration from defaults, an optional YAML file,
// an optional .env file and the environment, then validates it.
func LoadWithOptions(opts Options) (*Config, error) {
	if !opts.SkipDotEnv && os.Getenv(EnvPrefix+"_ENV") != "production" {
		// A missing .env is the normal case outside development.
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Database.Driver = cfg.Store.Driver

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags plus the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if c.Store.Driver == "postgres" && c.Database.MaxOpenConns < c.Worker.Count {
		return fmt.Errorf(
			"configuration validation failed: database.max_open_conns (%d) must be at least worker.count (%d)",
			c.Database.MaxOpenConns, c.Worker.Count)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.log_level", DefaultLogLevel)
	v.SetDefault("server.shutdown_timeout_seconds", DefaultShutdownTimeout)
	v.SetDefault("server.static_dir", "")
	v.SetDefault("database.max_open_conns", DefaultMaxOpenConns)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("store.driver", DefaultStoreDriver)
	v.SetDefault("worker.count", DefaultWorkerCount)
	v.SetDefault("worker.request_timeout_ms", 0)
	v.SetDefault("session.cookie_name", DefaultCookieName)
	v.SetDefault("session.secure", false)
}
