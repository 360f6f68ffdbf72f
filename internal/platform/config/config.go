// Package config loads application configuration from environment variables.
// All variables use the LEARN_ prefix.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const envPrefix = "LEARN_"

// Config holds all application configuration.
type Config struct {
	Server         ServerConfig   `envPrefix:"SERVER_"`
	Database       DatabaseConfig `envPrefix:"DATABASE_"`
	Cache          CacheConfig    `envPrefix:"CACHE_"`
	Log            LogConfig      `envPrefix:"LOG_"`
	Exercise       ExerciseConfig `envPrefix:"EXERCISE_"`
	CurriculumPath string         `env:"CURRICULUM_PATH"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int    `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"0.0.0.0"`
}

// DatabaseConfig holds PostgreSQL connection settings for the progress event log.
// An empty URL disables event persistence.
type DatabaseConfig struct {
	URL             string        `env:"URL"`
	MaxConns        int           `env:"MAX_CONNS" envDefault:"25"`
	MinConns        int           `env:"MIN_CONNS" envDefault:"5"`
	MaxConnLifetime time.Duration `env:"MAX_CONN_LIFETIME" envDefault:"30m"`
	MaxConnIdleTime time.Duration `env:"MAX_CONN_IDLE_TIME" envDefault:"5m"`
}

// CacheConfig holds Redis settings for snapshot fan-out.
// An empty URL disables publishing.
type CacheConfig struct {
	URL     string `env:"URL"`
	Channel string `env:"CHANNEL" envDefault:"pai:progress:snapshots"`
}

// ExerciseConfig holds exercise session housekeeping settings.
type ExerciseConfig struct {
	// Retention is how long a finished session keeps answering ErrSessionFinished.
	Retention time.Duration `env:"RETENTION" envDefault:"10m"`
	// IdleTimeout drops unfinished sessions nobody has answered for this long.
	IdleTimeout time.Duration `env:"IDLE_TIMEOUT" envDefault:"1h"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

// Load reads configuration from environment variables with LEARN_ prefix.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("LEARN_SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LEARN_LOG_LEVEL must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("LEARN_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	if c.Database.URL != "" && c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("LEARN_DATABASE_MIN_CONNS (%d) exceeds LEARN_DATABASE_MAX_CONNS (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}

	if c.Exercise.Retention <= 0 || c.Exercise.IdleTimeout <= 0 {
		return fmt.Errorf("LEARN_EXERCISE_RETENTION and LEARN_EXERCISE_IDLE_TIMEOUT must be positive")
	}

	if c.Cache.URL != "" && c.Cache.Channel == "" {
		return fmt.Errorf("LEARN_CACHE_CHANNEL is required when LEARN_CACHE_URL is set")
	}

	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
