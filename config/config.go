// Package config loads service configuration from the environment.
//
// Values are read from an optional .env file first (existing environment
// variables win), then parsed into typed structs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the full service configuration.
type Config struct {
	Service   ServiceConfig
	Logging   LoggingConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig
	Shutdown  ShutdownConfig
}

// ServiceConfig identifies the running service.
type ServiceConfig struct {
	Name    string `env:"SERVICE_NAME" envDefault:"yoga-service"`
	Version string `env:"SERVICE_VERSION" envDefault:"dev"`
	Env     string `env:"ENV" envDefault:"development"`
	Port    string `env:"PORT" envDefault:"8080"`
}

// LoggingConfig controls zerolog output.
type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// DatabaseConfig selects and configures the storage backend.
type DatabaseConfig struct {
	Driver     string `env:"DB_DRIVER" envDefault:"postgres"`
	URL        string `env:"DATABASE_URL"`
	MaxConns   int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"yoga.db"`
}

// JWTConfig holds the token signing secret and lifetime.
// Both are read-only after startup.
type JWTConfig struct {
	Secret       string `env:"JWT_SECRET"`
	ExpirationMs int64  `env:"JWT_EXPIRATION_MS" envDefault:"86400000"`
}

// TracingConfig configures the OTLP trace exporter.
type TracingConfig struct {
	Enabled    bool    `env:"TRACING_ENABLED" envDefault:"false"`
	Endpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"http://localhost:4318"`
	SampleRate float64 `env:"TRACING_SAMPLE_RATE" envDefault:"1.0"`
}

// ProfilingConfig configures continuous profiling.
type ProfilingConfig struct {
	Enabled  bool   `env:"PROFILING_ENABLED" envDefault:"false"`
	Endpoint string `env:"PYROSCOPE_ENDPOINT" envDefault:"http://localhost:4040"`
}

// ShutdownConfig controls graceful shutdown timing.
type ShutdownConfig struct {
	ReadinessDrainDelay time.Duration `env:"READINESS_DRAIN_DELAY" envDefault:"0s"`
	Timeout             time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads configuration from ./.env (if present) and the environment.
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom reads configuration from the given dotenv file (if present) and
// the environment.
func LoadFrom(dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	// Token expiry is encoded in whole seconds.
	if c.JWT.ExpirationMs < 1000 {
		return fmt.Errorf("JWT_EXPIRATION_MS must be at least 1000, got %d", c.JWT.ExpirationMs)
	}
	if port, err := strconv.Atoi(c.Service.Port); err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("PORT %q is not a valid port", c.Service.Port)
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if strings.TrimSpace(c.Database.URL) == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	case DriverSQLite:
		if strings.TrimSpace(c.Database.SQLitePath) == "" {
			return errors.New("SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("DB_DRIVER %q is not supported", c.Database.Driver)
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be within [0,1], got %v", c.Tracing.SampleRate)
	}
	return nil
}

// TokenLifetime returns the configured JWT lifetime.
func (c *Config) TokenLifetime() time.Duration {
	return time.Duration(c.JWT.ExpirationMs) * time.Millisecond
}
