package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	apperrors "github.com/lueurxax/catwalk/internal/core/errors"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const appEnvLocal = "local"

type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"local"`

	DatabaseConfig
	EvaluationConfig
	ObservabilityConfig
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the selected store driver is fully configured.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return fmt.Errorf("%w: POSTGRES_DSN is required for the postgres driver", apperrors.ErrInvalidConfig)
		}
	case DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("%w: SQLITE_PATH is required for the sqlite driver", apperrors.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: %q", apperrors.ErrUnsupportedDriver, c.StoreDriver)
	}

	if c.WriteMaxRetries < 0 {
		return fmt.Errorf("%w: EVAL_WRITE_MAX_RETRIES must not be negative", apperrors.ErrInvalidConfig)
	}

	return nil
}

// IsLocal reports whether the app runs in a developer environment.
func (c *Config) IsLocal() bool {
	return c.AppEnv == appEnvLocal
}
