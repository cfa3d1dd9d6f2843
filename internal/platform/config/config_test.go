package config

import (
	"errors"
	"os"
	"testing"
	"time"

	apperrors "github.com/lueurxax/catwalk/internal/core/errors"
)

// Test environment variable keys.
const (
	testEnvStoreDriver = "STORE_DRIVER"
	testEnvPostgresDSN = "POSTGRES_DSN"
	testEnvSQLitePath  = "SQLITE_PATH"
	testEnvSortSeed    = "EVAL_SORT_SEED"
	testEnvRetries     = "EVAL_WRITE_MAX_RETRIES"
)

// Test values.
const (
	testPostgresDSN = "postgres://localhost/test"
	testErrLoad     = "Load() error = %v"
)

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	t.Setenv(testEnvStoreDriver, DriverPostgres)
	os.Unsetenv(testEnvPostgresDSN)

	_, err := Load()
	if !errors.Is(err, apperrors.ErrInvalidConfig) {
		t.Fatalf("Load() error = %v, want %v", err, apperrors.ErrInvalidConfig)
	}
}

func TestLoad_UnsupportedDriver(t *testing.T) {
	t.Setenv(testEnvStoreDriver, "mysql")

	_, err := Load()
	if !errors.Is(err, apperrors.ErrUnsupportedDriver) {
		t.Fatalf("Load() error = %v, want %v", err, apperrors.ErrUnsupportedDriver)
	}
}

func TestLoad_ValidPostgres(t *testing.T) {
	t.Setenv(testEnvStoreDriver, " Postgres ")
	t.Setenv(testEnvPostgresDSN, testPostgresDSN)

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.StoreDriver != DriverPostgres {
		t.Errorf("StoreDriver = %q, want %q", cfg.StoreDriver, DriverPostgres)
	}

	if cfg.PostgresDSN != testPostgresDSN {
		t.Errorf("PostgresDSN = %q, want %q", cfg.PostgresDSN, testPostgresDSN)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(testEnvStoreDriver, DriverSQLite)

	// Explicitly unset variables that might be in .env to test actual defaults
	os.Unsetenv("APP_ENV")
	os.Unsetenv(testEnvSQLitePath)
	os.Unsetenv(testEnvSortSeed)
	os.Unsetenv(testEnvRetries)
	os.Unsetenv("EVAL_WRITE_INITIAL_DELAY")
	os.Unsetenv("EVAL_CONCURRENCY")
	os.Unsetenv("HEALTH_PORT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if !cfg.IsLocal() {
		t.Errorf("AppEnv default = %q, want local", cfg.AppEnv)
	}

	if cfg.SQLitePath != "./catwalk.db" {
		t.Errorf("SQLitePath default = %q, want %q", cfg.SQLitePath, "./catwalk.db")
	}

	if cfg.SortSeed != 0 {
		t.Errorf("SortSeed default = %d, want 0", cfg.SortSeed)
	}

	if cfg.WriteMaxRetries != 5 {
		t.Errorf("WriteMaxRetries default = %d, want 5", cfg.WriteMaxRetries)
	}

	if cfg.WriteInitialDelay != 100*time.Millisecond {
		t.Errorf("WriteInitialDelay default = %v, want 100ms", cfg.WriteInitialDelay)
	}

	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency default = %d, want 4", cfg.Concurrency)
	}

	if cfg.HealthPort != 0 {
		t.Errorf("HealthPort default = %d, want 0", cfg.HealthPort)
	}
}

func TestLoad_SortSeed(t *testing.T) {
	t.Setenv(testEnvStoreDriver, DriverSQLite)
	t.Setenv(testEnvSortSeed, "1234")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.SortSeed != 1234 {
		t.Errorf("SortSeed = %d, want 1234", cfg.SortSeed)
	}
}

func TestLoad_InvalidNumeric(t *testing.T) {
	t.Setenv(testEnvStoreDriver, DriverSQLite)
	t.Setenv(testEnvSortSeed, "not-a-number")

	_, err := Load()
	if err == nil {
		t.Error("expected error for invalid EVAL_SORT_SEED")
	}
}

func TestLoad_NegativeRetries(t *testing.T) {
	t.Setenv(testEnvStoreDriver, DriverSQLite)
	t.Setenv(testEnvRetries, "-1")

	_, err := Load()
	if !errors.Is(err, apperrors.ErrInvalidConfig) {
		t.Fatalf("Load() error = %v, want %v", err, apperrors.ErrInvalidConfig)
	}
}
