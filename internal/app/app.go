// Package app provides the application bootstrap.
//
// The App type opens the configured evaluation store and wires loaded metric
// groups into a ModelEvaluator. Commands in cmd/catwalk drive it:
//
//   - migrate: apply schema migrations
//   - evaluate: score one prediction set and replace its stored rows
//   - batch: score many prediction sets concurrently
//   - show: list stored evaluations for a key
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	apperrors "github.com/lueurxax/catwalk/internal/core/errors"
	"github.com/lueurxax/catwalk/internal/core/ports"
	"github.com/lueurxax/catwalk/internal/evaluation"
	"github.com/lueurxax/catwalk/internal/metrics"
	"github.com/lueurxax/catwalk/internal/platform/config"
	"github.com/lueurxax/catwalk/internal/platform/observability"
	"github.com/lueurxax/catwalk/internal/platform/retry"
	db "github.com/lueurxax/catwalk/internal/storage"
	"github.com/lueurxax/catwalk/internal/storage/sqlite"
)

const logFieldDriver = "driver"

// Store is an evaluation store that can report its health.
type Store interface {
	ports.EvaluationStore
	observability.Pinger
}

// App holds the application dependencies.
type App struct {
	cfg    *config.Config
	store  Store
	logger *zerolog.Logger
}

// New creates an App around an already opened store.
func New(cfg *config.Config, store Store, logger *zerolog.Logger) *App {
	return &App{
		cfg:    cfg,
		store:  store,
		logger: logger,
	}
}

// Open connects to the store selected by cfg and applies migrations.
func Open(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return New(cfg, store, logger), nil
}

// OpenStore opens and migrates the configured evaluation store.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (Store, error) {
	retryCfg := retry.Config{
		MaxRetries:   cfg.WriteMaxRetries,
		InitialDelay: cfg.WriteInitialDelay,
		MaxDelay:     cfg.WriteMaxDelay,
	}

	logger.Info().Str(logFieldDriver, cfg.StoreDriver).Msg("opening evaluation store")

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		poolOpts := db.PoolOptions{
			MaxConns:          cfg.MaxConnections,
			MinConns:          cfg.MinConnections,
			MaxConnIdleTime:   cfg.MaxConnIdleTime,
			MaxConnLifetime:   cfg.MaxConnLifetime,
			HealthCheckPeriod: cfg.HealthCheckPeriod,
		}

		database, err := db.NewWithOptions(ctx, cfg.PostgresDSN, poolOpts, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}

		database.Retry = retryCfg

		if err := database.Migrate(ctx); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}

		return database, nil
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}

		store.Retry = retryCfg

		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedDriver, cfg.StoreDriver)
	}
}

// Store returns the evaluation store.
func (a *App) Store() Store {
	return a.store
}

// Close releases the store.
func (a *App) Close() error {
	return a.store.Close()
}

// NewEvaluator builds an evaluator writing to the app's store. Metric names
// are checked up front so a typo fails before any unit is scored.
func (a *App) NewEvaluator(groups evaluation.GroupConfig, registry *metrics.Registry) (*evaluation.ModelEvaluator, error) {
	if registry == nil {
		registry = metrics.NewRegistry()
	}

	if err := registry.Check(groups.MetricNames()); err != nil {
		return nil, err
	}

	return evaluation.NewModelEvaluator(groups, registry, a.store, evaluation.Options{
		SortSeed: a.cfg.SortSeed,
		Logger:   a.logger,
	})
}

// StartHealthServer serves health and metrics endpoints until ctx is done.
// It returns immediately when no port is configured.
func (a *App) StartHealthServer(ctx context.Context) error {
	if a.cfg.HealthPort <= 0 {
		return nil
	}

	return observability.NewServer(a.store, a.cfg.HealthPort, a.logger).Start(ctx)
}
