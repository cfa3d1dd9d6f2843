// Package migrations embeds SQL migration files for goose.
//
// Migration files follow the naming convention: YYYYMMDDHHMMSS_description.sql
// They are written in the SQL subset shared by PostgreSQL and SQLite and are
// applied in order during store initialization.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed *.sql
var FS embed.FS

// Up applies all pending migrations to db using dialect.
func Up(ctx context.Context, db *sql.DB, dialect goose.Dialect, logger *zerolog.Logger) error {
	provider, err := goose.NewProvider(dialect, db, FS)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	if logger != nil {
		for _, r := range results {
			logger.Info().
				Int64("version", r.Source.Version).
				Dur("duration", r.Duration).
				Msg("applied migration")
		}
	}

	return nil
}
