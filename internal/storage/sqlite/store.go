// Package sqlite provides a SQLite-backed evaluation store for local runs.
// It shares the PostgreSQL schema and replace semantics.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/lueurxax/catwalk/internal/core/domain"
	apperrors "github.com/lueurxax/catwalk/internal/core/errors"
	"github.com/lueurxax/catwalk/internal/platform/observability"
	"github.com/lueurxax/catwalk/internal/platform/retry"
	"github.com/lueurxax/catwalk/migrations"
)

const (
	driverName    = "sqlite"
	storeName     = "sqlite"
	timeLayout    = time.RFC3339Nano
	busyTimeoutMS = 5000
)

// Store persists evaluations in a SQLite database file.
type Store struct {
	db     *sql.DB
	logger *zerolog.Logger
	Retry  retry.Config
}

// Open opens (creating if needed) the database at path and applies migrations.
func Open(ctx context.Context, path string, logger *zerolog.Logger) (*Store, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection serializes writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeoutMS),
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma: %w", err)
		}
	}

	if err := migrations.Up(ctx, db, goose.DialectSQLite3, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, logger: logger, Retry: retry.DefaultConfig()}, nil
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ReplaceEvaluations deletes the rows stored under key and inserts
// evaluations in one transaction, retrying while the database is busy.
func (s *Store) ReplaceEvaluations(ctx context.Context, key domain.EvaluationKey, evaluations []domain.Evaluation) error {
	if err := key.Validate(); err != nil {
		return err
	}

	table, _ := key.Matrix.Table() //nolint:errcheck // validated above

	rows := make([]domain.Evaluation, len(evaluations))
	copy(rows, evaluations)
	key.Stamp(rows)

	notify := func(err error, delay time.Duration) {
		observability.EvaluationWriteRetries.WithLabelValues(storeName).Inc()
		s.logger.Warn().Err(err).Dur("delay", delay).Str("table", table).Msg("sqlite busy writing evaluations, retrying")
	}

	err := retry.Do(ctx, s.Retry, IsTransient, notify, func(ctx context.Context) error {
		return s.replaceTx(ctx, table, key, rows)
	})
	if err != nil {
		return fmt.Errorf("replace %s for model %d: %w", table, key.ModelID, err)
	}

	observability.EvaluationsWritten.WithLabelValues(key.Matrix.String()).Add(float64(len(rows)))

	return nil
}

func (s *Store) replaceTx(ctx context.Context, table string, key domain.EvaluationKey, rows []domain.Evaluation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback() //nolint:errcheck // best-effort rollback
	}()

	//nolint:gosec // table name comes from domain.MatrixKind
	deleteSQL := fmt.Sprintf(`DELETE FROM %s
		WHERE model_id = ? AND evaluation_start_time = ? AND evaluation_end_time = ? AND as_of_date_frequency = ?`, table)

	if _, err := tx.ExecContext(ctx, deleteSQL, key.ModelID, formatTime(key.Start), formatTime(key.End), key.AsOfDateFrequency); err != nil {
		return fmt.Errorf("delete evaluations: %w", err)
	}

	//nolint:gosec // table name comes from domain.MatrixKind
	insertSQL := fmt.Sprintf(`INSERT INTO %s (
		model_id, evaluation_start_time, evaluation_end_time, as_of_date_frequency,
		metric, parameter, value, num_labeled_examples, num_labeled_above_threshold,
		num_positive_labels, sort_seed
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, table)

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range rows {
		if _, err := stmt.ExecContext(ctx,
			e.ModelID,
			formatTime(e.EvaluationStartTime),
			formatTime(e.EvaluationEndTime),
			e.AsOfDateFrequency,
			e.Metric,
			e.Parameter,
			nullableFloat(e.Value),
			e.NumLabeledExamples,
			e.NumLabeledAboveThreshold,
			e.NumPositiveLabels,
			e.SortSeed,
		); err != nil {
			return fmt.Errorf("insert evaluation %s %s: %w", e.Metric, e.Parameter, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// ListEvaluations returns rows stored under key ordered by metric, then parameter.
func (s *Store) ListEvaluations(ctx context.Context, key domain.EvaluationKey) ([]domain.Evaluation, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	table, _ := key.Matrix.Table() //nolint:errcheck // validated above

	//nolint:gosec // table name comes from domain.MatrixKind
	query := fmt.Sprintf(`SELECT model_id, evaluation_start_time, evaluation_end_time, as_of_date_frequency,
		metric, parameter, value, num_labeled_examples, num_labeled_above_threshold,
		num_positive_labels, sort_seed
		FROM %s
		WHERE model_id = ? AND evaluation_start_time = ? AND evaluation_end_time = ? AND as_of_date_frequency = ?
		ORDER BY metric, parameter`, table)

	rows, err := s.db.QueryContext(ctx, query, key.ModelID, formatTime(key.Start), formatTime(key.End), key.AsOfDateFrequency)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	var out []domain.Evaluation

	for rows.Next() {
		var (
			e          domain.Evaluation
			start, end any
			value      sql.NullFloat64
		)

		if err := rows.Scan(
			&e.ModelID,
			&start,
			&end,
			&e.AsOfDateFrequency,
			&e.Metric,
			&e.Parameter,
			&value,
			&e.NumLabeledExamples,
			&e.NumLabeledAboveThreshold,
			&e.NumPositiveLabels,
			&e.SortSeed,
		); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}

		if e.EvaluationStartTime, err = parseTime(start); err != nil {
			return nil, err
		}

		if e.EvaluationEndTime, err = parseTime(end); err != nil {
			return nil, err
		}

		e.Value = math.NaN()
		if value.Valid {
			e.Value = value.Float64
		}

		e.MatrixType = key.Matrix
		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}

	return out, nil
}

// IsTransient reports whether err is a busy or locked database.
func IsTransient(err error) bool {
	var sqliteErr *sqlite.Error
	if !apperrors.As(err, &sqliteErr) {
		return false
	}

	switch sqliteErr.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	default:
		return false
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		parsed, err := time.Parse(timeLayout, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse stored time %q: %w", t, err)
		}

		return parsed, nil
	case []byte:
		return parseTime(string(t))
	default:
		return time.Time{}, fmt.Errorf("unexpected stored time type %T", v)
	}
}

// nullableFloat stores NaN as NULL; SQLite has no NaN representation.
func nullableFloat(v float64) any {
	if math.IsNaN(v) {
		return nil
	}

	return v
}
