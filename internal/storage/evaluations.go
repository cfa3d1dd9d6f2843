package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lueurxax/catwalk/internal/core/domain"
	"github.com/lueurxax/catwalk/internal/platform/observability"
	"github.com/lueurxax/catwalk/internal/platform/retry"
)

var evaluationColumns = []string{
	"model_id",
	"evaluation_start_time",
	"evaluation_end_time",
	"as_of_date_frequency",
	"metric",
	"parameter",
	"value",
	"num_labeled_examples",
	"num_labeled_above_threshold",
	"num_positive_labels",
	"sort_seed",
}

// ReplaceEvaluations deletes the rows stored under key and inserts
// evaluations in one transaction, retrying transient failures.
func (db *DB) ReplaceEvaluations(ctx context.Context, key domain.EvaluationKey, evaluations []domain.Evaluation) error {
	if err := key.Validate(); err != nil {
		return err
	}

	table, _ := key.Matrix.Table() //nolint:errcheck // validated above

	key = utcKey(key)

	rows := make([]domain.Evaluation, len(evaluations))
	copy(rows, evaluations)
	key.Stamp(rows)

	attempt := 0

	notify := func(err error, delay time.Duration) {
		attempt++

		observability.EvaluationWriteRetries.WithLabelValues(storeName).Inc()
		db.Logger.Warn().
			Err(err).
			Int(logFieldAttempt, attempt).
			Dur(logFieldDelay, delay).
			Str(logFieldTable, table).
			Int64(logFieldModelID, key.ModelID).
			Msg("transient failure writing evaluations, retrying")
	}

	err := retry.Do(ctx, db.Retry, IsTransient, notify, func(ctx context.Context) error {
		return db.replaceEvaluationsTx(ctx, table, key, rows)
	})
	if err != nil {
		return fmt.Errorf("replace %s for model %d: %w", table, key.ModelID, err)
	}

	observability.EvaluationsWritten.WithLabelValues(key.Matrix.String()).Add(float64(len(rows)))
	db.Logger.Debug().Str(logFieldTable, table).Int(logFieldRows, len(rows)).Msg("evaluations committed")

	return nil
}

func (db *DB) replaceEvaluationsTx(ctx context.Context, table string, key domain.EvaluationKey, rows []domain.Evaluation) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx) //nolint:errcheck // rollback after commit returns error, this is best-effort cleanup
	}()

	ident := pgx.Identifier{table}

	//nolint:gosec // table name comes from domain.MatrixKind, not user input
	deleteSQL := fmt.Sprintf(`
		DELETE FROM %s
		WHERE model_id = $1
		  AND evaluation_start_time = $2
		  AND evaluation_end_time = $3
		  AND as_of_date_frequency = $4
	`, ident.Sanitize())

	if _, err := tx.Exec(ctx, deleteSQL, key.ModelID, key.Start, key.End, key.AsOfDateFrequency); err != nil {
		return fmt.Errorf("delete evaluations: %w", err)
	}

	if len(rows) > 0 {
		source := pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			e := rows[i]

			return []any{
				e.ModelID,
				e.EvaluationStartTime,
				e.EvaluationEndTime,
				e.AsOfDateFrequency,
				e.Metric,
				e.Parameter,
				e.Value,
				int32(e.NumLabeledExamples),       //nolint:gosec // counts of one prediction set fit in int32
				int32(e.NumLabeledAboveThreshold), //nolint:gosec // counts of one prediction set fit in int32
				int32(e.NumPositiveLabels),        //nolint:gosec // counts of one prediction set fit in int32
				e.SortSeed,
			}, nil
		})

		if _, err := tx.CopyFrom(ctx, ident, evaluationColumns, source); err != nil {
			return fmt.Errorf("copy evaluations: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// ListEvaluations returns rows stored under key ordered by metric, then parameter.
func (db *DB) ListEvaluations(ctx context.Context, key domain.EvaluationKey) ([]domain.Evaluation, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	table, _ := key.Matrix.Table() //nolint:errcheck // validated above
	key = utcKey(key)

	//nolint:gosec // table name comes from domain.MatrixKind, not user input
	query := fmt.Sprintf(`
		SELECT model_id, evaluation_start_time, evaluation_end_time, as_of_date_frequency,
		       metric, parameter, value, num_labeled_examples, num_labeled_above_threshold,
		       num_positive_labels, sort_seed
		FROM %s
		WHERE model_id = $1
		  AND evaluation_start_time = $2
		  AND evaluation_end_time = $3
		  AND as_of_date_frequency = $4
		ORDER BY metric, parameter
	`, pgx.Identifier{table}.Sanitize())

	rows, err := db.Pool.Query(ctx, query, key.ModelID, key.Start, key.End, key.AsOfDateFrequency)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	var out []domain.Evaluation

	for rows.Next() {
		var (
			e                                  domain.Evaluation
			labeled, aboveThreshold, positives int32
		)

		if err := rows.Scan(
			&e.ModelID,
			&e.EvaluationStartTime,
			&e.EvaluationEndTime,
			&e.AsOfDateFrequency,
			&e.Metric,
			&e.Parameter,
			&e.Value,
			&labeled,
			&aboveThreshold,
			&positives,
			&e.SortSeed,
		); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}

		e.MatrixType = key.Matrix
		e.NumLabeledExamples = int(labeled)
		e.NumLabeledAboveThreshold = int(aboveThreshold)
		e.NumPositiveLabels = int(positives)
		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}

	return out, nil
}

// utcKey normalizes window bounds so TIMESTAMP columns compare consistently.
func utcKey(key domain.EvaluationKey) domain.EvaluationKey {
	key.Start = key.Start.UTC()
	key.End = key.End.UTC()

	return key
}
