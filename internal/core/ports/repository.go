// Package ports provides domain-centric interfaces for external dependencies.
// These interfaces follow the ports and adapters (hexagonal) architecture pattern,
// allowing the evaluation engine to remain independent of the backing store.
package ports

import (
	"context"

	"github.com/lueurxax/catwalk/internal/core/domain"
)

// EvaluationWriter persists the evaluations of one unit of work.
//
// ReplaceEvaluations deletes every row stored under key and inserts evaluations
// in a single transaction. Implementations stamp key onto each evaluation and
// retry transient store failures; re-running with the same key is idempotent.
type EvaluationWriter interface {
	ReplaceEvaluations(ctx context.Context, key domain.EvaluationKey, evaluations []domain.Evaluation) error
}

// EvaluationReader reads persisted evaluations back for comparison.
type EvaluationReader interface {
	// ListEvaluations returns rows stored under key ordered by metric, then parameter.
	ListEvaluations(ctx context.Context, key domain.EvaluationKey) ([]domain.Evaluation, error)
}

// EvaluationStore combines evaluation read and write operations.
type EvaluationStore interface {
	EvaluationWriter
	EvaluationReader
	Close() error
}
