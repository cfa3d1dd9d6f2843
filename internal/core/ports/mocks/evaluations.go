package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lueurxax/catwalk/internal/core/domain"
	apperrors "github.com/lueurxax/catwalk/internal/core/errors"
)

// EvaluationStore is a thread-safe in-memory implementation of ports.EvaluationStore.
// ReplaceEvaluations is atomic: a failing call leaves stored rows untouched.
type EvaluationStore struct {
	mu     sync.RWMutex
	rows   map[storeKey][]domain.Evaluation
	calls  int
	closed bool

	// ReplaceEvaluationsFn allows overriding ReplaceEvaluations behavior.
	// Returning a nil error falls through to the in-memory write.
	ReplaceEvaluationsFn func(ctx context.Context, key domain.EvaluationKey, evaluations []domain.Evaluation) error
}

type storeKey struct {
	modelID   int64
	start     time.Time
	end       time.Time
	frequency string
	matrix    domain.MatrixKind
}

func toStoreKey(key domain.EvaluationKey) storeKey {
	return storeKey{
		modelID:   key.ModelID,
		start:     key.Start.UTC(),
		end:       key.End.UTC(),
		frequency: key.AsOfDateFrequency,
		matrix:    key.Matrix,
	}
}

// NewEvaluationStore creates a new mock evaluation store.
func NewEvaluationStore() *EvaluationStore {
	return &EvaluationStore{
		rows: make(map[storeKey][]domain.Evaluation),
	}
}

// ReplaceEvaluations replaces every row stored under key.
func (s *EvaluationStore) ReplaceEvaluations(ctx context.Context, key domain.EvaluationKey, evaluations []domain.Evaluation) error {
	s.mu.Lock()
	s.calls++
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return apperrors.ErrStoreClosed
	}

	if err := key.Validate(); err != nil {
		return err
	}

	if s.ReplaceEvaluationsFn != nil {
		if err := s.ReplaceEvaluationsFn(ctx, key, evaluations); err != nil {
			return err
		}
	}

	stamped := make([]domain.Evaluation, len(evaluations))
	copy(stamped, evaluations)
	key.Stamp(stamped)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[toStoreKey(key)] = stamped

	return nil
}

// ListEvaluations returns rows stored under key ordered by metric, then parameter.
func (s *EvaluationStore) ListEvaluations(_ context.Context, key domain.EvaluationKey) ([]domain.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, apperrors.ErrStoreClosed
	}

	stored := s.rows[toStoreKey(key)]
	out := make([]domain.Evaluation, len(stored))
	copy(out, stored)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Metric != out[j].Metric {
			return out[i].Metric < out[j].Metric
		}

		return out[i].Parameter < out[j].Parameter
	})

	return out, nil
}

// Close marks the store closed.
func (s *EvaluationStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true

	return nil
}

// Calls returns how many times ReplaceEvaluations was invoked.
func (s *EvaluationStore) Calls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.calls
}

// Count returns the total number of stored rows across all keys.
func (s *EvaluationStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, rows := range s.rows {
		total += len(rows)
	}

	return total
}

// Reset clears all stored rows and counters.
func (s *EvaluationStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = make(map[storeKey][]domain.Evaluation)
	s.calls = 0
	s.closed = false
}
