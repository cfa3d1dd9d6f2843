package mocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lueurxax/catwalk/internal/core/domain"
	apperrors "github.com/lueurxax/catwalk/internal/core/errors"
	"github.com/lueurxax/catwalk/internal/core/ports"
)

var _ ports.EvaluationStore = (*EvaluationStore)(nil)

// errCustomTest is a static error for testing custom function overrides.
var errCustomTest = errors.New("custom test error")

const errFmtReplace = "ReplaceEvaluations() error = %v"

func testKey() domain.EvaluationKey {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	return domain.EvaluationKey{
		ModelID:           1,
		Start:             start,
		End:               start.AddDate(0, 1, 0),
		AsOfDateFrequency: "1d",
		Matrix:            domain.MatrixTest,
	}
}

func TestEvaluationStore_Replace(t *testing.T) {
	store := NewEvaluationStore()
	ctx := context.Background()
	key := testKey()

	first := []domain.Evaluation{{Metric: "recall@"}, {Metric: "precision@"}, {Metric: "f1"}}
	if err := store.ReplaceEvaluations(ctx, key, first); err != nil {
		t.Fatalf(errFmtReplace, err)
	}

	if err := store.ReplaceEvaluations(ctx, key, first[:1]); err != nil {
		t.Fatalf(errFmtReplace, err)
	}

	got, err := store.ListEvaluations(ctx, key)
	if err != nil {
		t.Fatalf("ListEvaluations() error = %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("ListEvaluations() returned %d rows, want 1", len(got))
	}

	if got[0].ModelID != key.ModelID || got[0].MatrixType != domain.MatrixTest {
		t.Errorf("stored row not stamped with key: %+v", got[0])
	}

	if first[0].ModelID != 0 {
		t.Error("ReplaceEvaluations() modified the caller's slice")
	}

	if store.Calls() != 2 {
		t.Errorf("Calls() = %d, want 2", store.Calls())
	}
}

func TestEvaluationStore_ListOrdered(t *testing.T) {
	store := NewEvaluationStore()
	ctx := context.Background()
	key := testKey()

	rows := []domain.Evaluation{
		{Metric: "recall@", Parameter: "2_abs"},
		{Metric: "precision@", Parameter: "5.0_pct"},
		{Metric: "precision@", Parameter: "1_abs"},
	}
	if err := store.ReplaceEvaluations(ctx, key, rows); err != nil {
		t.Fatalf(errFmtReplace, err)
	}

	got, _ := store.ListEvaluations(ctx, key)

	want := []string{"precision@ 1_abs", "precision@ 5.0_pct", "recall@ 2_abs"}
	for i, ev := range got {
		if ev.Metric+" "+ev.Parameter != want[i] {
			t.Errorf("row %d = %s %s, want %s", i, ev.Metric, ev.Parameter, want[i])
		}
	}
}

func TestEvaluationStore_CustomFnAborts(t *testing.T) {
	store := NewEvaluationStore()
	ctx := context.Background()
	key := testKey()

	if err := store.ReplaceEvaluations(ctx, key, []domain.Evaluation{{Metric: "f1"}}); err != nil {
		t.Fatalf(errFmtReplace, err)
	}

	store.ReplaceEvaluationsFn = func(context.Context, domain.EvaluationKey, []domain.Evaluation) error {
		return errCustomTest
	}

	err := store.ReplaceEvaluations(ctx, key, nil)
	if !errors.Is(err, errCustomTest) {
		t.Fatalf("ReplaceEvaluations() error = %v, want %v", err, errCustomTest)
	}

	if store.Count() != 1 {
		t.Errorf("Count() = %d, want previous row preserved", store.Count())
	}
}

func TestEvaluationStore_Errors(t *testing.T) {
	store := NewEvaluationStore()
	ctx := context.Background()

	badKey := testKey()
	badKey.Matrix = domain.MatrixUnknown

	if err := store.ReplaceEvaluations(ctx, badKey, nil); !errors.Is(err, apperrors.ErrUnknownMatrixType) {
		t.Errorf("ReplaceEvaluations() error = %v, want %v", err, apperrors.ErrUnknownMatrixType)
	}

	_ = store.Close()

	if err := store.ReplaceEvaluations(ctx, testKey(), nil); !errors.Is(err, apperrors.ErrStoreClosed) {
		t.Errorf("ReplaceEvaluations() error = %v, want %v", err, apperrors.ErrStoreClosed)
	}

	store.Reset()

	if err := store.ReplaceEvaluations(ctx, testKey(), nil); err != nil {
		t.Errorf("ReplaceEvaluations() after Reset error = %v", err)
	}
}
