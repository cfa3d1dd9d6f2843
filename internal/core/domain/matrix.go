package domain

import (
	"fmt"
	"strings"

	apperrors "github.com/lueurxax/catwalk/internal/core/errors"
)

// MatrixKind identifies which matrix a prediction set was scored on.
// The zero value is invalid so callers always choose explicitly.
type MatrixKind int

const (
	MatrixUnknown MatrixKind = iota
	MatrixTrain
	MatrixTest
)

// Evaluation table names per matrix kind.
const (
	TrainEvaluationsTable = "train_evaluations"
	TestEvaluationsTable  = "test_evaluations"
)

// ParseMatrixKind accepts "train" or "test" in any case.
func ParseMatrixKind(s string) (MatrixKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "train":
		return MatrixTrain, nil
	case "test":
		return MatrixTest, nil
	default:
		return MatrixUnknown, fmt.Errorf("%w: %q, select 'Train' or 'Test'", apperrors.ErrUnknownMatrixType, s)
	}
}

// Valid reports whether k is Train or Test.
func (k MatrixKind) Valid() bool {
	return k == MatrixTrain || k == MatrixTest
}

func (k MatrixKind) String() string {
	switch k {
	case MatrixTrain:
		return "Train"
	case MatrixTest:
		return "Test"
	default:
		return "Unknown"
	}
}

// Table returns the evaluation table that stores rows for k.
func (k MatrixKind) Table() (string, error) {
	switch k {
	case MatrixTrain:
		return TrainEvaluationsTable, nil
	case MatrixTest:
		return TestEvaluationsTable, nil
	default:
		return "", fmt.Errorf("%w: %d", apperrors.ErrUnknownMatrixType, int(k))
	}
}
