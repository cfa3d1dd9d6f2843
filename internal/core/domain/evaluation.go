package domain

import (
	"fmt"
	"time"
)

// Evaluation is one persisted metric value for a model over an evaluation window.
type Evaluation struct {
	ModelID                  int64
	EvaluationStartTime      time.Time
	EvaluationEndTime        time.Time
	AsOfDateFrequency        string
	MatrixType               MatrixKind
	Metric                   string
	Parameter                string
	Value                    float64
	NumLabeledExamples       int
	NumLabeledAboveThreshold int
	NumPositiveLabels        int
	SortSeed                 int64
}

// EvaluationKey identifies the set of rows replaced by a single write.
type EvaluationKey struct {
	ModelID           int64
	Start             time.Time
	End               time.Time
	AsOfDateFrequency string
	Matrix            MatrixKind
}

// Validate checks that the key selects a known evaluation table.
func (k EvaluationKey) Validate() error {
	if _, err := k.Matrix.Table(); err != nil {
		return fmt.Errorf("evaluation key for model %d: %w", k.ModelID, err)
	}

	return nil
}

// Stamp writes the key fields onto every evaluation in place.
func (k EvaluationKey) Stamp(evaluations []Evaluation) {
	for i := range evaluations {
		evaluations[i].ModelID = k.ModelID
		evaluations[i].EvaluationStartTime = k.Start
		evaluations[i].EvaluationEndTime = k.End
		evaluations[i].AsOfDateFrequency = k.AsOfDateFrequency
		evaluations[i].MatrixType = k.Matrix
	}
}
