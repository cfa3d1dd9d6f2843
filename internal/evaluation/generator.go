package evaluation

import (
	"fmt"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"

	"github.com/lueurxax/catwalk/internal/core/domain"
	apperrors "github.com/lueurxax/catwalk/internal/core/errors"
)

// labelCounts summarizes one prediction set. It is identical for every
// metric scored from that set.
type labelCounts struct {
	labeled        int
	aboveThreshold int
	positive       int
}

func isOne(v float64) bool { return v == 1 }

func countLabels(predictions, labels []float64) labelCounts {
	return labelCounts{
		labeled:        len(labels),
		aboveThreshold: floats.Count(isOne, predictions),
		positive:       floats.Count(isOne, labels),
	}
}

// generateEvaluations scores every (metric, parameter combination) pair for a
// single prediction set. scores may be nil when only binary predictions exist.
// The first unknown or failing metric aborts the call and no records are returned.
func (e *ModelEvaluator) generateEvaluations(
	logger *zerolog.Logger,
	metricNames []string,
	parameters []domain.Params,
	threshold domain.Threshold,
	scores, predictions, labels []float64,
	matrix domain.MatrixKind,
) ([]domain.Evaluation, error) {
	if !matrix.Valid() {
		return nil, fmt.Errorf("generate evaluations: %w: %s", apperrors.ErrUnknownMatrixType, matrix)
	}

	if len(predictions) != len(labels) || (scores != nil && len(scores) != len(labels)) {
		return nil, fmt.Errorf("generate evaluations: %w: %d scores, %d predictions, %d labels",
			apperrors.ErrLengthMismatch, len(scores), len(predictions), len(labels))
	}

	counts := countLabels(predictions, labels)
	thresholdParams := threshold.Params()
	evaluations := make([]domain.Evaluation, 0, len(metricNames)*len(parameters))

	for _, name := range metricNames {
		metric, err := e.registry.Lookup(name)
		if err != nil {
			return nil, err
		}

		for _, combination := range parameters {
			value, err := metric.Func(scores, predictions, labels, combination)
			if err != nil {
				return nil, fmt.Errorf("compute %s: %w", name, err)
			}

			parameter := combination.Merge(thresholdParams).String()

			logger.Info().
				Str(logFieldMetric, name).
				Str(logFieldParameter, parameter).
				Int(logFieldLabeled, counts.labeled).
				Int(logFieldAboveThreshold, counts.aboveThreshold).
				Int(logFieldPositive, counts.positive).
				Float64(logFieldValue, value).
				Msg("evaluation computed")

			evaluations = append(evaluations, domain.Evaluation{
				MatrixType:               matrix,
				Metric:                   name,
				Parameter:                parameter,
				Value:                    value,
				NumLabeledExamples:       counts.labeled,
				NumLabeledAboveThreshold: counts.aboveThreshold,
				NumPositiveLabels:        counts.positive,
				SortSeed:                 e.sortSeed,
			})
		}
	}

	return evaluations, nil
}
