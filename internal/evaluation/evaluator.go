// Package evaluation scores model predictions against ground-truth labels and
// persists the results per model and evaluation window.
//
// An Evaluate call ranks the prediction set deterministically, binarizes it at
// every configured threshold, scores each metric group and replaces the rows
// previously stored for the same (model, window, frequency, matrix) key.
package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lueurxax/catwalk/internal/core/domain"
	apperrors "github.com/lueurxax/catwalk/internal/core/errors"
	"github.com/lueurxax/catwalk/internal/core/ports"
	"github.com/lueurxax/catwalk/internal/metrics"
	"github.com/lueurxax/catwalk/internal/platform/observability"
)

// Options tunes a ModelEvaluator.
type Options struct {
	// SortSeed fixes tie-breaking between equal scores. Zero means the
	// current Unix time; the seed in use is stored on every record.
	SortSeed int64

	Logger *zerolog.Logger
}

// ModelEvaluator scores prediction sets with the metrics it was configured with.
// It is safe for concurrent use once constructed.
type ModelEvaluator struct {
	groups   GroupConfig
	registry *metrics.Registry
	writer   ports.EvaluationWriter
	sortSeed int64
	logger   *zerolog.Logger
}

// Request is one unit of work: a prediction set for one model and window.
type Request struct {
	Scores            []float64
	Labels            []float64
	ModelID           int64
	Start             time.Time
	End               time.Time
	AsOfDateFrequency string
	Matrix            domain.MatrixKind
}

// Key returns the replacement key of the request.
func (r Request) Key() domain.EvaluationKey {
	return domain.EvaluationKey{
		ModelID:           r.ModelID,
		Start:             r.Start,
		End:               r.End,
		AsOfDateFrequency: r.AsOfDateFrequency,
		Matrix:            r.Matrix,
	}
}

// NewModelEvaluator creates an evaluator. A nil registry selects the built-in metrics.
func NewModelEvaluator(groups GroupConfig, registry *metrics.Registry, writer ports.EvaluationWriter, opts Options) (*ModelEvaluator, error) {
	if writer == nil {
		return nil, fmt.Errorf("%w: evaluation writer is required", apperrors.ErrInvalidConfig)
	}

	if err := groups.Validate(); err != nil {
		return nil, err
	}

	if registry == nil {
		registry = metrics.NewRegistry()
	}

	seed := opts.SortSeed
	if seed == 0 {
		seed = time.Now().Unix()
	}

	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &ModelEvaluator{
		groups:   groups,
		registry: registry,
		writer:   writer,
		sortSeed: seed,
		logger:   logger,
	}, nil
}

// SortSeed returns the seed used for tie-breaking.
func (e *ModelEvaluator) SortSeed() int64 {
	return e.sortSeed
}

// Registry returns the metrics available to this evaluator.
func (e *ModelEvaluator) Registry() *metrics.Registry {
	return e.registry
}

// Evaluate scores req and replaces the stored evaluations for its key.
// Nothing is written unless every metric in every group succeeds.
func (e *ModelEvaluator) Evaluate(ctx context.Context, req Request) error {
	started := time.Now()

	logger := e.logger.With().
		Str(logFieldRunID, uuid.NewString()).
		Int64(logFieldModelID, req.ModelID).
		Str(logFieldMatrix, req.Matrix.String()).
		Logger()

	logger.Info().
		Time(logFieldWindowStart, req.Start).
		Time(logFieldWindowEnd, req.End).
		Str(logFieldFrequency, req.AsOfDateFrequency).
		Int64(logFieldSortSeed, e.sortSeed).
		Msg("generating evaluations")

	evaluations, err := e.compute(&logger, req)
	if err != nil {
		observability.EvaluationUnitFailures.WithLabelValues(failureReason(err)).Inc()
		return err
	}

	logger.Info().Int(logFieldRecords, len(evaluations)).Msg("writing evaluations")

	if err := e.writer.ReplaceEvaluations(ctx, req.Key(), evaluations); err != nil {
		observability.EvaluationUnitFailures.WithLabelValues(observability.FailureWrite).Inc()
		return fmt.Errorf("write evaluations for model %d: %w", req.ModelID, err)
	}

	observability.EvaluationUnitDuration.WithLabelValues(req.Matrix.String()).Observe(time.Since(started).Seconds())
	logger.Info().Dur("duration", time.Since(started)).Msg("done writing evaluations")

	return nil
}

// Compute returns the evaluations for req without writing them.
func (e *ModelEvaluator) Compute(req Request) ([]domain.Evaluation, error) {
	return e.compute(e.logger, req)
}

func (e *ModelEvaluator) compute(logger *zerolog.Logger, req Request) ([]domain.Evaluation, error) {
	groups, err := e.groups.For(req.Matrix)
	if err != nil {
		return nil, err
	}

	scores, labels, err := SortPredictionsAndLabels(req.Scores, req.Labels, e.sortSeed)
	if err != nil {
		return nil, err
	}

	var evaluations []domain.Evaluation

	for _, group := range groups {
		generated, err := e.evaluateGroup(logger, group, scores, labels, req.Matrix)
		if err != nil {
			return nil, err
		}

		evaluations = append(evaluations, generated...)
	}

	observability.EvaluationRecordsGenerated.Observe(float64(len(evaluations)))

	return evaluations, nil
}

func (e *ModelEvaluator) evaluateGroup(
	logger *zerolog.Logger,
	group MetricGroup,
	scores, labels []float64,
	matrix domain.MatrixKind,
) ([]domain.Evaluation, error) {
	logger.Debug().Strs(logFieldMetrics, group.Metrics).Msg("creating evaluations for metric group")

	parameters := group.ParameterCombinations()

	// Full-population scoring keeps rows with missing labels; thresholded
	// scoring below drops them.
	if group.Thresholds == nil {
		logger.Debug().Msg("not a thresholded group, generating evaluation based on all predictions")

		return e.generateEvaluations(
			logger,
			group.Metrics,
			parameters,
			domain.NoThreshold(),
			scores,
			GenerateBinaryAt(len(scores), domain.NoThreshold()),
			labels,
			matrix,
		)
	}

	var evaluations []domain.Evaluation

	for _, threshold := range group.Thresholds.List() {
		logThreshold(logger, threshold)

		predictions, present := dropMissingLabels(GenerateBinaryAt(len(scores), threshold), labels)

		generated, err := e.generateEvaluations(logger, group.Metrics, parameters, threshold, nil, predictions, present, matrix)
		if err != nil {
			return nil, err
		}

		evaluations = append(evaluations, generated...)
	}

	return evaluations, nil
}

func logThreshold(logger *zerolog.Logger, threshold domain.Threshold) {
	switch threshold.Unit {
	case domain.ThresholdPercentile:
		logger.Debug().Float64(logFieldPercentile, threshold.Percentile).Msg("processing percent threshold")
	case domain.ThresholdTopN:
		logger.Debug().Int(logFieldTopN, threshold.TopN).Msg("processing absolute threshold")
	}
}

func failureReason(err error) string {
	switch {
	case apperrors.Is(err, apperrors.ErrUnknownMetric):
		return observability.FailureUnknownMetric
	case apperrors.Is(err, apperrors.ErrUndefinedMetric):
		return observability.FailureUndefinedMetric
	case apperrors.Is(err, apperrors.ErrLengthMismatch), apperrors.Is(err, apperrors.ErrUnknownMatrixType):
		return observability.FailureInput
	default:
		return observability.FailureOther
	}
}
