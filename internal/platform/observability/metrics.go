package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure reasons recorded on EvaluationUnitFailures.
const (
	FailureUnknownMetric   = "unknown_metric"
	FailureUndefinedMetric = "undefined_metric"
	FailureInput           = "input"
	FailureWrite           = "write"
	FailureOther           = "other"
)

var (
	EvaluationsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catwalk_evaluations_written_total",
		Help: "The total number of evaluation rows committed",
	}, []string{"matrix_type"})

	EvaluationWriteRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catwalk_evaluation_write_retries_total",
		Help: "Number of evaluation writes retried after a transient store failure",
	}, []string{"store"})

	EvaluationUnitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catwalk_evaluation_unit_duration_seconds",
		Help:    "Duration of one model/window evaluation including the write",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"matrix_type"})

	EvaluationUnitFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catwalk_evaluation_unit_failures_total",
		Help: "Number of evaluation units aborted, by reason",
	}, []string{"reason"})

	EvaluationRecordsGenerated = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catwalk_evaluation_records_generated",
		Help:    "Number of evaluation records generated per unit",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
)
