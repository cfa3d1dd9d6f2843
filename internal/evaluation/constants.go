package evaluation

// Log field names.
const (
	logFieldRunID          = "run_id"
	logFieldModelID        = "model_id"
	logFieldMatrix         = "matrix_type"
	logFieldWindowStart    = "evaluation_start_time"
	logFieldWindowEnd      = "evaluation_end_time"
	logFieldFrequency      = "as_of_date_frequency"
	logFieldSortSeed       = "sort_seed"
	logFieldMetric         = "metric"
	logFieldMetrics        = "metrics"
	logFieldParameter      = "parameter"
	logFieldLabeled        = "labeled_examples"
	logFieldAboveThreshold = "above_threshold"
	logFieldPositive       = "positive_labels"
	logFieldValue          = "value"
	logFieldPercentile     = "percentile"
	logFieldTopN           = "top_n"
	logFieldRecords        = "records"
)
