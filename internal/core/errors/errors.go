// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - Unexported errors (err*): Use for internal package errors
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Metric registry errors.
var (
	// ErrUnknownMetric indicates a requested metric name is not registered.
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrInvalidCustomMetric indicates a custom metric was declared without a
	// scoring function or without a greater-is-better direction.
	ErrInvalidCustomMetric = errors.New("invalid custom metric")

	// ErrUndefinedMetric indicates a metric has no defined value for the given inputs,
	// for example ROC AUC over a single class.
	ErrUndefinedMetric = errors.New("metric undefined for input")
)

// Evaluation input errors.
var (
	// ErrUnknownMatrixType indicates a matrix type other than Train or Test.
	ErrUnknownMatrixType = errors.New("unknown matrix type")

	// ErrLengthMismatch indicates parallel score and label sequences differ in length.
	ErrLengthMismatch = errors.New("scores and labels length mismatch")
)

// Configuration errors.
var (
	// ErrInvalidConfig indicates configuration failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedDriver indicates an unknown storage driver was requested.
	ErrUnsupportedDriver = errors.New("unsupported storage driver")
)

// Persistence errors.
var (
	// ErrStoreClosed indicates the store was used after Close.
	ErrStoreClosed = errors.New("store closed")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
