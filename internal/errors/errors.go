// Package errors provides custom error types for domain-specific errors.
//
// The simulation engine itself never raises errors for data or state
// problems; these sentinels belong to the edge layers (config, data
// loading, persistence) around it.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrScenarioNotFound = errors.New("scenario not found")
	ErrSeriesNotFound   = errors.New("price series not found")
	ErrSeriesEmpty      = errors.New("price series is empty")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrRunNotFound      = errors.New("run not found")
	ErrDataNotFound     = errors.New("data not found")
	ErrDatabaseError    = errors.New("database error")
)

// SeriesError represents an error loading or validating a price series.
type SeriesError struct {
	Ticker string
	Path   string
	Err    error
}

func (e *SeriesError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("series error [%s] %s: %v", e.Ticker, e.Path, e.Err)
	}
	return fmt.Sprintf("series error [%s]: %v", e.Ticker, e.Err)
}

func (e *SeriesError) Unwrap() error {
	return e.Err
}

// NewSeriesError creates a new SeriesError.
func NewSeriesError(ticker, path string, err error) *SeriesError {
	return &SeriesError{Ticker: ticker, Path: path, Err: err}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}
