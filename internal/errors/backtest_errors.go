package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the failure domains of a backtest run
type ErrorCategory string

const (
	// Fatal for the whole run
	ErrorCategoryData          ErrorCategory = "DATA"
	ErrorCategorySimulation    ErrorCategory = "SIMULATION"
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"

	// Contained inside the stage that raised them
	ErrorCategoryIndicator      ErrorCategory = "INDICATOR"
	ErrorCategoryConditionParse ErrorCategory = "CONDITION_PARSE"
	ErrorCategoryExecution      ErrorCategory = "EXECUTION"
)

// BacktestError represents a categorized error with context
type BacktestError struct {
	Category   ErrorCategory
	Stage      string
	Operation  string
	Message    string
	Underlying error
	Context    map[string]interface{}
}

// Error implements the error interface
func (e *BacktestError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Stage, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Stage, e.Operation, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *BacktestError) Unwrap() error {
	return e.Underlying
}

// IsFatal returns whether this error aborts the whole run
func (e *BacktestError) IsFatal() bool {
	return e.Category == ErrorCategoryData ||
		e.Category == ErrorCategorySimulation ||
		e.Category == ErrorCategoryConfiguration
}

// WithContext adds context information to the error
func (e *BacktestError) WithContext(key string, value interface{}) *BacktestError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewBacktestError creates a new categorized error
func NewBacktestError(category ErrorCategory, stage, operation, message string) *BacktestError {
	return &BacktestError{
		Category:  category,
		Stage:     stage,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with backtest error context
func WrapError(err error, category ErrorCategory, stage, operation string) *BacktestError {
	if err == nil {
		return nil
	}

	return &BacktestError{
		Category:   category,
		Stage:      stage,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
		Context:    make(map[string]interface{}),
	}
}

// CategoryOf returns the category of err, or "" when err is not a BacktestError
func CategoryOf(err error) ErrorCategory {
	var btErr *BacktestError
	if stderrors.As(err, &btErr) {
		return btErr.Category
	}
	return ""
}

// Is reports whether err is a BacktestError of the given category
func Is(err error, category ErrorCategory) bool {
	return CategoryOf(err) == category
}

// Common error constructors
func NewDataError(stage, operation, message string) *BacktestError {
	return NewBacktestError(ErrorCategoryData, stage, operation, message)
}

func NewIndicatorError(indicator string, err error) *BacktestError {
	return WrapError(err, ErrorCategoryIndicator, "indicators", "compute "+indicator)
}

func NewConditionParseError(clause string) *BacktestError {
	return NewBacktestError(ErrorCategoryConditionParse, "signals", "interpret clause", "no interpreter matched").
		WithContext("clause", clause)
}

func NewExecutionError(index int, message string) *BacktestError {
	return NewBacktestError(ErrorCategoryExecution, "simulation", "process bar", message).
		WithContext("bar", index)
}

func NewSimulationFailure(stage string, err error) *BacktestError {
	return WrapError(err, ErrorCategorySimulation, stage, "run stage")
}

func NewConfigurationError(stage, operation, message string) *BacktestError {
	return NewBacktestError(ErrorCategoryConfiguration, stage, operation, message)
}

// FromPanic converts a recovered panic value into an error
func FromPanic(recovered interface{}) error {
	if err, ok := recovered.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", recovered)
}
