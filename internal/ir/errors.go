package ir

import (
	"errors"
	"fmt"
)

// AnalysisError is the typed error surfaced by the pipeline components.
//
// Only structurally invalid input produces an AnalysisError. Bad but
// well-typed data (an empty stroke list, a poor drawing) is scored, not
// rejected, and a session with no usable ink is reported through
// FeatureVector.Degenerate rather than as an error.
type AnalysisError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Field names the offending input, if any (e.g. "strokes[2].points[5].timestamp").
	Field string

	// TaskID is set for task-related errors.
	TaskID string

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes analysis errors.
type ErrorCode string

const (
	// ErrCodeInvalidInput indicates structurally invalid input, rejected before any computation.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrCodeUnsupportedTask indicates a task identifier without a reference definition.
	ErrCodeUnsupportedTask ErrorCode = "UNSUPPORTED_TASK"

	// ErrCodeMalformedReference indicates an inconsistent task reference definition.
	ErrCodeMalformedReference ErrorCode = "MALFORMED_REFERENCE"

	// ErrCodeInvalidConfig indicates an inconsistent weight table or feature configuration.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	if e.TaskID != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s (task=%s, field=%s)", e.Code, e.Message, e.TaskID, e.Field)
	}
	if e.TaskID != "" {
		return fmt.Sprintf("%s: %s (task=%s)", e.Code, e.Message, e.TaskID)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidInput creates an AnalysisError for structurally invalid input.
func NewInvalidInput(field, format string, args ...any) *AnalysisError {
	return &AnalysisError{
		Code:    ErrCodeInvalidInput,
		Message: fmt.Sprintf(format, args...),
		Field:   field,
	}
}

// NewUnsupportedTask creates an AnalysisError for a task without a reference definition.
func NewUnsupportedTask(taskID string) *AnalysisError {
	return &AnalysisError{
		Code:    ErrCodeUnsupportedTask,
		Message: "no reference definition for task",
		TaskID:  taskID,
	}
}

// NewMalformedReference creates an AnalysisError for an inconsistent reference definition.
func NewMalformedReference(taskID, field, format string, args ...any) *AnalysisError {
	return &AnalysisError{
		Code:    ErrCodeMalformedReference,
		Message: fmt.Sprintf(format, args...),
		TaskID:  taskID,
		Field:   field,
	}
}

// NewInvalidConfig creates an AnalysisError for an inconsistent configuration.
func NewInvalidConfig(field, format string, args ...any) *AnalysisError {
	return &AnalysisError{
		Code:    ErrCodeInvalidConfig,
		Message: fmt.Sprintf(format, args...),
		Field:   field,
	}
}

// IsInvalidInput returns true if err is (or wraps) an INVALID_INPUT error.
func IsInvalidInput(err error) bool {
	return hasCode(err, ErrCodeInvalidInput)
}

// IsUnsupportedTask returns true if err is (or wraps) an UNSUPPORTED_TASK error.
func IsUnsupportedTask(err error) bool {
	return hasCode(err, ErrCodeUnsupportedTask)
}

// IsMalformedReference returns true if err is (or wraps) a MALFORMED_REFERENCE error.
func IsMalformedReference(err error) bool {
	return hasCode(err, ErrCodeMalformedReference)
}

// IsInvalidConfig returns true if err is (or wraps) an INVALID_CONFIG error.
func IsInvalidConfig(err error) bool {
	return hasCode(err, ErrCodeInvalidConfig)
}

// CodeOf returns the error code of err, or "" if err is not an AnalysisError.
func CodeOf(err error) ErrorCode {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

func hasCode(err error, code ErrorCode) bool {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
