// Package errors provides structured error types for codepad, including
// the single narrowed CompileError shape the compile pipeline handles.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeTransform ErrorType = "transform"
	ErrorTypeConfig    ErrorType = "config"
)

// CodepadError is a structured error type with context.
type CodepadError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *CodepadError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *CodepadError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *CodepadError) Is(target error) bool {
	var t *CodepadError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// NewTransformError creates a transform error.
func NewTransformError(code, message string, cause error) *CodepadError {
	return &CodepadError{
		Type:    ErrorTypeTransform,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *CodepadError {
	return &CodepadError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// Common error codes.
const (
	ErrCodeTransformFailed = "ERR_TRANSFORM_FAILED"
	ErrCodeCommandNotFound = "ERR_COMMAND_NOT_FOUND"
	ErrCodeConfigInvalid   = "ERR_CONFIG_INVALID"
)
