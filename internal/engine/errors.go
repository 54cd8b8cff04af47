// internal/engine/errors.go
package engine

import (
	"errors"
	"fmt"
)

// Common engine errors
var (
	ErrClosed = errors.New("session closed")
	ErrStale  = errors.New("element is no longer attached to the document")
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrCodeTimeout    ErrorCode = "TIMEOUT"
	ErrCodeValidation ErrorCode = "VALIDATION"
	ErrCodeBrowser    ErrorCode = "BROWSER"
	ErrCodeNavigation ErrorCode = "NAVIGATION"
	ErrCodeExtract    ErrorCode = "EXTRACT"
)

// ErrNotFound matches any EngineError carrying ErrCodeNotFound via errors.Is
var ErrNotFound = &EngineError{Code: ErrCodeNotFound}

// EngineError wraps errors with additional context
type EngineError struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Retry      bool
	Details    map[string]interface{}
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target
func (e *EngineError) Is(target error) bool {
	if t, ok := target.(*EngineError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// NewEngineError creates a new EngineError
func NewEngineError(code ErrorCode, message string, err error) *EngineError {
	return &EngineError{
		Code:       code,
		Message:    message,
		Underlying: err,
		Details:    make(map[string]interface{}),
	}
}

// NotFoundError reports that no strategy of a chain matched anything on the page
func NotFoundError(role string, selectors []string) *EngineError {
	return NewEngineError(ErrCodeNotFound, role+" not found", nil).
		WithDetail("role", role).
		WithDetail("selectors", selectors)
}

// WithRetry marks the error as retryable
func (e *EngineError) WithRetry() *EngineError {
	e.Retry = true
	return e
}

// WithDetail adds a detail to the error
func (e *EngineError) WithDetail(key string, value interface{}) *EngineError {
	e.Details[key] = value
	return e
}

// CodeOf returns the code of the first EngineError in err's chain, or "" if there is none
func CodeOf(err error) ErrorCode {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}
