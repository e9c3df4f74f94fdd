// internal/common/errors/errors.go

// Package errors provides standardized error handling for the hiring pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidTransition    ErrorCode = "INVALID_TRANSITION"
	ErrCodeApplicationNotFound  ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeConflict             ErrorCode = "CONCURRENT_MODIFICATION"
	ErrCodeDuplicateApplication ErrorCode = "DUPLICATE_APPLICATION"
	ErrCodeRemoteUnavailable    ErrorCode = "REMOTE_UNAVAILABLE"

	ErrCodeValidationFailed       ErrorCode = "APPLICATION_VALIDATION_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeIndexingFailed         ErrorCode = "INDEXING_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As chains.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// CodeOf extracts the error code from an error chain, or "" if the chain
// carries no StandardError.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

func IsInvalidTransition(err error) bool { return IsCode(err, ErrCodeInvalidTransition) }
func IsNotFound(err error) bool          { return IsCode(err, ErrCodeApplicationNotFound) }
func IsConflict(err error) bool          { return IsCode(err, ErrCodeConflict) }
func IsDuplicate(err error) bool         { return IsCode(err, ErrCodeDuplicateApplication) }
func IsRemoteUnavailable(err error) bool { return IsCode(err, ErrCodeRemoteUnavailable) }
func IsValidationFailed(err error) bool  { return IsCode(err, ErrCodeValidationFailed) }

// NewInvalidTransitionError creates a non-retryable transition error. The
// caller must choose a different action; the operation is never retried
// automatically.
func NewInvalidTransitionError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidTransition,
		Message:   "Requested action is not legal from the current state",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates a non-retryable not-found error.
func NewNotFoundError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicationNotFound,
		Message:   "Application not found",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConflictError creates a concurrent-modification error. Callers re-fetch
// and re-decide; auto-retry risks applying a stale decision.
func NewConflictError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConflict,
		Message:   "Application was modified concurrently",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateApplicationError creates a non-retryable uniqueness violation.
func NewDuplicateApplicationError(candidateID, jobID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateApplication,
		Message:   "An active application already exists for this candidate and job",
		Details:   fmt.Sprintf("candidateId: %s, jobId: %s", candidateID, jobID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRemoteUnavailableError creates a retryable infrastructure error.
func NewRemoteUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRemoteUnavailable,
		Message:   "Remote store unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewValidationError creates a non-retryable input validation error.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Application data validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error. The
// dispatcher logs it; it never aborts the transition that triggered it.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeRemoteUnavailable,
		ErrCodeNotificationSendFailed,
		ErrCodeIndexingFailed:
		return 3
	default:
		return 0 // business errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}
