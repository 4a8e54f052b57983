package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict     = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss    = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Engine-specific errors.
var (
	// ErrInvalidReference marks an unknown student or listing id. Surfaces
	// to callers as a client error.
	ErrInvalidReference = New("INVALID_REFERENCE", http.StatusNotFound, "unknown student or listing")

	// ErrComputationTimeout marks a synchronous recompute that exceeded its
	// deadline. Absorbed internally; callers get the last cached score with a
	// degraded flag instead.
	ErrComputationTimeout = New("COMPUTATION_TIMEOUT", http.StatusGatewayTimeout, "score computation timed out")

	// ErrQueueClaimConflict signals a worker lost the race for a queue
	// entry. A retry signal, not a failure.
	ErrQueueClaimConflict = New("QUEUE_CLAIM_CONFLICT", http.StatusConflict, "queue entry claimed by another worker")

	// ErrQueueOverflow marks a backlog beyond the operational threshold.
	ErrQueueOverflow = New("QUEUE_OVERFLOW", http.StatusServiceUnavailable, "recomputation backlog exceeded threshold")

	// ErrPersistentComputeFailure marks an entry that exhausted its retry
	// ceiling and was dead-lettered.
	ErrPersistentComputeFailure = New("PERSISTENT_COMPUTE_FAILURE", http.StatusInternalServerError, "score computation failed permanently")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
