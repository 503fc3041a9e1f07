package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases.
// Use errors.Is() to check against these.
var (
	ErrNoSession      = errors.New("no session")
	ErrInvalidToken   = errors.New("invalid token")
	ErrNetwork        = errors.New("network error")
	ErrNoCoverage     = errors.New("no coverage")
	ErrInvalidRequest = errors.New("invalid request")
	ErrServerRejected = errors.New("server rejected")
	ErrNotFound       = errors.New("not found")
)

// APIError represents a structured error surfaced to callers.
// Implements error interface and supports unwrapping.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"` // HTTP status, not serialized
	Err        error  `json:"-"` // Wrapped error, not serialized
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewNoSessionError signals that no authenticated session could be established.
// Callers should direct the user to log in.
func NewNoSessionError(reason string) *APIError {
	return &APIError{
		Code:       "NO_SESSION",
		Message:    reason,
		StatusCode: 401,
		Err:        ErrNoSession,
	}
}

// NewInvalidTokenError signals that a stored token was rejected by the backend.
func NewInvalidTokenError(reason string) *APIError {
	return &APIError{
		Code:       "INVALID_TOKEN",
		Message:    reason,
		StatusCode: 401,
		Err:        ErrInvalidToken,
	}
}

// NewNetworkError wraps a transport-level failure reaching the backend.
func NewNetworkError(op string, err error) *APIError {
	return &APIError{
		Code:       "NETWORK_ERROR",
		Message:    fmt.Sprintf("%s request failed", op),
		StatusCode: 502,
		Err:        fmt.Errorf("%w: %v", ErrNetwork, err),
	}
}

// NewNoCoverageError signals the carrier offers no service for a destination.
func NewNoCoverageError(countyCode string) *APIError {
	return &APIError{
		Code:       "NO_COVERAGE",
		Message:    fmt.Sprintf("no shipping options available for %s", countyCode),
		StatusCode: 422,
		Err:        ErrNoCoverage,
	}
}

// NewValidationError creates an error for invalid caller input.
func NewValidationError(field, reason string) *APIError {
	return &APIError{
		Code:       "VALIDATION_ERROR",
		Message:    fmt.Sprintf("invalid %s: %s", field, reason),
		StatusCode: 400,
		Err:        ErrInvalidRequest,
	}
}

// NewServerRejectedError creates an error for a backend refusal that is not
// an auth or validation problem (stock conflicts, closed orders, 5xx).
func NewServerRejectedError(statusCode int, message string) *APIError {
	if message == "" {
		message = "request rejected by store"
	}
	return &APIError{
		Code:       "SERVER_REJECTED",
		Message:    message,
		StatusCode: statusCode,
		Err:        ErrServerRejected,
	}
}

// NewNotFoundError creates an error for missing resources.
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: 404,
		Err:        ErrNotFound,
	}
}
