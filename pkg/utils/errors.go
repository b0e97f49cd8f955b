package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds for the extraction/orchestration taxonomy
const (
	KindInvalidInput  = "invalid_input"
	KindFetchFailed   = "fetch_failed"
	KindTransport     = "transport_error"
	KindConfiguration = "configuration_error"
	KindDispatch      = "dispatch_error"
)

// CustomError represents a custom application error
type CustomError struct {
	Kind    string `json:"kind"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// NewInvalidInputError returns an error for a malformed or non-HTTP(S) URL.
// Terminal, never retried.
func NewInvalidInputError(detail string) *CustomError {
	return &CustomError{
		Kind:    KindInvalidInput,
		Code:    http.StatusBadRequest,
		Message: "Invalid input",
		Detail:  detail,
	}
}

// NewFetchFailedError returns an error for a non-2xx upstream response,
// carrying the status code.
func NewFetchFailedError(status int) *CustomError {
	return &CustomError{
		Kind:    KindFetchFailed,
		Code:    status,
		Message: "Fetch failed",
		Detail:  fmt.Sprintf("upstream returned status %d", status),
	}
}

// NewTransportError returns an error for a network/transport failure.
func NewTransportError(detail string) *CustomError {
	return &CustomError{
		Kind:    KindTransport,
		Code:    http.StatusBadGateway,
		Message: "Transport error",
		Detail:  detail,
	}
}

// NewConfigurationError returns an error for a config that cannot be
// dispatched (missing category URL or link selector). Fails fast, surfaced to
// the operator before any crawl is attempted.
func NewConfigurationError(detail string) *CustomError {
	return &CustomError{
		Kind:    KindConfiguration,
		Code:    http.StatusUnprocessableEntity,
		Message: "Configuration error",
		Detail:  detail,
	}
}

// NewDispatchError returns an error for a crawl dispatch the worker boundary
// rejected.
func NewDispatchError(detail string) *CustomError {
	return &CustomError{
		Kind:    KindDispatch,
		Code:    http.StatusServiceUnavailable,
		Message: "Dispatch failed",
		Detail:  detail,
	}
}

// NewValidationError returns a request validation error.
func NewValidationError(detail string) *CustomError {
	return &CustomError{
		Kind:    KindInvalidInput,
		Code:    http.StatusBadRequest,
		Message: "Validation failed",
		Detail:  detail,
	}
}

// ErrorKind returns the taxonomy kind of err, or "" for plain errors.
func ErrorKind(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
