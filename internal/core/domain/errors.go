package domain

import (
	"errors"
	"fmt"
)

// DomainError is an error with a stable, machine-readable code.
//
// Codes follow the format R0-<AREA>-<NNNN>, where the leading digit of the
// number mirrors the HTTP status class the error would map to.
type DomainError struct {
	Code    string // Error code (e.g., "R0-CONF-5030")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Configuration Errors (CONF)
// ============================================================================

var (
	// ErrNoConfigSource indicates neither config.Url nor config.Path is set.
	// It is fatal: the host refuses to start.
	ErrNoConfigSource = NewDomainError("R0-CONF-5000", "either 'config.Url' or 'config.Path' configuration keys are required")

	// ErrSourceUnavailable indicates every configured source failed during
	// a resolve. The caller keeps its previous snapshot.
	ErrSourceUnavailable = NewDomainError("R0-CONF-5030", "configuration source unavailable")

	// ErrRemoteStatus indicates the remote source answered with a non-2xx status.
	ErrRemoteStatus = NewDomainError("R0-CONF-5020", "unexpected status from configuration server")

	// ErrDocumentInvalid indicates the configuration document is not valid JSON.
	ErrDocumentInvalid = NewDomainError("R0-CONF-4000", "invalid configuration document")

	// ErrInvalidSetting indicates a handler configuration value could not be parsed.
	ErrInvalidSetting = NewDomainError("R0-CONF-4001", "invalid configuration value")
)

// ============================================================================
// Host Errors (HOST)
// ============================================================================

var (
	// ErrInvalidPrefix indicates a listener prefix could not be parsed.
	ErrInvalidPrefix = NewDomainError("R0-HOST-4000", "invalid listener prefix")

	// ErrNoPrefixes indicates Run was called without any prefix.
	ErrNoPrefixes = NewDomainError("R0-HOST-4001", "at least one listener prefix is required")

	// ErrAlreadyRunning indicates Run was called twice on the same host.
	ErrAlreadyRunning = NewDomainError("R0-HOST-4090", "host already running")

	// ErrLifecycle indicates a handler's configure or initialize step failed.
	ErrLifecycle = NewDomainError("R0-HOST-5000", "handler lifecycle failed")

	// ErrTLSRequired indicates an https prefix was given without a certificate.
	ErrTLSRequired = NewDomainError("R0-HOST-5001", "https prefix requires tls_cert_file and tls_key_file")

	// ErrNotServing indicates the host has not reached, or has left, the
	// serving state.
	ErrNotServing = NewDomainError("R0-HOST-5030", "host is not serving")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternal indicates an unexpected failure.
	ErrInternal = NewDomainError("R0-SYS-5000", "internal server error")

	// ErrRateLimited indicates a client exceeded its request budget.
	ErrRateLimited = NewDomainError("R0-SYS-4290", "too many requests")

	// ErrUnauthorized indicates a missing or wrong bearer token.
	ErrUnauthorized = NewDomainError("R0-SYS-4010", "unauthorized")
)

// IsFatal reports whether err must abort startup rather than be retried.
func IsFatal(err error) bool {
	return errors.Is(err, ErrNoConfigSource)
}
