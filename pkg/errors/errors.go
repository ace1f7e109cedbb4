package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType classifies the failures a collection run can surface
type ErrorType string

const (
	ErrorTypeRateLimit ErrorType = "rate_limit"
	ErrorTypeTransport ErrorType = "transport"
	ErrorTypeStorage   ErrorType = "storage"
)

// Error represents a classified failure with its underlying cause
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	// RetryAt is the earliest instant the remote accepts another call.
	// Set only when Type is ErrorTypeRateLimit.
	RetryAt time.Time
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Type == ErrorTypeRateLimit:
		return fmt.Sprintf("%s error: %s (retry at %s)", e.Type, e.Message, e.RetryAt.UTC().Format(time.RFC3339))
	case e.Code != 0 && e.Err != nil:
		return fmt.Sprintf("%s error (code %d): %s: %v", e.Type, e.Code, e.Message, e.Err)
	case e.Code != 0:
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s error: %s", e.Type, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewRateLimited builds a rate-limit error carrying the reset instant
// reported by the remote
func NewRateLimited(retryAt time.Time, message string) *Error {
	return &Error{
		Type:    ErrorTypeRateLimit,
		Message: message,
		RetryAt: retryAt,
	}
}

// NewTransport builds a transport error wrapping the underlying cause
func NewTransport(err error, message string) *Error {
	return &Error{
		Type:    ErrorTypeTransport,
		Message: message,
		Err:     err,
	}
}

// NewTransportCode builds a transport error for an HTTP status code
func NewTransportCode(code int, message string) *Error {
	return &Error{
		Type:    ErrorTypeTransport,
		Message: message,
		Code:    code,
	}
}

// NewStorage builds a storage error wrapping the underlying cause
func NewStorage(err error, message string) *Error {
	return &Error{
		Type:    ErrorTypeStorage,
		Message: message,
		Err:     err,
	}
}

// TypeOf returns err's classification, or the empty string when err is nil
// or carries none
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ""
}

// IsRateLimited checks whether err carries a rate-limit classification
func IsRateLimited(err error) bool {
	return TypeOf(err) == ErrorTypeRateLimit
}

// IsStorage checks whether err carries a storage classification
func IsStorage(err error) bool {
	return TypeOf(err) == ErrorTypeStorage
}

// Is reports whether any error in err's chain matches target. It is a
// passthrough to the standard library so callers need not import both
// packages.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain matching target
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// RetryAt returns the reset instant carried by a rate-limit error
func RetryAt(err error) (time.Time, bool) {
	var e *Error
	if stderrors.As(err, &e) && e.Type == ErrorTypeRateLimit {
		return e.RetryAt, true
	}
	return time.Time{}, false
}

// IsRetryable checks whether the transport layer may retry the call.
// Only transient transport failures qualify: network errors without a
// response and server-side 5xx codes. Rate limits are never retryable:
// the reset instant tells the caller when the remote accepts calls
// again, and the run surfaces it instead.
func IsRetryable(err error) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == ErrorTypeTransport && IsRetryableStatusCode(e.Code)
	}
	return false
}

// IsRetryableStatusCode checks if an HTTP status code indicates a
// transient failure worth retrying at the transport layer
func IsRetryableStatusCode(statusCode int) bool {
	switch {
	case statusCode == 0: // network error, no response
		return true
	case statusCode == 429:
		return false
	case statusCode >= 500:
		return true
	default:
		return false
	}
}
