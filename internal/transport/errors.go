package transport

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes transport failures.
type ErrorCode string

const (
	// ErrCodeTransport indicates a non-2xx response or a network-level failure
	// (DNS, TLS, timeout, connection reset).
	ErrCodeTransport ErrorCode = "TRANSPORT_ERROR"

	// ErrCodeDecode indicates the response body was not the expected JSON shape.
	ErrCodeDecode ErrorCode = "DECODE_ERROR"
)

// Error represents a failed request.
//
// Status is set for non-2xx responses and zero for network failures.
// Body holds a short excerpt of the response for diagnostics.
type Error struct {
	Code   ErrorCode
	Method string
	URL    string
	Status int
	Body   string
	Cause  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Body != "":
		return fmt.Sprintf("%s: %s %s: status %d: %s", e.Code, e.Method, e.URL, e.Status, e.Body)
	case e.Status != 0:
		return fmt.Sprintf("%s: %s %s: status %d", e.Code, e.Method, e.URL, e.Status)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s %s: %v", e.Code, e.Method, e.URL, e.Cause)
	default:
		return fmt.Sprintf("%s: %s %s", e.Code, e.Method, e.URL)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// DecodeError builds a DECODE_ERROR for a response from url.
// Callers that validate the decoded shape use it to report mismatches.
func DecodeError(url string, cause error) *Error {
	return &Error{Code: ErrCodeDecode, Method: "GET", URL: url, Cause: cause}
}

// IsTransportError returns true if the error is a non-2xx or network failure.
// Uses errors.As to handle wrapped errors.
func IsTransportError(err error) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Code == ErrCodeTransport
	}
	return false
}

// IsDecodeError returns true if the response body could not be decoded.
// Uses errors.As to handle wrapped errors.
func IsDecodeError(err error) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Code == ErrCodeDecode
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var te *Error
	if errors.As(err, &te) {
		return te.Status
	}
	return 0
}
