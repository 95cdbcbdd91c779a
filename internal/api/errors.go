// Package api defines the error codes and the JSON responses of the node HTTP API.
package api

// errors.go defines the error codes used by the API

import "fmt"

// Error represents a structured error returned by the API.
type Error struct {
	// code is the API error code
	code ErrorCode

	// message is a human-readable error message
	message string

	// wrapped is the optional underlying error
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *Error) Code() ErrorCode { return e.code }
func (e *Error) Unwrap() error   { return e.wrapped }

// ErrorCode is used in errors returned by the API.
//
//   - 7000-7999 for technical errors: the request could not be processed because of the supplied data
//   - 8000-8999 for functional errors: the request is valid but cannot be served
type ErrorCode int

const (
	// ErrCodeBadSignature is used when a signed document fails verification
	ErrCodeBadSignature ErrorCode = 7001

	// ErrCodeInvalidDocument is used when a signed document lacks required fields or framing
	ErrCodeInvalidDocument ErrorCode = 7002

	// ErrCodeInternalError is used when an internal server error occurs
	ErrCodeInternalError ErrorCode = 7005

	// ErrCodeMalformedRequest is used when the request body or parameters cannot be parsed
	ErrCodeMalformedRequest ErrorCode = 7006

	// ErrCodeRateLimitExceeded is used when the rate limit is exceeded
	// - this is only used in the middleware
	ErrCodeRateLimitExceeded ErrorCode = 7009

	// ErrCodeRequestTooLarge is used when the request body is too large
	// - this is only used in the middleware
	ErrCodeRequestTooLarge ErrorCode = 7010

	// ErrCodeNotFound is used when the requested order or block is not known
	ErrCodeNotFound ErrorCode = 8001

	// ErrCodeOracleUnavailable is used when no oracle server could resolve a block
	ErrCodeOracleUnavailable ErrorCode = 8002
)

// NewBadSignatureError creates an error for documents whose signature does not verify.
func NewBadSignatureError(msg string) error {
	return &Error{code: ErrCodeBadSignature, message: msg}
}

// NewInvalidDocumentError creates an error for documents that cannot be used for the request.
func NewInvalidDocumentError(msg string) error {
	return &Error{code: ErrCodeInvalidDocument, message: msg}
}

// NewMalformedRequestError creates an error for malformed requests.
func NewMalformedRequestError(msg string) error {
	return &Error{code: ErrCodeMalformedRequest, message: msg}
}

// WrapMalformedRequestError wraps an existing error as a malformed request error.
func WrapMalformedRequestError(err error, msg string) error {
	return &Error{code: ErrCodeMalformedRequest, message: msg, wrapped: err}
}

// NewNotFoundError creates an error for unknown orders and blocks.
func NewNotFoundError(msg string) error {
	return &Error{code: ErrCodeNotFound, message: msg}
}

// WrapOracleUnavailableError wraps a failed block resolution.
func WrapOracleUnavailableError(err error, msg string) error {
	return &Error{code: ErrCodeOracleUnavailable, message: msg, wrapped: err}
}

// NewInternalError creates an internal error for unexpected failures.
func NewInternalError(msg string) error {
	return &Error{code: ErrCodeInternalError, message: msg}
}

// WrapInternalError wraps an existing error as an internal error.
// Use this for database failures and other errors that should not normally occur.
func WrapInternalError(err error, msg string) error {
	return &Error{code: ErrCodeInternalError, message: msg, wrapped: err}
}

// NewRateLimitError creates a rate limit exceeded error.
func NewRateLimitError(msg string) error {
	return &Error{code: ErrCodeRateLimitExceeded, message: msg}
}

// NewRequestTooLargeError creates a request too large error.
func NewRequestTooLargeError(msg string) error {
	return &Error{code: ErrCodeRequestTooLarge, message: msg}
}
