package api

// error_response.go maps errors to the JSON error response returned to clients

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/rein-network/rein-node/internal/logger"
)

// ErrorResponse is the body of every error response
type ErrorResponse struct {

	// The HTTP method used to make the request e.g. GET, POST, etc
	HTTPMethod string `json:"httpMethod"`

	// The URI that was requested
	RequestURI string `json:"requestUri"`

	// The HTTP status code returned
	StatusCode int `json:"statusCode"`

	// A standard short description corresponding to the HTTP status code
	StatusCodeText string `json:"statusCodeText"`

	// A long description corresponding to the HTTP status code with additional information
	StatusCodeMessage string `json:"statusCodeMessage,omitempty"`

	// The request id, also logged with the request
	RequestID string `json:"requestId,omitempty"`

	// The DateTime corresponding to the error occurring
	ErrorDateTime string `json:"errorDateTime"`

	// An array of errors providing more detail about the root cause
	Errors []DetailedError `json:"errors"`
}

// DetailedError describes one cause of an error response
type DetailedError struct {
	ErrorCode        ErrorCode `json:"errorCode"`
	ErrorCodeText    string    `json:"errorCodeText"`
	ErrorCodeMessage string    `json:"errorCodeMessage"`
}

// MapErrorToResponse maps an api.Error (or any other error) to an error response.
//
// Errors that are not an api.Error are reported as internal errors and their message is not
// sent to the client.
func MapErrorToResponse(err error, r *http.Request) *ErrorResponse {
	requestID := middleware.GetReqID(r.Context())

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return errorResponseFromAPI(apiErr, r, requestID)
	}

	reqLogger := logger.ContextRequestLogger(r.Context())
	reqLogger.Error("BUG: Unmapped error type in MapErrorToResponse",
		slog.String("error_type", fmt.Sprintf("%T", err)),
		slog.String("error", err.Error()),
		slog.String("request_id", requestID),
	)
	return &ErrorResponse{
		HTTPMethod:        r.Method,
		RequestURI:        r.RequestURI,
		StatusCode:        http.StatusInternalServerError,
		StatusCodeText:    http.StatusText(http.StatusInternalServerError),
		StatusCodeMessage: "Internal Error",
		RequestID:         requestID,
		ErrorDateTime:     time.Now().UTC().Format(time.RFC3339),
		Errors: []DetailedError{
			{
				ErrorCode:        ErrCodeInternalError,
				ErrorCodeText:    "Internal Error",
				ErrorCodeMessage: "An internal error occurred",
			},
		},
	}
}

func errorResponseFromAPI(err *Error, r *http.Request, requestID string) *ErrorResponse {
	var statusCode int
	var errorCodeText string

	switch err.Code() {
	case ErrCodeBadSignature:
		statusCode = http.StatusBadRequest
		errorCodeText = "Bad signature"
	case ErrCodeInvalidDocument:
		statusCode = http.StatusBadRequest
		errorCodeText = "Invalid document"
	case ErrCodeMalformedRequest:
		statusCode = http.StatusBadRequest
		errorCodeText = "Malformed request"
	case ErrCodeNotFound:
		statusCode = http.StatusNotFound
		errorCodeText = "Not found"
	case ErrCodeOracleUnavailable:
		statusCode = http.StatusBadGateway
		errorCodeText = "Oracle unavailable"
	case ErrCodeRateLimitExceeded:
		statusCode = http.StatusTooManyRequests
		errorCodeText = "Rate limit exceeded"
	case ErrCodeRequestTooLarge:
		statusCode = http.StatusRequestEntityTooLarge
		errorCodeText = "Request too large"
	default:
		statusCode = http.StatusInternalServerError
		errorCodeText = "Internal Error"
	}

	message := err.Error()
	if statusCode == http.StatusInternalServerError {
		// the cause is logged, not returned
		message = "An internal error occurred"
	}

	return &ErrorResponse{
		HTTPMethod:        r.Method,
		RequestURI:        r.RequestURI,
		StatusCode:        statusCode,
		StatusCodeText:    http.StatusText(statusCode),
		StatusCodeMessage: errorCodeText,
		RequestID:         requestID,
		ErrorDateTime:     time.Now().UTC().Format(time.RFC3339),
		Errors: []DetailedError{
			{
				ErrorCode:        err.Code(),
				ErrorCodeText:    errorCodeText,
				ErrorCodeMessage: message,
			},
		},
	}
}
