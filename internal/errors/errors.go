package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	// Err is the underlying cause, if any. It is logged, never rendered.
	Err error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// WithCause attaches the underlying error.
func (e *HTTPError) WithCause(err error) *HTTPError {
	e.Err = err
	return e
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Code:    e.Code,
	}
}

func BadRequest(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, "BAD_REQUEST")
}

func Unauthorized(message string) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message, "UNAUTHORIZED")
}

func Forbidden(message string) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, "FORBIDDEN")
}

func NotFound(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, "NOT_FOUND")
}

func Conflict(message string) *HTTPError {
	return NewHTTPError(http.StatusConflict, message, "CONFLICT")
}

func Internal(message string, err error) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, "INTERNAL_ERROR").WithCause(err)
}

// StatusOf returns the status code carried by err, or 500.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return http.StatusInternalServerError
}
