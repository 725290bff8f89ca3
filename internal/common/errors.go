package common

import "net/http"

// Error codes shared by the HTTP handlers.
const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeInvalidConfig = "INVALID_CONFIG"
	CodeInternal      = "INTERNAL"
	CodeRateLimited   = "RATE_LIMITED"
	CodeTooLarge      = "PAYLOAD_TOO_LARGE"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// BadRequest wraps a malformed request error.
func BadRequest(message string, err error) *AppError {
	return NewAppError(CodeBadRequest, message, http.StatusBadRequest, err)
}
