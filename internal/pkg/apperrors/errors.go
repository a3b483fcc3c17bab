package apperrors

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrValidation  ErrorType = "VALIDATION"
	ErrNotFound    ErrorType = "NOT_FOUND"
	ErrAuthFailed  ErrorType = "AUTH_FAILED"
	ErrForbidden   ErrorType = "FORBIDDEN"
	ErrRateLimited ErrorType = "RATE_LIMITED"
	ErrReadOnly    ErrorType = "READ_ONLY"
	ErrUpstream    ErrorType = "UPSTREAM_ERROR"
	ErrInternal    ErrorType = "INTERNAL_ERROR"
)

// AppError is the standard error struct for the application.
type AppError struct {
	Type       ErrorType `json:"code"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    msg,
		Cause:      cause,
		HTTPStatus: mapTypeToStatus(errType),
		Suggestion: mapTypeToSuggestion(errType),
	}
}

func NewValidation(msg string) *AppError {
	return New(ErrValidation, msg, nil)
}

func NewNotFound(msg string) *AppError {
	return New(ErrNotFound, msg, nil)
}

func NewForbidden(msg string) *AppError {
	return New(ErrForbidden, msg, nil)
}

func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return New(ErrInternal, err.Error(), err)
}

func mapTypeToStatus(t ErrorType) int {
	switch t {
	case ErrValidation:
		return http.StatusBadRequest
	case ErrNotFound:
		return http.StatusNotFound
	case ErrAuthFailed:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrRateLimited:
		return http.StatusTooManyRequests
	case ErrReadOnly:
		return http.StatusServiceUnavailable
	case ErrUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func mapTypeToSuggestion(t ErrorType) string {
	switch t {
	case ErrValidation:
		return "Check the request payload against the API contract."
	case ErrRateLimited:
		return "Wait for the current window to pass before retrying."
	case ErrAuthFailed:
		return "Check the authentication token."
	case ErrReadOnly:
		return "The service is in maintenance mode; retry later."
	default:
		return ""
	}
}
