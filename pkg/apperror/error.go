package apperror

import (
	"context"
	"errors"
	"net/http"
)

// Kind classifies an AppError independently of the HTTP status it renders with.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindNotFound     Kind = "not_found"
	KindUnavailable  Kind = "unavailable"
	KindTimeout      Kind = "timeout"
	KindInternal     Kind = "internal"
)

// Sentinels for errors.Is checks against a kind.
var (
	ErrValidation   = &AppError{Kind: KindValidation}
	ErrConflict     = &AppError{Kind: KindConflict}
	ErrUnauthorized = &AppError{Kind: KindUnauthorized}
	ErrNotFound     = &AppError{Kind: KindNotFound}
	ErrUnavailable  = &AppError{Kind: KindUnavailable}
	ErrTimeout      = &AppError{Kind: KindTimeout}
	ErrInternal     = &AppError{Kind: KindInternal}
)

type AppError struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError of the same kind.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// The account routes answer every expected failure with 400, which is the
// contract the existing web client was built against.

func BadRequest(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Kind: KindValidation, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Kind: KindConflict, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Kind: KindUnauthorized, Message: message}
}

// Unauthenticated is used by the session middleware, which answers 401.
func Unauthenticated(message string) *AppError {
	return &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Kind: KindNotFound, Message: message}
}

func Unavailable(err error) *AppError {
	return &AppError{
		Code:    http.StatusServiceUnavailable,
		Kind:    KindUnavailable,
		Message: "Service temporarily unavailable. Please try again later.",
		Err:     err,
	}
}

func Timeout(err error) *AppError {
	return &AppError{
		Code:    http.StatusGatewayTimeout,
		Kind:    KindTimeout,
		Message: "The request timed out. Please try again later.",
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: "Server error. Please try again later.",
		Err:     err,
	}
}

// FromCollaborator classifies a failure returned by the store or the asset
// uploader. AppErrors pass through untouched.
func FromCollaborator(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout(err)
	}
	return Unavailable(err)
}
