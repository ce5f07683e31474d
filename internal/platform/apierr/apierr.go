package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
)

type Error struct {
	Status int
	Code   string
	Err    error
	// Public is the caller-facing message. Errors classified by From leave it empty.
	Public string
	// Fields carries per-field validation messages.
	Fields map[string]string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func public(status int, code string, sentinel error, msg string) *Error {
	e := New(status, code, fmt.Errorf("%w: %s", sentinel, msg))
	e.Public = msg
	return e
}

func BadRequest(code, msg string) *Error {
	return public(http.StatusBadRequest, code, ErrInvalidArgument, msg)
}

func Unauthorized(code, msg string) *Error {
	return public(http.StatusUnauthorized, code, ErrUnauthorized, msg)
}

func Forbidden(code, msg string) *Error {
	return public(http.StatusForbidden, code, ErrForbidden, msg)
}

func NotFound(resource string) *Error {
	e := New(http.StatusNotFound, "not_found", fmt.Errorf("%s %w", resource, ErrNotFound))
	e.Public = resource + " not found"
	return e
}

// Conflict answers 400: duplicates are reported as a bad request with code "conflict".
func Conflict(msg string) *Error {
	return public(http.StatusBadRequest, "conflict", ErrConflict, msg)
}

func Internal(err error) *Error {
	return New(http.StatusInternalServerError, "internal_error", err)
}

func Validation(fields map[string]string) *Error {
	e := public(http.StatusBadRequest, "validation_failed", ErrInvalidArgument, "validation failed")
	e.Fields = fields
	return e
}

// From classifies any error into an *Error, defaulting to 500.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrConflict):
		return New(http.StatusBadRequest, "conflict", err)
	case errors.Is(err, ErrUnauthorized):
		return New(http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, ErrForbidden):
		return New(http.StatusForbidden, "forbidden", err)
	case errors.Is(err, ErrInvalidArgument):
		return New(http.StatusBadRequest, "invalid_request", err)
	}
	return Internal(err)
}
