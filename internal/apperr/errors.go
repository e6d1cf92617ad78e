// Package apperr defines the request-terminating error signals returned by the
// comment services and rendered by the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Detail string
	Meta   map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Detail == "" {
		return fmt.Sprintf("%d %s", e.Status, e.Code)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Detail)
}

func newError(status int, code, detail string, meta map[string]any) *Error {
	return &Error{Status: status, Code: code, Detail: detail, Meta: meta}
}

func BadRequest(detail string) *Error {
	return newError(http.StatusBadRequest, "bad_request", detail, nil)
}

func Unauthorized(detail string) *Error {
	return newError(http.StatusUnauthorized, "unauthorized", detail, nil)
}

func Forbidden(detail string) *Error {
	return newError(http.StatusForbidden, "forbidden", detail, nil)
}

func NotFound(detail string) *Error {
	return newError(http.StatusNotFound, "not_found", detail, nil)
}

// Gone is used for entities that exist but have been disabled or deleted.
func Gone(detail string, meta map[string]any) *Error {
	return newError(http.StatusGone, "gone", detail, meta)
}

// From unwraps err into an *Error. Anything that is not one becomes a 500.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return newError(http.StatusInternalServerError, "server_error", "Internal server error", nil)
}

// Is reports whether err carries the given HTTP status.
func Is(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == status
}
