// Package apperr defines the error kinds shared by every feature package.
// Handlers translate kinds into HTTP statuses; anything that is not one of
// these kinds is treated as a storage failure.
package apperr

import "errors"

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)

// Error carries a stable Code (usable as a localization key) and a human
// readable Detail on top of its Kind.
type Error struct {
	Kind   error
	Code   string
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, code, detail string) error {
	return &Error{Kind: kind, Code: code, Detail: detail}
}

func Validation(code, detail string) error   { return newError(ErrValidation, code, detail) }
func NotFound(code, detail string) error     { return newError(ErrNotFound, code, detail) }
func Forbidden(code, detail string) error    { return newError(ErrForbidden, code, detail) }
func Unauthorized(code, detail string) error { return newError(ErrUnauthorized, code, detail) }
func Conflict(code, detail string) error     { return newError(ErrConflict, code, detail) }

// Describe returns the code and detail of err when it is (or wraps) an *Error.
func Describe(err error) (code, detail string, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, e.Detail, true
	}
	return "", "", false
}
