package blog

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by the services either wraps one of
// these or is an unexpected infrastructure fault.
var (
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Error is a classified failure with a message that is safe to show to the
// caller. Meta carries extra payload fields for the response.
type Error struct {
	Kind    error
	Message string
	Meta    map[string]any
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
}

// FieldErrors is a validation failure listing every invalid field.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	msgs := make([]string, 0, len(fe))
	for _, e := range fe {
		msgs = append(msgs, e.Msg)
	}
	return strings.Join(msgs, "; ")
}

// Is makes FieldErrors match ErrValidation.
func (fe FieldErrors) Is(target error) bool {
	return target == ErrValidation
}

func fieldError(param, msg string) FieldErrors {
	return FieldErrors{{Param: param, Msg: msg}}
}
