// Package apperror classifies domain errors so the HTTP layer can map them
// to status codes without string matching. Messages are user-facing.
package apperror

import (
	"errors"
	"fmt"
)

// Kind is the error category.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindBusinessRule Kind = "business_rule"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindInternal     Kind = "internal"
)

// Error is a categorized error with a user-facing message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by Code, so sentinel values work with errors.Is
// even after the message has been specialised.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// New creates a categorized error.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Validation creates a validation error.
func Validation(code, message string) *Error {
	return New(KindValidation, code, message)
}

// BusinessRule creates a business-rule violation.
func BusinessRule(code, message string) *Error {
	return New(KindBusinessRule, code, message)
}

// NotFound creates a not-found error.
func NotFound(code, message string) *Error {
	return New(KindNotFound, code, message)
}

// Conflict creates a conflict error.
func Conflict(code, message string) *Error {
	return New(KindConflict, code, message)
}

// WithMessage copies e with a more specific message, keeping Kind and Code.
func (e *Error) WithMessage(format string, args ...interface{}) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...), Err: e.Err}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message of the first *Error in the chain.
func MessageOf(err error) (string, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Error(), true
	}
	return "", false
}

// CodeOf returns the Code of the first *Error in the chain, or "internal".
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}
	return "internal"
}
