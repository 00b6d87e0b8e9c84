package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the transport layer. Business failures carry
// their own kind; anything unclassified is treated as Infrastructure.
type Kind int

const (
	Infrastructure Kind = iota
	Validation
	Unauthenticated
	Forbidden
	NotFound
	QuotaExceeded
	Conflict
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, code string, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Validationf builds a field-level validation error. field may be empty for
// request-level problems.
func Validationf(field string, format string, args ...any) *Error {
	return &Error{
		Kind:    Validation,
		Code:    "invalid_input",
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

func Unauthenticatedf(format string, args ...any) *Error {
	return &Error{Kind: Unauthenticated, Code: "unauthenticated", Message: fmt.Sprintf(format, args...)}
}

func Forbiddenf(format string, args ...any) *Error {
	return &Error{Kind: Forbidden, Code: "forbidden", Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(code string, format string, args ...any) *Error {
	return &Error{Kind: NotFound, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(code string, format string, args ...any) *Error {
	return &Error{Kind: Conflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Quota(message string) *Error {
	return &Error{Kind: QuotaExceeded, Code: "quota_exceeded", Message: message}
}

// Wrap marks err as an infrastructure failure. The wrapped detail is for
// server-side logs only; message is what callers may show.
func Wrap(err error, message string) *Error {
	return &Error{Kind: Infrastructure, Code: "internal_error", Message: message, Err: err}
}

// KindOf extracts the kind from err, walking the wrap chain. Unclassified
// errors report Infrastructure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Infrastructure
}

// As returns the typed error inside err, or nil.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
