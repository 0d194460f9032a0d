package services

import (
	"errors"
	"fmt"

	"github.com/diewo77/go-pos/validation"
)

// Kind classifies service failures so the transport can pick a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	}
	return "internal"
}

// Error is the typed failure returned by every service.
type Error struct {
	Kind   Kind
	Code   string
	Fields validation.Violations
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so the sentinels below work with
// errors.Is regardless of code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == "" && t.Kind == e.Kind
}

var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrInternal     = &Error{Kind: KindInternal}
)

// Error codes surfaced to clients.
const (
	CodeValidationFailed        = "validation_failed"
	CodeUnknownProducts         = "unknown_products"
	CodeOrderNotFound           = "order_not_found"
	CodeProductNotFound         = "product_not_found"
	CodeAdminNotFound           = "admin_not_found"
	CodeOrderAlreadyPaid        = "order_already_paid"
	CodeIllegalStatusTransition = "illegal_status_transition"
	CodeEmailAlreadyRegistered  = "email_already_registered"
	CodeInvalidCredentials      = "invalid_credentials"
	CodeInternal                = "internal_error"
)

func validationError(code string, fields validation.Violations) *Error {
	return &Error{Kind: KindValidation, Code: code, Fields: fields}
}

func notFound(code string) *Error {
	return &Error{Kind: KindNotFound, Code: code}
}

func conflict(code string) *Error {
	return &Error{Kind: KindConflict, Code: code}
}

// internal wraps a persistence failure. Errors already typed pass through.
func internal(op string, err error) error {
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Kind: KindInternal, Code: CodeInternal, Err: fmt.Errorf("%s: %w", op, err)}
}

// KindOf returns the kind of err, KindInternal for untyped errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
