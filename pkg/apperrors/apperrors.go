package apperrors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Kind enumerates every failure the HTTP boundary knows how to translate.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindTypeMismatch
	KindForbidden
	KindAuthRequired
	KindNotFound
	KindConflict
	KindStorageConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTypeMismatch:
		return "type_mismatch"
	case KindForbidden:
		return "forbidden"
	case KindAuthRequired:
		return "auth_required"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindStorageConflict:
		return "storage_conflict"
	default:
		return "unexpected"
	}
}

// FieldViolation describes one rejected input field. Field uses dot paths for nested values.
type FieldViolation struct {
	Field         string
	RejectedValue any
	Message       string
}

// Error is the tagged application error. Only the fields relevant to Kind are set.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldViolation

	// NotFound details.
	Resource string
	Field    string
	Value    any

	// TypeMismatch details.
	Param    string
	Expected string

	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidation reports one or more rejected fields.
func NewValidation(fields ...FieldViolation) error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

// NewTypeMismatch reports a parameter that could not be converted to the expected type.
func NewTypeMismatch(param, expected string, err error) error {
	return &Error{
		Kind:     KindTypeMismatch,
		Message:  fmt.Sprintf("parameter %q is not a valid %s", param, expected),
		Param:    param,
		Expected: expected,
		Err:      err,
	}
}

// NewForbidden reports an authenticated caller lacking privileges. The reason is for logs only.
func NewForbidden(reason string) error {
	return &Error{Kind: KindForbidden, Message: reason}
}

// NewAuthRequired reports an authentication failure raised outside the middleware.
func NewAuthRequired(reason string) error {
	return &Error{Kind: KindAuthRequired, Message: reason}
}

// NewNotFound reports a missing resource looked up by field=value.
func NewNotFound(resource, field string, value any) error {
	return &Error{
		Kind:     KindNotFound,
		Message:  fmt.Sprintf("%s not found with %s: '%v'", resource, field, value),
		Resource: resource,
		Field:    field,
		Value:    value,
	}
}

// NewConflict reports a business rule violation. The message is shown to the client.
func NewConflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewStorageConflict wraps a constraint violation reported by the database.
func NewStorageConflict(err error) error {
	return &Error{Kind: KindStorageConflict, Message: "storage constraint violated", Err: err}
}

// NewUnexpected wraps anything the boundary does not recognise.
func NewUnexpected(err error) error {
	return &Error{Kind: KindUnexpected, Message: "unexpected error", Err: err}
}

// Classify folds any error into the tagged union. It never returns nil for a non-nil err.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if IsConstraintViolation(err) {
		return NewStorageConflict(err).(*Error)
	}
	return NewUnexpected(err).(*Error)
}

// IsConstraintViolation reports whether err carries an integrity constraint SQLSTATE (class 23).
func IsConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return len(pgErr.Code) == 5 && pgErr.Code[:2] == "23"
}

// Is reports whether err classifies as kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Kind == kind
}
