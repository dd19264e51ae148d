// Package apperr is the error taxonomy shared by the registry and its
// HTTP boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the machine-readable error class. Values are part of the wire
// format.
type Kind string

const (
	KindValidation Kind = "validation_error"
	KindAuth       Kind = "auth_error"
	KindStore      Kind = "store_error"
	KindConfig     Kind = "config_error"
)

// HTTPStatus turns a Kind into an http status code
func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a Kind, a caller-facing message and the wrapped cause.
// Field is set for validation failures.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Wire is the JSON body returned for every error response.
type Wire struct {
	Error   Kind   `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

func Auth(msg string, err error) *Error {
	return &Error{Kind: KindAuth, Message: msg, Err: err}
}

func Store(op string, err error) *Error {
	return &Error{Kind: KindStore, Message: op, Err: err}
}

func Config(key, msg string) *Error {
	return &Error{Kind: KindConfig, Field: key, Message: msg}
}

// As extracts an *Error from err. Errors outside the taxonomy are treated
// as store failures, since the store is the only collaborator that can
// fail in ways the caller did not cause.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Store("unclassified", err)
}

// Is reports whether err belongs to kind k.
func Is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// ToWire renders the caller-facing form. Store and config details stay in
// the logs; the caller only sees a generic message.
func ToWire(e *Error) Wire {
	switch e.Kind {
	case KindStore, KindConfig:
		return Wire{Error: e.Kind, Message: "internal error"}
	}
	return Wire{Error: e.Kind, Message: e.Message, Field: e.Field}
}
