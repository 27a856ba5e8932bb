// Package apperr is the error taxonomy shared by services and handlers.
// Each error carries a Kind (mapped to an HTTP status) and a stable code
// that the i18n catalog translates.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/diewo77/go-chantiers/gate"
	"gorm.io/gorm"
)

type Kind int

const (
	Internal Kind = iota
	NotFound
	Forbidden
	BadRequest
	Unauthorized
	Conflict
)

// Status returns the HTTP status for k.
func (k Kind) Status() int {
	switch k {
	case NotFound:
		return http.StatusNotFound
	case Forbidden:
		return http.StatusForbidden
	case BadRequest:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Code    string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an Error of the given kind wrapping cause (may be nil).
func E(kind Kind, code string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Err: cause}
}

// Invalid is a 400 carrying field violation codes keyed by field name.
func Invalid(details map[string]string) *Error {
	return &Error{Kind: BadRequest, Code: "validation_failed", Details: details}
}

func NotFoundf(code string) *Error { return E(NotFound, code, nil) }

func Forbid() *Error { return E(Forbidden, "forbidden", nil) }

func Unauth() *Error { return E(Unauthorized, "unauthorized", nil) }

// Wrap classifies err as an internal failure.
func Wrap(code string, err error) *Error { return E(Internal, code, err) }

// KindOf classifies any error. gorm's not-found maps to NotFound and a gate denial to Forbidden.
func KindOf(err error) Kind {
	var ae *Error
	switch {
	case err == nil:
		return Internal
	case errors.As(err, &ae):
		return ae.Kind
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound
	case errors.Is(err, gate.ErrForbidden):
		return Forbidden
	case errors.Is(err, gate.ErrUnauthenticated):
		return Unauthorized
	default:
		return Internal
	}
}

// CodeOf returns the stable code for err.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	switch KindOf(err) {
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	case Unauthorized:
		return "unauthorized"
	default:
		return "internal_error"
	}
}

// DetailsOf returns the details attached to err, if any.
func DetailsOf(err error) any {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Details
	}
	return nil
}
