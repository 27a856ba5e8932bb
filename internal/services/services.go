// Package services holds the domain operations behind the HTTP handlers. Services
// work on plain ids; tenant checks happen in the handlers through the policy gate.
package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/go-chantiers/internal/apperr"
	"github.com/diewo77/go-chantiers/internal/models"
)

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

func orNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

// notFound turns gorm's not-found into the given code and keeps other errors as they are.
func notFound(err error, code string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.E(apperr.NotFound, code, err)
	}
	return err
}

// lenientDate parses an optional date string; unparseable values become nil.
func lenientDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	return models.ParseLenientDate(*s)
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
