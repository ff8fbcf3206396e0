// Package common defines shared constants and sentinel errors used across
// litmgmt components. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Lookup errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors raised by the directory and the store.
	ErrNameConflict = errors.New("name already in use")
	ErrKeyConflict  = fmt.Errorf("cite key: %w", ErrNameConflict)
	ErrInvalidEmail = errors.New("invalid e-mail address")
	ErrEmptyField   = errors.New("required field is empty")

	// Auth errors.
	ErrAuthenticationFailure = errors.New("authentication failed")
	ErrInvalidToken          = errors.New("invalid token")

	// Access control. ErrForbiddenModification marks an attempt to change an
	// immutable attribute such as an entry's type.
	ErrForbidden             = errors.New("forbidden")
	ErrForbiddenModification = fmt.Errorf("immutable attribute: %w", ErrForbidden)

	// Persistence errors.
	ErrParseFailure = errors.New("parse failure")
	ErrIOFailure    = errors.New("i/o failure")
)
