// Package errl carries the error taxonomy shared by the stores and services.
//
// Every failure returned to a caller wraps exactly one of the sentinel errors
// below (or none, for unexpected driver failures), so callers branch with
// errors.Is instead of parsing messages.
package errl

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

var (
	// ErrValidation marks malformed input. It is always returned before any write.
	ErrValidation = errors.New("validation error")

	// ErrDuplicateIdentity marks a unique-key violation on an identity key.
	ErrDuplicateIdentity = errors.New("duplicate identity")

	// ErrNotFound marks a referenced principal, university or certificate that is absent.
	ErrNotFound = errors.New("not found")

	// ErrReferenced marks a delete refused because other rows still point at the target.
	ErrReferenced = errors.New("still referenced")

	// ErrConnection marks an unreachable or timed out store. Callers may retry.
	ErrConnection = errors.New("connection error")
)

// Errorf formats like fmt.Errorf (including %w) and records the call stack.
func Errorf(format string, args ...any) error {
	return pkgerrors.WithStack(fmt.Errorf(format, args...))
}

// Validation returns an ErrValidation with the given detail.
func Validation(format string, args ...any) error {
	return Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound returns an ErrNotFound naming what was missing.
func NotFound(what string, key string) error {
	return Errorf("%w: %s %q", ErrNotFound, what, key)
}

// Duplicate returns an ErrDuplicateIdentity naming the conflicting key.
func Duplicate(what string, key string) error {
	return Errorf("%w: %s %q already exists", ErrDuplicateIdentity, what, key)
}

// Connection wraps cause as an ErrConnection.
func Connection(op string, cause error) error {
	return Errorf("%w: %s: %w", ErrConnection, op, cause)
}

// Is reports whether err is one of the typed failures of this package.
func Is(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrDuplicateIdentity) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrReferenced) ||
		errors.Is(err, ErrConnection)
}
