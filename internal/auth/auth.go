// Package auth answers whether a principal is who they claim to be.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/evidenceledger/credstore/internal/errl"
	"github.com/evidenceledger/credstore/internal/secret"
)

// Kind selects the principal table a login is checked against.
type Kind int

const (
	Admin Kind = iota
	Student
)

func (k Kind) String() string {
	switch k {
	case Admin:
		return "admin"
	case Student:
		return "student"
	default:
		return "unknown"
	}
}

// CredentialStore is the slice of a principal repository the service needs.
// database.Admins and database.Students satisfy it.
type CredentialStore interface {
	Verifier(ctx context.Context, identityKey string) (string, error)
	UpdateSecret(ctx context.Context, identityKey, newSecret string) error
}

// Service authenticates admins and students.
type Service struct {
	hasher *secret.Hasher
	stores map[Kind]CredentialStore
}

// New creates an authentication service. Logins are equalized to the
// hasher's cost, so the stores should hash at that cost too.
func New(hasher *secret.Hasher, admins, students CredentialStore) *Service {
	// Compute the decoy before the first login.
	hasher.Decoy()

	return &Service{
		hasher: hasher,
		stores: map[Kind]CredentialStore{
			Admin:   admins,
			Student: students,
		},
	}
}

// Login reports whether secret is the current secret of the principal
// identified by identityKey. An unknown identity and a wrong secret both
// return (false, nil) after bcrypt work at the hasher's current cost, so
// callers cannot tell them apart. Only store failures are returned as errors.
//
// A verifier created at a lower cost than the current one is padded with a
// decoy comparison, and replaced at the current cost after a successful login.
func (s *Service) Login(ctx context.Context, kind Kind, identityKey, plaintext string) (bool, error) {
	store, ok := s.stores[kind]
	if !ok || store == nil {
		return false, errl.Validation("unknown principal kind %d", int(kind))
	}

	verifier, err := store.Verifier(ctx, identityKey)
	switch {
	case errors.Is(err, errl.ErrNotFound):
		s.hasher.Verify(plaintext, s.hasher.Decoy())
		slog.Info("Login rejected", "kind", kind)
		return false, nil
	case err != nil:
		slog.Error("Login lookup failed", "kind", kind, "error", err)
		return false, err
	}

	matched := s.hasher.Verify(plaintext, verifier)
	stale := s.hasher.NeedsRehash(verifier)
	if stale {
		s.hasher.Verify(plaintext, s.hasher.Decoy())
	}

	if !matched {
		slog.Info("Login rejected", "kind", kind)
		return false, nil
	}

	if stale {
		if err := store.UpdateSecret(ctx, identityKey, plaintext); err != nil {
			slog.Warn("Failed to upgrade secret verifier", "kind", kind, "error", err)
		}
	}

	slog.Info("Login accepted", "kind", kind)
	return true, nil
}

// ChangeSecret replaces a principal's secret after checking the current one.
// A failed check returns (false, nil) and leaves the stored verifier untouched.
func (s *Service) ChangeSecret(ctx context.Context, kind Kind, identityKey, current, next string) (bool, error) {
	ok, err := s.Login(ctx, kind, identityKey, current)
	if err != nil || !ok {
		return false, err
	}
	if err := s.stores[kind].UpdateSecret(ctx, identityKey, next); err != nil {
		return false, err
	}
	return true, nil
}
