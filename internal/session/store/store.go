// Package store persists the bearer credential across process restarts. It is
// the single source of truth for "am I logged in": the session manager is the
// only writer, the HTTP client reads through Load on every request.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNoCredential means no credential is currently persisted. Callers
	// treat this as "logged out", not as a failure.
	ErrNoCredential = errors.New("no credential stored")
)

// CredentialStore holds at most one opaque bearer credential.
type CredentialStore interface {
	// Load returns the persisted credential, or ErrNoCredential.
	Load(ctx context.Context) (string, error)

	// Save replaces the persisted credential.
	Save(ctx context.Context, credential string) error

	// Clear removes the persisted credential. Clearing an empty store is a
	// no-op, not an error.
	Clear(ctx context.Context) error
}
