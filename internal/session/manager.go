package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"inkwell/internal/session/store"
)

var (
	// ErrOperationInFlight means a login, registration, or restore is already
	// running. Session mutations never interleave; the second caller is
	// rejected rather than queued.
	ErrOperationInFlight = errors.New("session operation already in flight")
)

// AuthAPI is what the manager needs from the remote identity endpoints. The
// blog client implements it; requests made through it inherit credential
// attachment from the shared transport.
type AuthAPI interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (credential string, err error)
	Profile(ctx context.Context) (Identity, error)
}

// Manager is the process-wide session singleton. It is the only writer of the
// credential store and the only component that mutates session state.
type Manager struct {
	api   AuthAPI
	creds store.CredentialStore
	log   *slog.Logger

	mu       sync.Mutex
	state    State
	identity *Identity
	expired  bool
	inFlight bool

	restoreFlight singleflight.Group
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger attaches a structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// New builds the session manager. The store is peeked synchronously so that a
// persisted credential puts the session into StateRestoring before any access
// check can run; a legitimately authenticated user must never see a denial
// flash between process start and the first Restore.
func New(ctx context.Context, api AuthAPI, creds store.CredentialStore, opts ...Option) *Manager {
	m := &Manager{
		api:   api,
		creds: creds,
		log:   slog.Default(),
		state: StateUnauthenticated,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	if _, err := creds.Load(ctx); err == nil {
		m.state = StateRestoring
	}
	return m
}

// Snapshot returns the current session. The returned value is a copy; the
// Identity pointer must be treated as read-only.
func (m *Manager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Session{
		State:    m.state,
		Identity: m.identity,
		Loading:  m.state == StateRestoring || m.state == StateAuthenticating,
	}
}

// ConsumeExpired reports whether the session was invalidated by the remote
// service since the last call, clearing the flag. UI surfaces use this to show
// a one-time "session expired" notice after settling to unauthenticated.
func (m *Manager) ConsumeExpired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expired := m.expired
	m.expired = false
	return expired
}

// Restore exchanges a persisted credential for an identity. With no persisted
// credential it settles to unauthenticated immediately. A credential that
// fails to resolve to an identity is worthless and is discarded in the same
// transition. Concurrent restores collapse into a single flight.
func (m *Manager) Restore(ctx context.Context) error {
	_, err, _ := m.restoreFlight.Do("restore", func() (any, error) {
		return nil, m.restore(ctx)
	})
	return err
}

func (m *Manager) restore(ctx context.Context) error {
	m.mu.Lock()
	if m.inFlight {
		m.mu.Unlock()
		return ErrOperationInFlight
	}
	if _, err := m.creds.Load(ctx); err != nil {
		m.state = StateUnauthenticated
		m.mu.Unlock()
		if errors.Is(err, store.ErrNoCredential) {
			return nil
		}
		return fmt.Errorf("load credential: %w", err)
	}
	m.inFlight = true
	m.state = StateRestoring
	m.mu.Unlock()

	identity, err := m.api.Profile(ctx)
	if err != nil {
		m.log.Debug("session restore failed", "error", err)
		m.discard(ctx)
		return err
	}

	m.mu.Lock()
	m.identity = &identity
	m.state = StateAuthenticated
	m.inFlight = false
	m.mu.Unlock()
	m.log.Debug("session restored", "user_id", identity.ID)
	return nil
}

// Login exchanges credentials for a bearer token, persists it, and resolves
// the identity. A failure before this call persists anything leaves the
// previous session untouched; once a credential has been persisted, a failure
// discards it so no identity-less credential survives.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if err := m.begin(); err != nil {
		return err
	}
	return m.login(ctx, email, password)
}

// Register creates the account, then performs the full login flow with the
// same credentials. Registration never yields a session of its own. When the
// chained login fails the login failure is returned as-is: the account exists
// server-side, but no session was established.
func (m *Manager) Register(ctx context.Context, email, password string) error {
	if err := m.begin(); err != nil {
		return err
	}
	if err := m.api.Register(ctx, email, password); err != nil {
		m.fail()
		return err
	}
	return m.login(ctx, email, password)
}

// login runs the credential exchange and profile fetch. The single-flight
// guard is already held.
func (m *Manager) login(ctx context.Context, email, password string) error {
	credential, err := m.api.Login(ctx, email, password)
	if err != nil {
		// Nothing has been persisted yet; a credential from a previous
		// session stays put so a transient failure invites a plain retry.
		m.fail()
		return err
	}
	if err := m.creds.Save(ctx, credential); err != nil {
		m.discard(ctx)
		return fmt.Errorf("persist credential: %w", err)
	}

	// The profile fetch rides on the just-committed credential.
	identity, err := m.api.Profile(ctx)
	if err != nil {
		m.discard(ctx)
		return err
	}

	m.mu.Lock()
	m.identity = &identity
	m.state = StateAuthenticated
	m.inFlight = false
	m.mu.Unlock()
	m.log.Debug("login succeeded", "user_id", identity.ID)
	return nil
}

// Logout clears the persisted credential and the in-memory identity before
// returning, so no caller can observe a stale identity after it completes.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	if m.inFlight {
		m.mu.Unlock()
		return ErrOperationInFlight
	}
	m.mu.Unlock()

	if err := m.creds.Clear(ctx); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	m.mu.Lock()
	m.identity = nil
	m.state = StateUnauthenticated
	m.expired = false
	m.mu.Unlock()
	return nil
}

// HandleInvalidation is the single subscriber for the transport's credential
// invalidation signal (401 on an authenticated request). Credential and
// identity are cleared together, never one without the other, and the expiry
// flag is raised for the next ConsumeExpired.
func (m *Manager) HandleInvalidation() {
	ctx := context.Background()
	if err := m.creds.Clear(ctx); err != nil {
		m.log.Warn("failed to clear invalidated credential", "error", err)
	}
	m.mu.Lock()
	wasEstablished := m.state == StateAuthenticated || m.state == StateRestoring
	m.identity = nil
	m.state = StateUnauthenticated
	if wasEstablished {
		m.expired = true
	}
	m.mu.Unlock()
	m.log.Debug("session invalidated by remote")
}

// begin acquires the single-flight guard and enters StateAuthenticating.
func (m *Manager) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight {
		return ErrOperationInFlight
	}
	m.inFlight = true
	m.state = StateAuthenticating
	m.expired = false
	return nil
}

// fail releases the guard without touching the store. Used when an operation
// dies before it persisted anything; whatever session existed beforehand is
// restored as-is.
func (m *Manager) fail() {
	m.mu.Lock()
	if m.identity != nil {
		m.state = StateAuthenticated
	} else {
		m.state = StateUnauthenticated
	}
	m.inFlight = false
	m.mu.Unlock()
}

// discard releases the guard and settles to unauthenticated with both the
// credential and the identity gone.
func (m *Manager) discard(ctx context.Context) {
	if err := m.creds.Clear(ctx); err != nil {
		m.log.Warn("failed to clear credential", "error", err)
	}
	m.mu.Lock()
	m.identity = nil
	m.state = StateUnauthenticated
	m.inFlight = false
	m.mu.Unlock()
}
