// Package session owns the authenticated-session lifecycle: login,
// registration, logout, and restoration of a persisted credential on startup.
package session

// Identity is the authenticated user's profile as known to this client. It is
// derived, never stored raw: present if and only if the current credential was
// successfully exchanged for a profile fetch.
type Identity struct {
	ID    string
	Email string
	Admin bool
}

// State names a position in the session lifecycle.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateRestoring       State = "restoring"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
)

// IsAuthenticated reports whether the state is StateAuthenticated.
func (s State) IsAuthenticated() bool {
	return s == StateAuthenticated
}

// Session is a point-in-time snapshot of the process-wide session.
type Session struct {
	State    State
	Identity *Identity

	// Loading is true only during the bounded restoration window or an
	// in-flight login/registration call.
	Loading bool
}
