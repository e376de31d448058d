package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"inkwell/internal/session"
)

type staticSource struct {
	snap session.Session
}

func (s staticSource) Snapshot() session.Session {
	return s.snap
}

func gateFor(state session.State, identity *session.Identity) *Gate {
	return NewGate(staticSource{snap: session.Session{State: state, Identity: identity}})
}

func TestCanAccess(t *testing.T) {
	user := &session.Identity{ID: "u1", Email: "a@x.com"}
	admin := &session.Identity{ID: "u0", Email: "root@x.com", Admin: true}

	tests := []struct {
		name       string
		state      session.State
		identity   *session.Identity
		capability Capability
		want       Decision
	}{
		{"authenticated user may enter authenticated-only", session.StateAuthenticated, user, AuthenticatedOnly, Allow},
		{"unauthenticated is denied", session.StateUnauthenticated, nil, AuthenticatedOnly, Deny},
		{"restoring defers instead of denying", session.StateRestoring, nil, AuthenticatedOnly, Pending},
		{"restoring defers admin checks too", session.StateRestoring, nil, AdminOnly, Pending},
		{"in-flight login is not yet authenticated", session.StateAuthenticating, nil, AuthenticatedOnly, Deny},
		{"plain user is denied admin-only", session.StateAuthenticated, user, AdminOnly, Deny},
		{"admin is allowed admin-only", session.StateAuthenticated, admin, AdminOnly, Allow},
		{"admin is allowed authenticated-only", session.StateAuthenticated, admin, AuthenticatedOnly, Allow},
		{"authenticated state without identity is denied", session.StateAuthenticated, nil, AuthenticatedOnly, Deny},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := gateFor(tc.state, tc.identity).CanAccess(tc.capability)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "deny", Deny.String())
	assert.Equal(t, "pending", Pending.String())
	assert.True(t, Allow.Allowed())
	assert.False(t, Pending.Allowed())
}

func TestCanModify(t *testing.T) {
	owner := &session.Identity{ID: "u1", Email: "a@x.com"}
	admin := &session.Identity{ID: "u0", Email: "root@x.com", Admin: true}

	t.Run("owner may modify", func(t *testing.T) {
		assert.True(t, CanModify(owner, "u1"))
	})

	t.Run("non-owner may not", func(t *testing.T) {
		assert.False(t, CanModify(owner, "u2"))
	})

	t.Run("admin gets no override", func(t *testing.T) {
		assert.False(t, CanModify(admin, "u1"))
	})

	t.Run("nil identity may not modify anything", func(t *testing.T) {
		assert.False(t, CanModify(nil, "u1"))
	})

	t.Run("empty owner matches nobody", func(t *testing.T) {
		assert.False(t, CanModify(owner, ""))
	})
}
