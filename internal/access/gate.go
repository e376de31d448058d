// Package access gates capability-restricted views on the current session.
package access

import (
	"inkwell/internal/session"
)

// Capability is a named access requirement checked before rendering a
// restricted view.
type Capability string

const (
	AuthenticatedOnly Capability = "authenticated"
	AdminOnly         Capability = "admin"
)

// Decision is the three-valued outcome of an access check. Pending exists so
// callers can defer rendering while a persisted session is still being
// confirmed; collapsing it to a boolean makes every reload flash a denial at
// legitimately authenticated users.
type Decision int

const (
	Deny Decision = iota
	Allow
	Pending
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Pending:
		return "pending"
	default:
		return "deny"
	}
}

// Allowed is a convenience for callers that have already handled Pending.
func (d Decision) Allowed() bool {
	return d == Allow
}

// SessionSource supplies the current session snapshot. The session manager
// implements it.
type SessionSource interface {
	Snapshot() session.Session
}

// Gate evaluates capabilities against the current session. It carries no
// state of its own.
type Gate struct {
	sessions SessionSource
}

func NewGate(sessions SessionSource) *Gate {
	return &Gate{sessions: sessions}
}

// CanAccess reports whether the current session satisfies the capability.
// While restoration is in flight the answer is Pending, never a premature
// denial.
func (g *Gate) CanAccess(capability Capability) Decision {
	snap := g.sessions.Snapshot()

	if snap.State == session.StateRestoring {
		return Pending
	}
	if snap.State != session.StateAuthenticated || snap.Identity == nil {
		return Deny
	}

	switch capability {
	case AuthenticatedOnly:
		return Allow
	case AdminOnly:
		if snap.Identity.Admin {
			return Allow
		}
		return Deny
	default:
		return Deny
	}
}

// CanModify reports whether the identity owns the resource with the given
// owner ID. The server stays authoritative; this only drives client-side
// affordances. Admins get no special treatment here because the API enforces
// owner-only mutation.
func CanModify(identity *session.Identity, ownerID string) bool {
	if identity == nil || ownerID == "" {
		return false
	}
	return identity.ID == ownerID
}
