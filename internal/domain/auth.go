package domain

import (
	"context"
	"time"
)

// Principal is the authenticated external identity attached to a request.
// ExpiresAt carries the token's expiry so the session gate can decide whether
// to re-issue; a zero value means the token has no expiry claim.
type Principal struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// SessionVerifier verifies a session token and returns the principal.
type SessionVerifier interface {
	Verify(token string) (*Principal, error)
}

// TokenIssuer issues session tokens. The session gate re-issues tokens close
// to expiry to keep cookies fresh.
type TokenIssuer interface {
	Issue(userID, email string, expiry time.Duration) (string, error)
}

// AuthAdmin is the auth provider's admin API port. DeleteUser removes the
// external identity; callers on the member-deletion path treat failure as
// non-fatal and prefer an orphaned identity over a stuck deletion.
type AuthAdmin interface {
	DeleteUser(ctx context.Context, authUserID string) error
}
