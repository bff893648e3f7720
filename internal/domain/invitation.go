package domain

import (
	"context"
	"time"
)

// Invitation statuses. Transitions are one-directional:
// pending -> accepted | expired. Revocation is a hard delete so the same
// email can be invited again without colliding with the uniqueness
// constraint on (tenant, email, pending).
const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusExpired  = "expired"
	InvitationStatusRevoked  = "revoked"
)

// InvitationTTL is the validity window for a new invitation.
const InvitationTTL = 7 * 24 * time.Hour

// Invitation is a single-use, time-bounded offer to join a tenant.
// The token is a capability secret embedded verbatim in the accept URL.
// swagger:model Invitation
type Invitation struct {
	ID         string     `json:"id"`
	TenantID   string     `json:"tenant_id"`
	Email      string     `json:"email"`
	Token      string     `json:"-"`
	RoleType   string     `json:"role_type"`
	InvitedBy  string     `json:"invited_by"`
	Status     string     `json:"status"`
	ExpiresAt  time.Time  `json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Expired reports whether the invitation is past its expiry at the given
// instant. The boundary instant itself is still valid.
func (i *Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// InvitationRepository defines storage operations for invitations.
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	GetByToken(ctx context.Context, token string) (*Invitation, error)
	GetByID(ctx context.Context, id string) (*Invitation, error)
	GetPendingByEmail(ctx context.Context, tenantID, email string) (*Invitation, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*Invitation, error)
	// PurgeStale deletes expired/revoked rows for (tenant, email) so a fresh
	// invitation does not violate the uniqueness constraint.
	PurgeStale(ctx context.Context, tenantID, email string) error
	MarkExpired(ctx context.Context, id string) error
	// Accept creates the member and marks the invitation accepted in one
	// transaction. The update is guarded on status=pending, so of two
	// concurrent accepts only the first commit wins; the loser gets
	// ErrInvitationNotPending. A member uniqueness violation is returned as
	// ErrDuplicateMember and rolls back the whole transaction.
	Accept(ctx context.Context, inv *Invitation, member *Member) error
	// Delete hard-deletes the invitation; ErrNotFound when no row matched.
	Delete(ctx context.Context, id string) error
}

// InvitationDetails is the public view returned when fetching an invitation
// for acceptance. It never echoes the token.
type InvitationDetails struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	TenantName    string    `json:"tenant_name"`
	RoleName      string    `json:"role_name"`
	InvitedByName string    `json:"invited_by_name"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// InvitationAcceptance is the input for accepting an invitation. The auth
// user is created client-side against the auth provider immediately before.
type InvitationAcceptance struct {
	AuthUserID string
	FirstName  string
	LastName   string
}

// CreatedInvitation is the result of creating (or resending) an invitation.
// EmailSent is false when delivery failed; the invitation itself is still
// committed and the caller may retry delivery via resend.
type CreatedInvitation struct {
	Invitation *Invitation
	InviteURL  string
	EmailSent  bool
}

// InvitationService orchestrates the invitation workflow.
type InvitationService interface {
	Create(ctx context.Context, actor *Member, email, roleType string) (*CreatedInvitation, error)
	// GetByTokenOrID looks up by token, falling back to the internal UUID id
	// for backward compatibility. A past-expiry read transitions the row to
	// expired as a side effect.
	GetByTokenOrID(ctx context.Context, tokenOrID string) (*InvitationDetails, error)
	Accept(ctx context.Context, tokenOrID string, acc *InvitationAcceptance) (*Member, error)
	Resend(ctx context.Context, actor *Member, tokenOrID string) (*CreatedInvitation, error)
	Revoke(ctx context.Context, actor *Member, tokenOrID string) error
	List(ctx context.Context, actor *Member) ([]*Invitation, error)
}
