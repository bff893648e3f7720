package domain

import (
	"context"
	"io"
	"time"
)

// Member statuses.
const (
	MemberStatusActive   = "active"
	MemberStatusInactive = "inactive"
)

// Member is a user account scoped to one tenant, optionally linked to an
// external authentication identity.
// swagger:model Member
type Member struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	AuthUserID *string   `json:"auth_user_id,omitempty"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Active     bool      `json:"active"`
	Status     string    `json:"status"`
	RoleID     *string   `json:"role_id,omitempty"`
	Locale     string    `json:"locale"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DisplayName returns "First Last", falling back to the email address.
func (m *Member) DisplayName() string {
	name := m.FirstName
	if m.LastName != "" {
		if name != "" {
			name += " "
		}
		name += m.LastName
	}
	if name == "" {
		return m.Email
	}
	return name
}

// MemberRepository defines the interface for member storage.
type MemberRepository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id string) (*Member, error)
	GetByAuthUserID(ctx context.Context, authUserID string) (*Member, error)
	GetByEmail(ctx context.Context, tenantID, email string) (*Member, error)
	List(ctx context.Context, tenantID string, p PaginationParams) ([]*Member, int, error)
	Update(ctx context.Context, m *Member) error
	// CountActiveAdmins counts active members holding the admin role type in
	// the tenant. Used by the last-admin deletion guard.
	CountActiveAdmins(ctx context.Context, tenantID string) (int, error)
	// DeleteWithReassign deletes the member in one transaction: authored
	// events are reassigned to newOwnerID, authored invitations are deleted,
	// and registrations cascade via foreign keys.
	DeleteWithReassign(ctx context.Context, memberID, newOwnerID string) error
}

// AvatarStorage is the object-storage port for member avatars.
type AvatarStorage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// AvatarUpload describes an uploaded avatar file before validation.
type AvatarUpload struct {
	ContentType string
	Size        int64
	Body        io.Reader
}

// MemberService defines member profile and administration operations.
type MemberService interface {
	GetByID(ctx context.Context, id string) (*Member, error)
	GetByAuthUserID(ctx context.Context, authUserID string) (*Member, error)
	UpdateProfile(ctx context.Context, m *Member) error
	SetAvatar(ctx context.Context, m *Member, upload *AvatarUpload) (url string, err error)
	RemoveAvatar(ctx context.Context, m *Member) error
	List(ctx context.Context, tenantID string, p PaginationParams) ([]*Member, int, error)
	// Delete removes targetID on behalf of actor, enforcing the
	// self-delete, same-tenant, and last-admin guards.
	Delete(ctx context.Context, actor *Member, targetID string) error
}
