package domain

import (
	"context"
	"time"
)

// Tenant represents one club's isolated data partition.
// swagger:model Tenant
type Tenant struct {
	ID                string     `json:"id"`
	Slug              string     `json:"slug"`
	ClubNumber        string     `json:"club_number"`
	Name              string     `json:"name"`
	FeatureFlags      []string   `json:"feature_flags"`
	PlanExpiresAt     *time.Time `json:"plan_expires_at,omitempty"`
	PublicSiteEnabled bool       `json:"public_site_enabled"`
	PrimaryColor      string     `json:"primary_color"`
	LogoURL           string     `json:"logo_url"`
	About             string     `json:"about"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// PlanActive reports whether the tenant's plan is usable at the given instant.
// A nil expiry means the plan never expires. The boundary instant itself is
// still valid; only a strictly past expiry disables the tenant.
func (t *Tenant) PlanActive(now time.Time) bool {
	return t.PlanExpiresAt == nil || !now.After(*t.PlanExpiresAt)
}

// TenantSettingsUpdate holds the mutable branding and public-site fields.
// Nil fields are left unchanged.
type TenantSettingsUpdate struct {
	Name              *string
	PublicSiteEnabled *bool
	PrimaryColor      *string
	LogoURL           *string
	About             *string
}

// TenantRepository defines the interface for tenant storage.
type TenantRepository interface {
	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
	GetBySlugAndNumber(ctx context.Context, slug, clubNumber string) (*Tenant, error)
	Update(ctx context.Context, tenant *Tenant) error
	// CreateWithDefaults creates the tenant, its seeded default roles with
	// their permission bundles, and the founding admin member in one
	// transaction.
	CreateWithDefaults(ctx context.Context, tenant *Tenant, admin *Member) error
}

// ClubRegistration is the input for registering a new club.
type ClubRegistration struct {
	Slug       string
	ClubNumber string
	Name       string
	AdminEmail string
	FirstName  string
	LastName   string
	AuthUserID string
}

// TenantService defines tenant resolution and club lifecycle operations.
type TenantService interface {
	// ResolveBySlug returns the tenant for an application route, or
	// ErrNotFound / ErrPlanExpired. Results are cached for a short interval.
	ResolveBySlug(ctx context.Context, slug string) (*Tenant, error)
	// ResolvePublicSite returns the tenant for a public club subdomain.
	// ErrNotFound covers both a missing tenant and a disabled public site.
	ResolvePublicSite(ctx context.Context, slug, clubNumber string) (*Tenant, error)
	RegisterClub(ctx context.Context, reg *ClubRegistration) (*Tenant, *Member, error)
	UpdateSettings(ctx context.Context, actor *Member, upd *TenantSettingsUpdate) (*Tenant, error)
}
