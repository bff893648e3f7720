package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"lionshub/internal/cache"
	"lionshub/internal/domain"
	"lionshub/internal/i18n"
)

// tenantCacheTTL is the revalidation window for tenant lookups. Entries may
// be stale by at most this interval; the database stays authoritative.
const tenantCacheTTL = 60 * time.Second

var slugRegexp = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type tenantService struct {
	tenantRepo   domain.TenantRepository
	permissions  domain.PermissionService
	emailService domain.EmailService
	lookupCache  *cache.TTL[*domain.Tenant]
	now          func() time.Time
}

// NewTenantService creates a TenantService with a 60-second lookup cache.
// A nil clock defaults to time.Now.
func NewTenantService(tenantRepo domain.TenantRepository, permissions domain.PermissionService, emailService domain.EmailService, clock cache.Clock) domain.TenantService {
	if clock == nil {
		clock = time.Now
	}
	return &tenantService{
		tenantRepo:   tenantRepo,
		permissions:  permissions,
		emailService: emailService,
		lookupCache:  cache.NewTTL[*domain.Tenant](tenantCacheTTL, clock),
		now:          clock,
	}
}

func tenantTag(slug string) string { return "tenant:" + slug }

// ResolveBySlug returns the tenant for an application route. A tenant whose
// plan expiry is strictly in the past is never returned.
func (s *tenantService) ResolveBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	if t, ok := s.lookupCache.Get(slug); ok {
		if !t.PlanActive(s.now()) {
			return nil, domain.ErrPlanExpired
		}
		return t, nil
	}
	t, err := s.tenantRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	if !t.PlanActive(s.now()) {
		return nil, domain.ErrPlanExpired
	}
	s.lookupCache.Set(slug, t, tenantTag(slug))
	return t, nil
}

// ResolvePublicSite returns the tenant behind a public club subdomain.
// A missing tenant and a disabled public site are both ErrNotFound.
func (s *tenantService) ResolvePublicSite(ctx context.Context, slug, clubNumber string) (*domain.Tenant, error) {
	t, err := s.tenantRepo.GetBySlugAndNumber(ctx, slug, clubNumber)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	if !t.PublicSiteEnabled || !t.PlanActive(s.now()) {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (s *tenantService) RegisterClub(ctx context.Context, reg *domain.ClubRegistration) (*domain.Tenant, *domain.Member, error) {
	slug := strings.ToLower(strings.TrimSpace(reg.Slug))
	if !slugRegexp.MatchString(slug) {
		return nil, nil, fmt.Errorf("invalid slug format")
	}
	clubNumber := strings.TrimSpace(reg.ClubNumber)
	for _, c := range clubNumber {
		if c < '0' || c > '9' {
			return nil, nil, fmt.Errorf("club number must be numeric")
		}
	}
	if clubNumber == "" || reg.Name == "" || reg.AdminEmail == "" {
		return nil, nil, fmt.Errorf("club number, name, and admin email are required")
	}

	now := s.now()
	tenant := &domain.Tenant{
		Slug:         slug,
		ClubNumber:   clubNumber,
		Name:         strings.TrimSpace(reg.Name),
		FeatureFlags: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	var authUserID *string
	if reg.AuthUserID != "" {
		authUserID = &reg.AuthUserID
	}
	admin := &domain.Member{
		AuthUserID: authUserID,
		Email:      strings.ToLower(strings.TrimSpace(reg.AdminEmail)),
		FirstName:  strings.TrimSpace(reg.FirstName),
		LastName:   strings.TrimSpace(reg.LastName),
		Active:     true,
		Status:     domain.MemberStatusActive,
		Locale:     i18n.DefaultLocale,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.tenantRepo.CreateWithDefaults(ctx, tenant, admin); err != nil {
		if errors.Is(err, domain.ErrDuplicateSlug) {
			return nil, nil, domain.ErrDuplicateSlug
		}
		return nil, nil, fmt.Errorf("register club: %w", err)
	}

	// Welcome email is best-effort; registration is already committed.
	if s.emailService != nil {
		data := &domain.WelcomeEmailData{
			Email:      admin.Email,
			FirstName:  admin.FirstName,
			TenantName: tenant.Name,
			Locale:     admin.Locale,
		}
		if err := s.emailService.SendWelcome(ctx, data); err != nil {
			// Logged by the email service; not fatal.
			_ = err
		}
	}
	return tenant, admin, nil
}

func (s *tenantService) UpdateSettings(ctx context.Context, actor *domain.Member, upd *domain.TenantSettingsUpdate) (*domain.Tenant, error) {
	perms, err := s.permissions.PermissionsFor(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("load permissions: %w", err)
	}
	if !perms.Has(domain.PermTenantSettings) {
		return nil, domain.ErrForbidden
	}

	t, err := s.tenantRepo.GetByID(ctx, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	if upd.Name != nil {
		t.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.PublicSiteEnabled != nil {
		t.PublicSiteEnabled = *upd.PublicSiteEnabled
	}
	if upd.PrimaryColor != nil {
		t.PrimaryColor = *upd.PrimaryColor
	}
	if upd.LogoURL != nil {
		t.LogoURL = *upd.LogoURL
	}
	if upd.About != nil {
		t.About = *upd.About
	}
	t.UpdatedAt = s.now()
	if err := s.tenantRepo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update tenant: %w", err)
	}
	s.lookupCache.InvalidateTag(tenantTag(t.Slug))
	return t, nil
}
