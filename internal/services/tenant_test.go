package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lionshub/internal/domain"
)

func TestTenantService_ResolveBySlug(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("caches lookups within the revalidation window", func(t *testing.T) {
		now := base
		repo := newFakeTenantRepo()
		repo.add(&domain.Tenant{ID: "tenant-1", Slug: "lions-musterstadt", Name: "LC Musterstadt"})
		svc := NewTenantService(repo, &fakePermissions{}, nil, func() time.Time { return now })

		first, err := svc.ResolveBySlug(ctx, "lions-musterstadt")
		require.NoError(t, err)

		// Remove the backing row; the cached entry must still serve.
		delete(repo.bySlug, "lions-musterstadt")
		now = now.Add(30 * time.Second)
		second, err := svc.ResolveBySlug(ctx, "lions-musterstadt")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		// Past the window the database is authoritative again.
		now = now.Add(tenantCacheTTL)
		_, err = svc.ResolveBySlug(ctx, "lions-musterstadt")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("never returns a plan-expired tenant, cached or not", func(t *testing.T) {
		now := base
		expiry := base.Add(time.Minute)
		repo := newFakeTenantRepo()
		repo.add(&domain.Tenant{ID: "tenant-1", Slug: "lions-musterstadt", PlanExpiresAt: &expiry})
		svc := NewTenantService(repo, &fakePermissions{}, nil, func() time.Time { return now })

		_, err := svc.ResolveBySlug(ctx, "lions-musterstadt")
		require.NoError(t, err, "plan still active at the boundary minus a minute")

		// The entry is now cached; crossing the plan expiry must still block.
		now = expiry.Add(time.Second)
		_, err = svc.ResolveBySlug(ctx, "lions-musterstadt")
		assert.ErrorIs(t, err, domain.ErrPlanExpired)
	})

	t.Run("plan expiry boundary instant is still active", func(t *testing.T) {
		now := base
		repo := newFakeTenantRepo()
		repo.add(&domain.Tenant{ID: "tenant-1", Slug: "lions-musterstadt", PlanExpiresAt: &base})
		svc := NewTenantService(repo, &fakePermissions{}, nil, func() time.Time { return now })

		_, err := svc.ResolveBySlug(ctx, "lions-musterstadt")
		assert.NoError(t, err)
	})

	t.Run("unknown slug is not found", func(t *testing.T) {
		svc := NewTenantService(newFakeTenantRepo(), &fakePermissions{}, nil, testClock(base))
		_, err := svc.ResolveBySlug(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestTenantService_ResolvePublicSite(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	repoWith := func(enabled bool) *fakeTenantRepo {
		repo := newFakeTenantRepo()
		repo.add(&domain.Tenant{
			ID: "tenant-1", Slug: "lions-musterstadt", ClubNumber: "111222",
			PublicSiteEnabled: enabled,
		})
		return repo
	}

	t.Run("resolves an enabled public site", func(t *testing.T) {
		svc := NewTenantService(repoWith(true), &fakePermissions{}, nil, testClock(base))
		tenant, err := svc.ResolvePublicSite(ctx, "lions-musterstadt", "111222")
		require.NoError(t, err)
		assert.Equal(t, "tenant-1", tenant.ID)
	})

	t.Run("disabled public site reads as not found", func(t *testing.T) {
		svc := NewTenantService(repoWith(false), &fakePermissions{}, nil, testClock(base))
		_, err := svc.ResolvePublicSite(ctx, "lions-musterstadt", "111222")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("club number must match the slug", func(t *testing.T) {
		svc := NewTenantService(repoWith(true), &fakePermissions{}, nil, testClock(base))
		_, err := svc.ResolvePublicSite(ctx, "lions-musterstadt", "999999")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestTenantService_RegisterClub(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	registration := func() *domain.ClubRegistration {
		return &domain.ClubRegistration{
			Slug:       "Lions-Musterstadt",
			ClubNumber: "111222",
			Name:       "LC Musterstadt",
			AdminEmail: "Praesident@Example.com",
			FirstName:  "Erika",
			LastName:   "Muster",
			AuthUserID: "auth-1",
		}
	}

	t.Run("provisions tenant with founding admin and welcome email", func(t *testing.T) {
		repo := newFakeTenantRepo()
		email := &fakeEmailService{}
		svc := NewTenantService(repo, &fakePermissions{}, email, testClock(base))

		tenant, admin, err := svc.RegisterClub(ctx, registration())
		require.NoError(t, err)
		assert.Equal(t, "lions-musterstadt", tenant.Slug, "slug is lowercased")
		assert.Equal(t, "111222", tenant.ClubNumber)
		assert.Equal(t, "praesident@example.com", admin.Email)
		assert.True(t, admin.Active)
		require.NotNil(t, admin.RoleID)

		require.Len(t, email.welcomes, 1)
		assert.Equal(t, "praesident@example.com", email.welcomes[0].Email)
		assert.Equal(t, "LC Musterstadt", email.welcomes[0].TenantName)
	})

	t.Run("duplicate slug is rejected", func(t *testing.T) {
		repo := newFakeTenantRepo()
		repo.add(&domain.Tenant{ID: "tenant-1", Slug: "lions-musterstadt"})
		svc := NewTenantService(repo, &fakePermissions{}, nil, testClock(base))

		_, _, err := svc.RegisterClub(ctx, registration())
		assert.ErrorIs(t, err, domain.ErrDuplicateSlug)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		svc := NewTenantService(newFakeTenantRepo(), &fakePermissions{}, nil, testClock(base))

		bad := registration()
		bad.Slug = "Lions_Musterstadt!"
		_, _, err := svc.RegisterClub(ctx, bad)
		assert.Error(t, err)

		bad = registration()
		bad.ClubNumber = "12a4"
		_, _, err = svc.RegisterClub(ctx, bad)
		assert.Error(t, err)

		bad = registration()
		bad.AdminEmail = ""
		_, _, err = svc.RegisterClub(ctx, bad)
		assert.Error(t, err)
	})

	t.Run("welcome email failure does not fail registration", func(t *testing.T) {
		email := &fakeEmailService{sendErr: assert.AnError}
		svc := NewTenantService(newFakeTenantRepo(), &fakePermissions{}, email, testClock(base))

		_, _, err := svc.RegisterClub(ctx, registration())
		assert.NoError(t, err)
	})
}

func TestTenantService_UpdateSettings(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	actor := &domain.Member{ID: "member-1", TenantID: "tenant-1"}

	seeded := func() *fakeTenantRepo {
		repo := newFakeTenantRepo()
		repo.add(&domain.Tenant{ID: "tenant-1", Slug: "lions-musterstadt", Name: "LC Musterstadt"})
		return repo
	}

	t.Run("requires the tenant settings permission", func(t *testing.T) {
		svc := NewTenantService(seeded(), &fakePermissions{set: domain.NewPermissionSet(nil)}, nil, testClock(base))
		name := "Neu"
		_, err := svc.UpdateSettings(ctx, actor, &domain.TenantSettingsUpdate{Name: &name})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("applies only the provided fields", func(t *testing.T) {
		repo := seeded()
		perms := &fakePermissions{set: domain.NewPermissionSet([]string{domain.PermTenantSettings})}
		svc := NewTenantService(repo, perms, nil, testClock(base))

		enabled := true
		color := "#003399"
		updated, err := svc.UpdateSettings(ctx, actor, &domain.TenantSettingsUpdate{
			PublicSiteEnabled: &enabled,
			PrimaryColor:      &color,
		})
		require.NoError(t, err)
		assert.Equal(t, "LC Musterstadt", updated.Name, "unset fields are untouched")
		assert.True(t, updated.PublicSiteEnabled)
		assert.Equal(t, "#003399", updated.PrimaryColor)
		assert.Equal(t, 1, repo.updated)
	})

	t.Run("invalidates the resolver cache", func(t *testing.T) {
		repo := seeded()
		perms := &fakePermissions{set: domain.NewPermissionSet([]string{domain.PermTenantSettings})}
		svc := NewTenantService(repo, perms, nil, testClock(base))

		_, err := svc.ResolveBySlug(ctx, "lions-musterstadt")
		require.NoError(t, err)

		name := "LC Musterstadt am See"
		_, err = svc.UpdateSettings(ctx, actor, &domain.TenantSettingsUpdate{Name: &name})
		require.NoError(t, err)

		resolved, err := svc.ResolveBySlug(ctx, "lions-musterstadt")
		require.NoError(t, err)
		assert.Equal(t, "LC Musterstadt am See", resolved.Name)
	})
}
