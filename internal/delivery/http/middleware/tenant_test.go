package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lionshub/internal/domain"
)

// fakeTenantService implements domain.TenantService for middleware tests.
type fakeTenantService struct {
	tenant *domain.Tenant
	err    error
}

func (f *fakeTenantService) ResolveBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tenant, nil
}

func (f *fakeTenantService) ResolvePublicSite(ctx context.Context, slug, clubNumber string) (*domain.Tenant, error) {
	return f.tenant, f.err
}

func (f *fakeTenantService) RegisterClub(ctx context.Context, reg *domain.ClubRegistration) (*domain.Tenant, *domain.Member, error) {
	return nil, nil, nil
}

func (f *fakeTenantService) UpdateSettings(ctx context.Context, actor *domain.Member, upd *domain.TenantSettingsUpdate) (*domain.Tenant, error) {
	return nil, nil
}

func testHostConfig() HostConfig {
	return HostConfig{
		BaseDomain:        "lions-hub.de",
		AppSubdomains:     []string{"app", "www"},
		DefaultTenantSlug: "demo",
	}
}

func TestResolveTenant_ClubHost(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	t.Run("rewrites onto the public subsite routes", func(t *testing.T) {
		var gotPath string
		var gotInfo domain.HostInfo
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotInfo, _ = HostInfoFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})
		handler := ResolveTenant(&fakeTenantService{}, testHostConfig(), logger, next)

		req := httptest.NewRequest(http.MethodGet, "/veranstaltungen", nil)
		req.Host = "lions-lauf-123456.lions-hub.de"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "/public/lions-lauf/123456/veranstaltungen", gotPath)
		assert.Equal(t, domain.HostClub, gotInfo.Kind)
		assert.Equal(t, "lions-lauf", rec.Header().Get("X-Club-Slug"))
		assert.Equal(t, "123456", rec.Header().Get("X-Club-Number"))
		assert.Equal(t, "1", rec.Header().Get("X-Public-Site"))
	})

	t.Run("API paths keep their /api prefix", func(t *testing.T) {
		var gotPath string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
		})
		handler := ResolveTenant(&fakeTenantService{}, testHostConfig(), logger, next)

		req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
		req.Host = "musterstadt-111222.lions-hub.de"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "/api/public/musterstadt/111222/events", gotPath)
	})
}

func TestResolveTenant_AppHost(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	tenant := &domain.Tenant{ID: "tenant-1", Slug: "musterstadt"}

	t.Run("resolves the tenant from the query parameter", func(t *testing.T) {
		var gotTenant *domain.Tenant
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotTenant, _ = TenantFromContext(r.Context())
		})
		handler := ResolveTenant(&fakeTenantService{tenant: tenant}, testHostConfig(), logger, next)

		req := httptest.NewRequest(http.MethodGet, "/api/events?tenant=musterstadt", nil)
		req.Host = "app.lions-hub.de"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.NotNil(t, gotTenant)
		assert.Equal(t, "tenant-1", gotTenant.ID)
		assert.Equal(t, "musterstadt", rec.Header().Get("X-Tenant-Slug"))
	})

	t.Run("unprovisioned tenant is a server error", func(t *testing.T) {
		handler := ResolveTenant(&fakeTenantService{err: domain.ErrNotFound}, testHostConfig(), logger,
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
		req.Host = "app.lions-hub.de"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("plan-expired tenant is forbidden", func(t *testing.T) {
		handler := ResolveTenant(&fakeTenantService{err: domain.ErrPlanExpired}, testHostConfig(), logger,
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
		req.Host = "app.lions-hub.de"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("exempt paths skip resolution", func(t *testing.T) {
		called := false
		handler := ResolveTenant(&fakeTenantService{err: domain.ErrNotFound}, testHostConfig(), logger,
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

		req := httptest.NewRequest(http.MethodPost, "/api/clubs", nil)
		req.Host = "app.lions-hub.de"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
