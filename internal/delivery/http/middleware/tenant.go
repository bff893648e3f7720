package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"lionshub/internal/delivery/http/helpers"
	"lionshub/internal/domain"
	"lionshub/internal/i18n"
)

// HostConfig carries the host-classification settings for ResolveTenant.
type HostConfig struct {
	BaseDomain        string
	AppSubdomains     []string
	DefaultTenantSlug string
}

// tenantExemptPrefixes are application paths that work without a resolved
// tenant: club registration, public subsite routes, invitation acceptance
// (the tenant comes from the invitation row), and docs.
var tenantExemptPrefixes = []string{
	"/public/",
	"/api/public/",
	"/api/clubs",
	"/api/invitations/",
	"/invite/",
	"/swagger/",
	"/healthz",
}

func tenantExempt(path string) bool {
	for _, p := range tenantExemptPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// ResolveTenant classifies the request host and attaches the tenant context.
//
// Club hosts ({slug}-{clubNumber}.base) are rewritten onto the public subsite
// routes and marked with X-Club-Slug, X-Club-Number, and X-Public-Site
// headers. All other hosts resolve the tenant from the ?tenant= query
// parameter, falling back to the configured default slug, and mark the
// response with X-Tenant-Slug.
func ResolveTenant(tenants domain.TenantService, cfg HostConfig, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := domain.ClassifyHost(r.Host, cfg.BaseDomain, cfg.AppSubdomains)
		r = r.WithContext(SetHostInfo(r.Context(), info))

		if info.Kind == domain.HostClub {
			w.Header().Set("X-Club-Slug", info.Slug)
			w.Header().Set("X-Club-Number", info.ClubNumber)
			w.Header().Set("X-Public-Site", "1")
			prefix := "/public/" + info.Slug + "/" + info.ClubNumber
			if rest, ok := strings.CutPrefix(r.URL.Path, "/api"); ok {
				r.URL.Path = "/api" + prefix + rest
			} else if !strings.HasPrefix(r.URL.Path, prefix) {
				r.URL.Path = prefix + r.URL.Path
			}
			next.ServeHTTP(w, r)
			return
		}

		if tenantExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		slug := r.URL.Query().Get("tenant")
		if slug == "" {
			slug = cfg.DefaultTenantSlug
		}
		if slug == "" {
			next.ServeHTTP(w, r)
			return
		}

		tenant, err := tenants.ResolveBySlug(r.Context(), slug)
		if err != nil {
			locale := LocaleFromContext(r.Context())
			switch {
			case errors.Is(err, domain.ErrPlanExpired):
				helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, i18n.T(locale, "tenant.plan_expired"))
			case errors.Is(err, domain.ErrNotFound):
				// An application route without a provisioned tenant is a
				// deployment defect, not a client error.
				logger.ErrorContext(r.Context(), "tenant not provisioned", "slug", slug, "host", r.Host)
				helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "tenant not provisioned")
			default:
				logger.ErrorContext(r.Context(), "tenant resolution failed", "slug", slug, "err", err)
				helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "tenant resolution failed")
			}
			return
		}
		w.Header().Set("X-Tenant-Slug", tenant.Slug)
		r = r.WithContext(SetTenant(r.Context(), tenant))
		next.ServeHTTP(w, r)
	})
}
