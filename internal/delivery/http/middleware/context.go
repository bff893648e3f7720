package middleware

import (
	"context"

	"lionshub/internal/domain"
	"lionshub/internal/i18n"
)

type contextKey string

const (
	principalKey contextKey = "principal"
	memberKey    contextKey = "member"
	tenantKey    contextKey = "tenant"
	hostInfoKey  contextKey = "hostInfo"
	localeKey    contextKey = "locale"
)

// SetPrincipal returns a context with the verified session principal set.
func SetPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the session principal, if present.
func PrincipalFromContext(ctx context.Context) (*domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*domain.Principal)
	return p, ok
}

// SetMember returns a context with the acting member set. Used by RequireAuth.
func SetMember(ctx context.Context, m *domain.Member) context.Context {
	return context.WithValue(ctx, memberKey, m)
}

// MemberFromContext returns the authenticated member from the context, if present.
func MemberFromContext(ctx context.Context) (*domain.Member, bool) {
	m, ok := ctx.Value(memberKey).(*domain.Member)
	return m, ok
}

// SetTenant returns a context with the resolved tenant set.
func SetTenant(ctx context.Context, t *domain.Tenant) context.Context {
	return context.WithValue(ctx, tenantKey, t)
}

// TenantFromContext returns the resolved tenant from the context, if present.
func TenantFromContext(ctx context.Context) (*domain.Tenant, bool) {
	t, ok := ctx.Value(tenantKey).(*domain.Tenant)
	return t, ok
}

// SetHostInfo returns a context with the host classification set.
func SetHostInfo(ctx context.Context, h domain.HostInfo) context.Context {
	return context.WithValue(ctx, hostInfoKey, h)
}

// HostInfoFromContext returns the host classification, if present.
func HostInfoFromContext(ctx context.Context) (domain.HostInfo, bool) {
	h, ok := ctx.Value(hostInfoKey).(domain.HostInfo)
	return h, ok
}

// SetLocale returns a context with the resolved locale set.
func SetLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey, locale)
}

// LocaleFromContext returns the resolved request locale, defaulting when unset.
func LocaleFromContext(ctx context.Context) string {
	if l, ok := ctx.Value(localeKey).(string); ok && l != "" {
		return l
	}
	return i18n.DefaultLocale
}
