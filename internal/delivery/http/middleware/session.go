package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lionshub/internal/domain"
	"lionshub/internal/i18n"
)

// sessionCookieName is the cookie carrying the session token for browser
// navigation; API clients send the same token as a Bearer header.
const sessionCookieName = "session"

// sessionAllowPrefixes are paths reachable without a session.
var sessionAllowPrefixes = []string{
	"/signin",
	"/signup",
	"/password-reset",
	"/auth/callback",
	"/public/",
	"/invite/",
	"/swagger/",
	"/healthz",
}

func sessionAllowed(path string) bool {
	if path == "/" {
		return true
	}
	for _, p := range sessionAllowPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// resolveLocale picks the request locale: explicit cookie first, then an
// English Accept-Language preference, then the German default.
func resolveLocale(r *http.Request) string {
	if c, err := r.Cookie("locale"); err == nil {
		switch c.Value {
		case i18n.LocaleDE, i18n.LocaleEN:
			return c.Value
		}
	}
	if al := r.Header.Get("Accept-Language"); al != "" {
		first := strings.TrimSpace(strings.SplitN(al, ",", 2)[0])
		if strings.HasPrefix(strings.ToLower(first), "en") {
			return i18n.LocaleEN
		}
	}
	return i18n.DefaultLocale
}

// sessionToken extracts the session token from the Authorization header,
// falling back to the session cookie.
func sessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		const prefix = "Bearer "
		if strings.HasPrefix(auth, prefix) {
			return strings.TrimSpace(auth[len(prefix):])
		}
		return ""
	}
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// refreshSession re-issues the session cookie when the verified token is in
// the second half of its lifetime, so an active browser session never lapses.
// Bearer clients manage their own tokens and are left alone.
func refreshSession(w http.ResponseWriter, r *http.Request, issuer domain.TokenIssuer, p *domain.Principal, ttl time.Duration, logger *slog.Logger) {
	if issuer == nil || ttl <= 0 || p.ExpiresAt.IsZero() {
		return
	}
	if _, err := r.Cookie(sessionCookieName); err != nil {
		return
	}
	if time.Until(p.ExpiresAt) > ttl/2 {
		return
	}
	token, err := issuer.Issue(p.UserID, p.Email, ttl)
	if err != nil {
		logger.ErrorContext(r.Context(), "session refresh failed", "err", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionGate resolves the locale and the session principal for every
// request and enforces the navigation rules: unauthenticated requests to
// protected pages redirect to /signin with a return target, authenticated
// requests to the sign-in/sign-up pages redirect to /dashboard, and API
// routes never redirect (RequireAuth answers 401 JSON instead). Cookie
// sessions nearing expiry are re-issued with a fresh token.
func SessionGate(verifier domain.SessionVerifier, issuer domain.TokenIssuer, sessionTTL time.Duration, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := resolveLocale(r)
		w.Header().Set("X-Locale", locale)
		ctx := SetLocale(r.Context(), locale)

		var principal *domain.Principal
		if token := sessionToken(r); token != "" {
			p, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(ctx, "session token rejected", "err", err)
			} else {
				principal = p
				ctx = SetPrincipal(ctx, p)
				refreshSession(w, r, issuer, p, sessionTTL, logger)
			}
		}
		r = r.WithContext(ctx)

		path := r.URL.Path
		if principal != nil && (strings.HasPrefix(path, "/signin") || strings.HasPrefix(path, "/signup")) {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		if principal == nil && !sessionAllowed(path) && !strings.HasPrefix(path, "/api/") {
			http.Redirect(w, r, "/signin?redirect="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
