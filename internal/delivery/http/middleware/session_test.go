package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lionshub/internal/domain"
	"lionshub/internal/i18n"
)

// fakeIssuer implements domain.TokenIssuer.
type fakeIssuer struct {
	token  string
	err    error
	issued int
}

func (f *fakeIssuer) Issue(userID, email string, expiry time.Duration) (string, error) {
	f.issued++
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

func gateFixture(verifier domain.SessionVerifier) (http.Handler, *bool) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return SessionGate(verifier, nil, 0, slog.New(slog.DiscardHandler), next), &called
}

func TestSessionGate_Redirects(t *testing.T) {
	principal := &domain.Principal{UserID: "auth-1"}

	tests := []struct {
		name         string
		path         string
		verifier     domain.SessionVerifier
		token        string
		wantStatus   int
		wantLocation string
		wantNext     bool
	}{
		{
			name:         "unauthenticated protected page redirects to signin",
			path:         "/dashboard",
			verifier:     &fakeVerifier{err: errors.New("no session")},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/signin?redirect=%2Fdashboard",
		},
		{
			name:       "unauthenticated allow-listed page passes",
			path:       "/invite/tok-abc",
			verifier:   &fakeVerifier{err: errors.New("no session")},
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:       "unauthenticated API request passes for RequireAuth to answer",
			path:       "/api/me",
			verifier:   &fakeVerifier{err: errors.New("no session")},
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:         "authenticated signin page redirects to dashboard",
			path:         "/signin",
			verifier:     &fakeVerifier{principal: principal},
			token:        "valid",
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/dashboard",
		},
		{
			name:       "authenticated protected page passes",
			path:       "/dashboard",
			verifier:   &fakeVerifier{principal: principal},
			token:      "valid",
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:       "root is public",
			path:       "/",
			verifier:   &fakeVerifier{err: errors.New("no session")},
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, called := gateFixture(tt.verifier)
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantNext, *called)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			}
		})
	}
}

func TestSessionGate_Locale(t *testing.T) {
	tests := []struct {
		name           string
		cookie         string
		acceptLanguage string
		want           string
	}{
		{name: "defaults to German", want: i18n.LocaleDE},
		{name: "explicit cookie wins", cookie: "en", acceptLanguage: "de-DE", want: i18n.LocaleEN},
		{name: "invalid cookie is ignored", cookie: "fr", want: i18n.LocaleDE},
		{name: "English accept-language", acceptLanguage: "en-US,en;q=0.9", want: i18n.LocaleEN},
		{name: "German accept-language", acceptLanguage: "de-DE,de;q=0.9", want: i18n.LocaleDE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotCtxLocale string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotCtxLocale = LocaleFromContext(r.Context())
			})
			handler := SessionGate(&fakeVerifier{err: errors.New("no session")}, nil, 0, slog.New(slog.DiscardHandler), next)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "locale", Value: tt.cookie})
			}
			if tt.acceptLanguage != "" {
				req.Header.Set("Accept-Language", tt.acceptLanguage)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Header().Get("X-Locale"))
			assert.Equal(t, tt.want, gotCtxLocale)
		})
	}
}

func TestSessionGate_Refresh(t *testing.T) {
	const ttl = 24 * time.Hour
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	newReq := func(token string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
		return req
	}

	t.Run("cookie session in the second half of its lifetime is re-issued", func(t *testing.T) {
		verifier := &fakeVerifier{principal: &domain.Principal{
			UserID: "auth-1", Email: "m@example.com",
			ExpiresAt: time.Now().Add(time.Hour),
		}}
		issuer := &fakeIssuer{token: "fresh-token"}
		handler := SessionGate(verifier, issuer, ttl, slog.New(slog.DiscardHandler), next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newReq("old-token"))

		assert.Equal(t, http.StatusOK, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, sessionCookieName, cookies[0].Name)
		assert.Equal(t, "fresh-token", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("a fresh session is left alone", func(t *testing.T) {
		verifier := &fakeVerifier{principal: &domain.Principal{
			UserID: "auth-1", ExpiresAt: time.Now().Add(20 * time.Hour),
		}}
		issuer := &fakeIssuer{token: "fresh-token"}
		handler := SessionGate(verifier, issuer, ttl, slog.New(slog.DiscardHandler), next)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newReq("old-token"))

		assert.Empty(t, rec.Result().Cookies())
		assert.Zero(t, issuer.issued)
	})

	t.Run("bearer clients manage their own tokens", func(t *testing.T) {
		verifier := &fakeVerifier{principal: &domain.Principal{
			UserID: "auth-1", ExpiresAt: time.Now().Add(time.Hour),
		}}
		issuer := &fakeIssuer{token: "fresh-token"}
		handler := SessionGate(verifier, issuer, ttl, slog.New(slog.DiscardHandler), next)

		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.Header.Set("Authorization", "Bearer old-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Empty(t, rec.Result().Cookies())
		assert.Zero(t, issuer.issued)
	})
}
