package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger"

	"lionshub/internal/delivery/http/controllers"
	"lionshub/internal/delivery/http/middleware"
	"lionshub/internal/domain"
)

// Controllers groups the route handlers for NewRouter.
type Controllers struct {
	Tenant     *controllers.TenantController
	Invitation *controllers.InvitationController
	Member     *controllers.MemberController
	Event      *controllers.EventController
}

// NewRouter initializes the HTTP router with all application routes and the
// middleware chain: logging, CORS, session gate, host/tenant resolution.
// The unauthenticated invitation endpoints are rate limited per client IP
// because the token is guessable input.
func NewRouter(
	logger *slog.Logger,
	tenants domain.TenantService,
	members domain.MemberService,
	verifier domain.SessionVerifier,
	issuer domain.TokenIssuer,
	sessionTTL time.Duration,
	hostCfg middleware.HostConfig,
	corsOrigins []string,
	c Controllers,
) http.Handler {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier, members, logger)
	rate := httprate.LimitByIP(30, time.Minute)

	// Club lifecycle
	mux.HandleFunc("POST /api/clubs", c.Tenant.RegisterClub)
	mux.HandleFunc("GET /api/tenant", auth(c.Tenant.GetSettings))
	mux.HandleFunc("PATCH /api/tenant", auth(c.Tenant.UpdateSettings))

	// Public subsite
	mux.HandleFunc("GET /api/public/{slug}/{clubNumber}", c.Tenant.PublicSite)
	mux.HandleFunc("GET /api/public/{slug}/{clubNumber}/events", c.Tenant.PublicEvents)

	// Invitations
	mux.HandleFunc("POST /api/invitations", auth(c.Invitation.Create))
	mux.HandleFunc("GET /api/invitations", auth(c.Invitation.List))
	mux.Handle("GET /api/invitations/{token}", rate(http.HandlerFunc(c.Invitation.Get)))
	mux.Handle("POST /api/invitations/{token}/accept", rate(http.HandlerFunc(c.Invitation.Accept)))
	mux.HandleFunc("POST /api/invitations/{token}", auth(c.Invitation.Resend))
	mux.HandleFunc("DELETE /api/invitations/{token}", auth(c.Invitation.Revoke))

	// Profile
	mux.HandleFunc("GET /api/me", auth(c.Member.GetMe))
	mux.HandleFunc("PATCH /api/me", auth(c.Member.UpdateMe))
	mux.HandleFunc("POST /api/me/avatar", auth(c.Member.UploadAvatar))
	mux.HandleFunc("DELETE /api/me/avatar", auth(c.Member.DeleteAvatar))

	// Member administration
	mux.HandleFunc("GET /api/members", auth(c.Member.List))
	mux.HandleFunc("DELETE /api/members/{id}", auth(c.Member.Delete))

	// Events
	mux.HandleFunc("POST /api/events", auth(c.Event.Create))
	mux.HandleFunc("GET /api/events", auth(c.Event.List))
	mux.HandleFunc("GET /api/events/{id}", auth(c.Event.Get))
	mux.HandleFunc("PATCH /api/events/{id}", auth(c.Event.Update))
	mux.HandleFunc("POST /api/events/{id}/registrations", auth(c.Event.Register))
	mux.HandleFunc("GET /api/events/{id}/registrations", auth(c.Event.ListRegistrations))

	// Health & docs
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = mux
	handler = middleware.ResolveTenant(tenants, hostCfg, logger, handler)
	handler = middleware.SessionGate(verifier, issuer, sessionTTL, logger, handler)
	handler = middleware.CORS(corsOrigins, handler)
	handler = middleware.LoggingMiddleware(logger, handler)
	return handler
}
