package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	h "lionshub/internal/delivery/http/helpers"
	"lionshub/internal/domain"
)

// RequireAuth returns a wrapper that validates the session token, loads the
// member behind the authenticated identity, and sets it in the request
// context. Missing or invalid credentials answer 401; a member outside the
// resolved tenant or an inactive member answers 403. It never redirects.
func RequireAuth(verifier domain.SessionVerifier, members domain.MemberService, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing credentials")
				return
			}
			principal, err := verifier.Verify(token)
			if err != nil {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}

			member, err := members.GetByAuthUserID(r.Context(), principal.UserID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "no member for this identity")
					return
				}
				logger.ErrorContext(r.Context(), "member lookup failed", "auth_user_id", principal.UserID, "err", err)
				h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "member lookup failed")
				return
			}
			if !member.Active || member.Status != domain.MemberStatusActive {
				h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "member is inactive")
				return
			}
			if tenant, ok := TenantFromContext(r.Context()); ok && member.TenantID != tenant.ID {
				h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "member does not belong to this club")
				return
			}

			ctx := SetPrincipal(r.Context(), principal)
			ctx = SetMember(ctx, member)
			next(w, r.WithContext(ctx))
		}
	}
}
