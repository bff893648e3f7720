package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"lionshub/internal/delivery/http/helpers"
	"lionshub/internal/delivery/http/middleware"
	"lionshub/internal/domain"
	"lionshub/internal/i18n"
	"lionshub/internal/services"
)

// writeDomainError maps domain sentinel errors to the HTTP envelope with a
// localized message. notFoundKey selects the message for ErrNotFound so each
// resource reports its own wording. Unknown errors are logged and answered
// with 500.
func writeDomainError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error, notFoundKey string) {
	locale := middleware.LocaleFromContext(r.Context())
	t := func(key string) string { return i18n.T(locale, key) }

	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, t(notFoundKey))
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, t("forbidden"))
	case errors.Is(err, domain.ErrInvitationExpired):
		helpers.WriteJSONError(w, http.StatusGone, helpers.ErrCodeGone, t("invitation.expired"))
	case errors.Is(err, domain.ErrInvitationNotPending):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, t("invitation.invalid"))
	case errors.Is(err, domain.ErrDuplicateInvitation):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, t("invitation.duplicate"))
	case errors.Is(err, domain.ErrDuplicateMember):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, t("member.exists"))
	case errors.Is(err, domain.ErrSelfDelete):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, t("member.self_delete"))
	case errors.Is(err, domain.ErrLastAdmin):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, t("member.last_admin"))
	case errors.Is(err, domain.ErrDuplicateSlug):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, t("tenant.slug_taken"))
	case errors.Is(err, domain.ErrPlanExpired):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, t("tenant.plan_expired"))
	case errors.Is(err, domain.ErrInvalidEventWindow):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, t("event.invalid_window"))
	case errors.Is(err, domain.ErrEventCancelled):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, t("event.cancelled"))
	case errors.Is(err, domain.ErrRegistrationClosed):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, t("event.registration_closed"))
	case errors.Is(err, services.ErrAvatarTooLarge):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, t("avatar.too_large"))
	case errors.Is(err, services.ErrAvatarType):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, t("avatar.type_not_allowed"))
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// requireMember reads the authenticated member set by RequireAuth. A missing
// member means the route was wired without the middleware.
func requireMember(w http.ResponseWriter, r *http.Request) (*domain.Member, bool) {
	m, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return nil, false
	}
	return m, true
}

// tenantFromRequest reads the tenant resolved by the host middleware.
func tenantFromRequest(w http.ResponseWriter, r *http.Request) (*domain.Tenant, bool) {
	t, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "tenant not resolved")
		return nil, false
	}
	return t, true
}
