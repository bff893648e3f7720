package controllers

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"lionshub/internal/delivery/http/helpers"
	"lionshub/internal/domain"
)

var (
	slugRegexp       = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	clubNumberRegexp = regexp.MustCompile(`^[0-9]+$`)
)

// RegisterClubRequest is the request body for POST /api/clubs.
type RegisterClubRequest struct {
	Slug       string `json:"slug"`
	ClubNumber string `json:"club_number"`
	Name       string `json:"name"`
	AdminEmail string `json:"admin_email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	AuthUserID string `json:"auth_user_id"`
}

// Validate implements Validator.
func (c RegisterClubRequest) Validate() []string {
	var errs []string
	slug := strings.TrimSpace(strings.ToLower(c.Slug))
	if slug == "" {
		errs = append(errs, "slug is required")
	} else if !slugRegexp.MatchString(slug) {
		errs = append(errs, "slug may contain lowercase letters, digits, and single hyphens")
	}
	if c.ClubNumber == "" {
		errs = append(errs, "club_number is required")
	} else if !clubNumberRegexp.MatchString(c.ClubNumber) {
		errs = append(errs, "club_number must be numeric")
	}
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	email := strings.TrimSpace(strings.ToLower(c.AdminEmail))
	if email == "" {
		errs = append(errs, "admin_email is required")
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid admin_email format")
	}
	return errs
}

// RegisterClubResponse is the response body for POST /api/clubs.
type RegisterClubResponse struct {
	Tenant *domain.Tenant `json:"tenant"`
	Admin  *domain.Member `json:"admin"`
}

// UpdateTenantSettingsRequest is the request body for PATCH /api/tenant.
// All fields are optional; absent fields are left unchanged.
type UpdateTenantSettingsRequest struct {
	Name              *string `json:"name"`
	PublicSiteEnabled *bool   `json:"public_site_enabled"`
	PrimaryColor      *string `json:"primary_color"`
	LogoURL           *string `json:"logo_url"`
	About             *string `json:"about"`
}

// Validate implements Validator.
func (u UpdateTenantSettingsRequest) Validate() []string {
	var errs []string
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		errs = append(errs, "name cannot be empty")
	}
	return errs
}

// PublicSiteResponse is the public club subsite payload. It exposes only
// branding and public information, never member data.
type PublicSiteResponse struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ClubNumber   string `json:"club_number"`
	PrimaryColor string `json:"primary_color,omitempty"`
	LogoURL      string `json:"logo_url,omitempty"`
	About        string `json:"about,omitempty"`
}

// TenantController handles club registration, settings, and the public subsite.
type TenantController struct {
	Logger  *slog.Logger
	Tenants domain.TenantService
	Events  domain.EventService
}

// NewTenantController creates a TenantController.
func NewTenantController(logger *slog.Logger, tenants domain.TenantService, events domain.EventService) *TenantController {
	return &TenantController{Logger: logger, Tenants: tenants, Events: events}
}

// RegisterClub godoc
// @Summary Register a new club
// @Description Creates the club tenant with seeded default roles (Administrator, Vorstand, Mitglied) and the founding admin member in one transaction. A welcome email is sent best-effort.
// @Tags clubs
// @Accept json
// @Produce json
// @Param body body RegisterClubRequest true "Club registration data"
// @Success 201 {object} helpers.APIResponse "data contains the tenant and the founding admin"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /api/clubs [post]
func (c *TenantController) RegisterClub(w http.ResponseWriter, r *http.Request) {
	var req RegisterClubRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	tenant, admin, err := c.Tenants.RegisterClub(r.Context(), &domain.ClubRegistration{
		Slug:       req.Slug,
		ClubNumber: req.ClubNumber,
		Name:       req.Name,
		AdminEmail: req.AdminEmail,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		AuthUserID: req.AuthUserID,
	})
	if err != nil {
		writeDomainError(c.Logger, w, r, err, "tenant.not_found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, RegisterClubResponse{Tenant: tenant, Admin: admin})
}

// GetSettings godoc
// @Summary Get the current club
// @Tags clubs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the tenant"
// @Router /api/tenant [get]
func (c *TenantController) GetSettings(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireMember(w, r); !ok {
		return
	}
	tenant, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tenant)
}

// UpdateSettings godoc
// @Summary Update club settings
// @Description Branding and public-site toggle. Requires the tenant.settings permission. Invalidates the resolver cache.
// @Tags clubs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateTenantSettingsRequest true "Settings to update"
// @Success 200 {object} helpers.APIResponse "data contains the updated tenant"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /api/tenant [patch]
func (c *TenantController) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireMember(w, r)
	if !ok {
		return
	}
	var req UpdateTenantSettingsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	tenant, err := c.Tenants.UpdateSettings(r.Context(), actor, &domain.TenantSettingsUpdate{
		Name:              req.Name,
		PublicSiteEnabled: req.PublicSiteEnabled,
		PrimaryColor:      req.PrimaryColor,
		LogoURL:           req.LogoURL,
		About:             req.About,
	})
	if err != nil {
		writeDomainError(c.Logger, w, r, err, "tenant.not_found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tenant)
}

// PublicSite godoc
// @Summary Get a club's public subsite info
// @Description Unauthenticated. 404 for unknown clubs and for clubs with the public site disabled.
// @Tags public
// @Produce json
// @Param slug path string true "Club slug"
// @Param clubNumber path string true "Club number"
// @Success 200 {object} helpers.APIResponse "data contains the public site info"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/public/{slug}/{clubNumber} [get]
func (c *TenantController) PublicSite(w http.ResponseWriter, r *http.Request) {
	tenant, err := c.Tenants.ResolvePublicSite(r.Context(), r.PathValue("slug"), r.PathValue("clubNumber"))
	if err != nil {
		writeDomainError(c.Logger, w, r, err, "tenant.not_found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, PublicSiteResponse{
		Name:         tenant.Name,
		Slug:         tenant.Slug,
		ClubNumber:   tenant.ClubNumber,
		PrimaryColor: tenant.PrimaryColor,
		LogoURL:      tenant.LogoURL,
		About:        tenant.About,
	})
}

// PublicEvents godoc
// @Summary List a club's public upcoming events
// @Description Unauthenticated. Published, public-visibility, upcoming events only.
// @Tags public
// @Produce json
// @Param slug path string true "Club slug"
// @Param clubNumber path string true "Club number"
// @Success 200 {object} helpers.APIResponse "data contains the events"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/public/{slug}/{clubNumber}/events [get]
func (c *TenantController) PublicEvents(w http.ResponseWriter, r *http.Request) {
	tenant, err := c.Tenants.ResolvePublicSite(r.Context(), r.PathValue("slug"), r.PathValue("clubNumber"))
	if err != nil {
		writeDomainError(c.Logger, w, r, err, "tenant.not_found")
		return
	}
	events, err := c.Events.ListPublic(r.Context(), tenant)
	if err != nil {
		writeDomainError(c.Logger, w, r, err, "event.not_found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}
