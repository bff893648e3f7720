package controllers

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"lionshub/internal/delivery/http/helpers"
	"lionshub/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// CreateInvitationRequest is the request body for POST /api/invitations.
type CreateInvitationRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"` // optional: "admin", "board", or "member" (defaults to "member")
}

// Validate implements Validator.
func (c CreateInvitationRequest) Validate() []string {
	var errs []string
	email := strings.TrimSpace(strings.ToLower(c.Email))
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	role := strings.TrimSpace(strings.ToLower(c.Role))
	if role != "" {
		if _, ok := domain.DefaultRoleNames[role]; !ok {
			errs = append(errs, "role must be \"admin\", \"board\", or \"member\"")
		}
	}
	return errs
}

// AcceptInvitationRequest is the request body for POST /api/invitations/{token}/accept.
// The auth user is created against the auth provider client-side first.
type AcceptInvitationRequest struct {
	AuthUserID string `json:"auth_user_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

// Validate implements Validator.
func (a AcceptInvitationRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(a.AuthUserID) == "" {
		errs = append(errs, "auth_user_id is required")
	}
	return errs
}

// CreatedInvitationResponse is the response body for invitation create/resend.
type CreatedInvitationResponse struct {
	Invitation *domain.Invitation `json:"invitation"`
	InviteURL  string             `json:"invite_url"`
	EmailSent  bool               `json:"email_sent"`
}

// InvitationController handles the invitation workflow endpoints.
type InvitationController struct {
	Logger  *slog.Logger
	Service domain.InvitationService
}

// NewInvitationController creates an InvitationController.
func NewInvitationController(logger *slog.Logger, svc domain.InvitationService) *InvitationController {
	return &InvitationController{Logger: logger, Service: svc}
}

// Create godoc
// @Summary Invite a member
// @Description Creates a pending invitation for an email address and sends the invitation email. email_sent is false when delivery failed; the invitation is still created.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateInvitationRequest true "Invitation data"
// @Success 201 {object} helpers.APIResponse "data contains the created invitation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /api/invitations [post]
func (c *InvitationController) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireMember(w, r)
	if !ok {
		return
	}
	var req CreateInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	created, err := c.Service.Create(r.Context(), actor, req.Email, strings.TrimSpace(strings.ToLower(req.Role)))
	if err != nil {
		writeDomainError(c.Logger, w, r, err, "invitation.not_found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, CreatedInvitationResponse{
		Invitation: created.Invitation,
		InviteURL:  created.InviteURL,
		EmailSent:  created.EmailSent,
	})
}

// List godoc
// @Summary List the tenant's invitations
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the invitations"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /api/invitations [get]
func (c *InvitationController) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireMember(w, r)
	if !ok {
		return
	}
	invitations, err := c.Service.List(r.Context(), actor)
	if err != nil {
		writeDomainError(c.Logger, w, r, err, "invitation.not_found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, invitations)
}

// Get godoc
// @Summary Fetch an invitation for acceptance
// @Description Unauthenticated, rate limited. Returns the club name, role name, inviter, and expiry. The token itself is never echoed.
// @Tags invitations
// @Produce json
// @Param token path string true "Invitation token (or legacy id)"
// @Success 200 {object} helpers.APIResponse "data contains the invitation details"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 410 {object} helpers.APIResponse "error.code: gone"
// @Router /api/invitations/{token} [get]
func (c *InvitationController) Get(w http.ResponseWriter, r *http.Request) {
	details, err := c.Service.GetByTokenOrID(r.Context(), r.PathValue("token"))
	if err != nil {
		writeDomainError(c.Logger, w, r, err, "invitation.not_found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, details)
}

// Accept godoc
// @Summary Accept an invitation
// @Description Creates the member for the invited email, linked to the given auth identity, and marks the invitation accepted. Of two concurrent accepts only the first wins.
// @Tags invitations
// @Accept json
// @Produce json
// @Param token path string true "Invitation token (or legacy id)"
// @Param body body AcceptInvitationRequest true "Acceptance data"
// @Success 201 {object} helpers.APIResponse "data contains the created member"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 410 {object} helpers.APIResponse "error.code: gone"
// @Router /api/invitations/{token}/accept [post]
func (c *InvitationController) Accept(w http.ResponseWriter, r *http.Request) {
	var req AcceptInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	member, err := c.Service.Accept(r.Context(), r.PathValue("token"), &domain.InvitationAcceptance{
		AuthUserID: strings.TrimSpace(req.AuthUserID),
		FirstName:  req.FirstName,
		LastName:   req.LastName,
	})
	if err != nil {
		writeDomainError(c.Logger, w, r, err, "invitation.not_found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, member)
}

// Resend godoc
// @Summary Re-send an invitation email
// @Description The token is not rotated; the existing accept URL stays valid.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param token path string true "Invitation token (or legacy id)"
// @Success 200 {object} helpers.APIResponse "data contains the invitation"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/invitations/{token} [post]
func (c *InvitationController) Resend(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireMember(w, r)
	if !ok {
		return
	}
	created, err := c.Service.Resend(r.Context(), actor, r.PathValue("token"))
	if err != nil {
		writeDomainError(c.Logger, w, r, err, "invitation.not_found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, CreatedInvitationResponse{
		Invitation: created.Invitation,
		InviteURL:  created.InviteURL,
		EmailSent:  created.EmailSent,
	})
}

// Revoke godoc
// @Summary Revoke a pending invitation
// @Description Hard-deletes the invitation so the email can be invited again. Revoking twice answers 404.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param token path string true "Invitation token (or legacy id)"
// @Success 204 "no content"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /api/invitations/{token} [delete]
func (c *InvitationController) Revoke(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireMember(w, r)
	if !ok {
		return
	}
	if err := c.Service.Revoke(r.Context(), actor, r.PathValue("token")); err != nil {
		writeDomainError(c.Logger, w, r, err, "invitation.not_found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
