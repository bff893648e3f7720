package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"lionshub/internal/delivery/http/helpers"
	"lionshub/internal/domain"
	"lionshub/internal/i18n"
)

// UpdateProfileRequest is the request body for PATCH /api/me. All fields are optional.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Locale    *string `json:"locale"`
}

// Validate implements Validator.
func (u UpdateProfileRequest) Validate() []string {
	var errs []string
	if u.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*u.Email))
		if email == "" {
			errs = append(errs, "email cannot be empty")
		} else if !emailRegexp.MatchString(email) {
			errs = append(errs, "invalid email format")
		}
	}
	if u.Locale != nil && *u.Locale != i18n.LocaleDE && *u.Locale != i18n.LocaleEN {
		errs = append(errs, "locale must be \"de\" or \"en\"")
	}
	return errs
}

// MemberListResponse is the response body for GET /api/members.
type MemberListResponse struct {
	Members    []*domain.Member       `json:"members"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// MemberController handles profile and member administration endpoints.
type MemberController struct {
	Logger  *slog.Logger
	Service domain.MemberService
}

// NewMemberController creates a MemberController.
func NewMemberController(logger *slog.Logger, svc domain.MemberService) *MemberController {
	return &MemberController{Logger: logger, Service: svc}
}

// GetMe godoc
// @Summary Get the authenticated member's profile
// @Tags members
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the member"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/me [get]
func (c *MemberController) GetMe(w http.ResponseWriter, r *http.Request) {
	member, ok := requireMember(w, r)
	if !ok {
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, member)
}

// UpdateMe godoc
// @Summary Update the authenticated member's profile
// @Description Name, email, and locale. The email stays unique per club.
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateProfileRequest true "Profile fields to update"
// @Success 200 {object} helpers.APIResponse "data contains the updated member"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /api/me [patch]
func (c *MemberController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	member, ok := requireMember(w, r)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if req.FirstName != nil {
		member.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		member.LastName = *req.LastName
	}
	if req.Email != nil {
		member.Email = strings.TrimSpace(strings.ToLower(*req.Email))
	}
	if req.Locale != nil {
		member.Locale = *req.Locale
	}
	if err := c.Service.UpdateProfile(r.Context(), member); err != nil {
		writeDomainError(c.Logger, w, r, err, "member.not_found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, member)
}

// UploadAvatar godoc
// @Summary Upload the authenticated member's avatar
// @Description Multipart upload, field name "avatar". Allowed: JPEG, PNG, WebP, GIF, max 5 MiB.
// @Tags members
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} helpers.APIResponse "data contains the avatar URL"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /api/me/avatar [post]
func (c *MemberController) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	member, ok := requireMember(w, r)
	if !ok {
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "avatar file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	url, err := c.Service.SetAvatar(r.Context(), member, &domain.AvatarUpload{
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		writeDomainError(c.Logger, w, r, err, "member.not_found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"avatar_url": url})
}

// DeleteAvatar godoc
// @Summary Remove the authenticated member's avatar
// @Tags members
// @Produce json
// @Security BearerAuth
// @Success 204 "no content"
// @Router /api/me/avatar [delete]
func (c *MemberController) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	member, ok := requireMember(w, r)
	if !ok {
		return
	}
	if err := c.Service.RemoveAvatar(r.Context(), member); err != nil {
		writeDomainError(c.Logger, w, r, err, "member.not_found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List godoc
// @Summary List the club's members
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains members and pagination"
// @Router /api/members [get]
func (c *MemberController) List(w http.ResponseWriter, r *http.Request) {
	member, ok := requireMember(w, r)
	if !ok {
		return
	}
	p := helpers.ParsePagination(r)
	members, total, err := c.Service.List(r.Context(), member.TenantID, p)
	if err != nil {
		writeDomainError(c.Logger, w, r, err, "member.not_found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, MemberListResponse{
		Members:    members,
		Pagination: helpers.NewPaginationMeta(p.Page, p.PageSize, total),
	})
}

// Delete godoc
// @Summary Delete a member
// @Description Authored events are reassigned to the deleting admin, authored invitations removed, registrations cascaded. The last active administrator and the caller's own account cannot be deleted.
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param id path string true "Member id"
// @Success 204 "no content"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /api/members/{id} [delete]
func (c *MemberController) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireMember(w, r)
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		writeDomainError(c.Logger, w, r, err, "member.not_found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
