package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"lionshub/internal/delivery/http/helpers"
	"lionshub/internal/domain"
)

// EventRequest is the request body for creating or updating an event.
type EventRequest struct {
	Title       string `json:"title"`
	TitleEn     string `json:"title_en"`
	Description string `json:"description"`
	Type        string `json:"type"`

	StartsAt time.Time  `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`

	Location   string `json:"location"`
	MeetingURL string `json:"meeting_url"`

	RegistrationRequired bool       `json:"registration_required"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	MaxParticipants      *int       `json:"max_participants"`
	GuestsAllowed        bool       `json:"guests_allowed"`
	CostCents            int64      `json:"cost_cents"`
	GuestCostCents       int64      `json:"guest_cost_cents"`

	Visibility string  `json:"visibility"`
	Published  bool    `json:"published"`
	Cancelled  bool    `json:"cancelled"`
	CategoryID *string `json:"category_id"`
}

// Validate implements Validator.
func (e EventRequest) Validate() []string {
	var errs []string
	if e.Title == "" {
		errs = append(errs, "title is required")
	}
	if e.StartsAt.IsZero() {
		errs = append(errs, "starts_at is required")
	}
	switch e.Visibility {
	case "", domain.VisibilityPublic, domain.VisibilityMembers, domain.VisibilityBoard:
	default:
		errs = append(errs, "visibility must be \"public\", \"members\", or \"board\"")
	}
	if e.CostCents < 0 || e.GuestCostCents < 0 {
		errs = append(errs, "costs cannot be negative")
	}
	return errs
}

func (e EventRequest) toDomain() *domain.Event {
	return &domain.Event{
		Title:                e.Title,
		TitleEn:              e.TitleEn,
		Description:          e.Description,
		Type:                 e.Type,
		StartsAt:             e.StartsAt,
		EndsAt:               e.EndsAt,
		Location:             e.Location,
		MeetingURL:           e.MeetingURL,
		RegistrationRequired: e.RegistrationRequired,
		RegistrationDeadline: e.RegistrationDeadline,
		MaxParticipants:      e.MaxParticipants,
		GuestsAllowed:        e.GuestsAllowed,
		CostCents:            e.CostCents,
		GuestCostCents:       e.GuestCostCents,
		Visibility:           e.Visibility,
		Published:            e.Published,
		Cancelled:            e.Cancelled,
		CategoryID:           e.CategoryID,
	}
}

// RegistrationRequest is the request body for POST /api/events/{id}/registrations.
type RegistrationRequest struct {
	Status     string   `json:"status"` // registered, maybe, declined (defaults to registered)
	GuestCount int      `json:"guest_count"`
	GuestNames []string `json:"guest_names"`
}

// Validate implements Validator.
func (r RegistrationRequest) Validate() []string {
	var errs []string
	switch r.Status {
	case "", domain.RegistrationStatusRegistered, domain.RegistrationStatusMaybe, domain.RegistrationStatusDeclined:
	default:
		errs = append(errs, "status must be \"registered\", \"maybe\", or \"declined\"")
	}
	if r.GuestCount < 0 {
		errs = append(errs, "guest_count cannot be negative")
	}
	return errs
}

// EventListResponse is the response body for GET /api/events.
type EventListResponse struct {
	Events     []*domain.Event        `json:"events"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// RegistrationListResponse is the response body for GET /api/events/{id}/registrations.
// RegisteredCount counts "registered" responses only, for display against the
// event's advisory participant limit.
type RegistrationListResponse struct {
	Registrations   []*domain.EventRegistration `json:"registrations"`
	RegisteredCount int                         `json:"registered_count"`
}

// EventController handles event and registration endpoints.
type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

// NewEventController creates an EventController.
func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{Logger: logger, Service: svc}
}

// Create godoc
// @Summary Create an event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body EventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /api/events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireMember(w, r)
	if !ok {
		return
	}
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event := req.toDomain()
	if err := c.Service.Create(r.Context(), actor, event); err != nil {
		writeDomainError(c.Logger, w, r, err, "event.not_found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// Update godoc
// @Summary Update an event
// @Description The creator may edit their own events; other members need events.manage.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event id"
// @Param body body EventRequest true "Event data"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{id} [patch]
func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireMember(w, r)
	if !ok {
		return
	}
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event := req.toDomain()
	event.ID = r.PathValue("id")
	if err := c.Service.Update(r.Context(), actor, event); err != nil {
		writeDomainError(c.Logger, w, r, err, "event.not_found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// Get godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event id"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{id} [get]
func (c *EventController) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireMember(w, r)
	if !ok {
		return
	}
	event, err := c.Service.GetByID(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeDomainError(c.Logger, w, r, err, "event.not_found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// List godoc
// @Summary List the club's events
// @Description Filters: from, to (RFC 3339), published=true, visibility. The visibility tier is clamped to what the member may see.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param from query string false "Earliest start (RFC 3339)"
// @Param to query string false "Latest start (RFC 3339)"
// @Param published query bool false "Published events only"
// @Param visibility query string false "Visibility tier"
// @Success 200 {object} helpers.APIResponse "data contains events and pagination"
// @Router /api/events [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireMember(w, r)
	if !ok {
		return
	}
	var filter domain.EventFilter
	q := r.URL.Query()
	if s := q.Get("from"); s != "" {
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			filter.From = &ts
		}
	}
	if s := q.Get("to"); s != "" {
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			filter.To = &ts
		}
	}
	filter.PublishedOnly = q.Get("published") == "true"
	filter.Visibility = q.Get("visibility")

	p := helpers.ParsePagination(r)
	events, total, err := c.Service.List(r.Context(), actor, filter, p)
	if err != nil {
		writeDomainError(c.Logger, w, r, err, "event.not_found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventListResponse{
		Events:     events,
		Pagination: helpers.NewPaginationMeta(p.Page, p.PageSize, total),
	})
}

// Register godoc
// @Summary Respond to an event
// @Description Upserts the member's registration. Total cost is computed from the event's per-person costs and the guest count. The participant limit is advisory.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event id"
// @Param body body RegistrationRequest true "Registration data"
// @Success 200 {object} helpers.APIResponse "data contains the registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{id}/registrations [post]
func (c *EventController) Register(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireMember(w, r)
	if !ok {
		return
	}
	var req RegistrationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reg, err := c.Service.Register(r.Context(), actor, r.PathValue("id"), &domain.RegistrationResponse{
		Status:     req.Status,
		GuestCount: req.GuestCount,
		GuestNames: req.GuestNames,
	})
	if err != nil {
		writeDomainError(c.Logger, w, r, err, "event.not_found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// ListRegistrations godoc
// @Summary List an event's registrations
// @Description Includes the count of "registered" responses for display against the advisory participant limit.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event id"
// @Success 200 {object} helpers.APIResponse "data contains registrations and registered_count"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{id}/registrations [get]
func (c *EventController) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireMember(w, r)
	if !ok {
		return
	}
	regs, registered, err := c.Service.ListRegistrations(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeDomainError(c.Logger, w, r, err, "event.not_found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RegistrationListResponse{
		Registrations:   regs,
		RegisteredCount: registered,
	})
}
