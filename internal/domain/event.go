package domain

import (
	"context"
	"time"
)

// Event visibility tiers, from most to least public.
const (
	VisibilityPublic  = "public"
	VisibilityMembers = "members"
	VisibilityBoard   = "board"
)

// Event is a scheduled activity owned by a tenant.
// swagger:model Event
type Event struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenant_id"`
	Title       string `json:"title"`
	TitleEn     string `json:"title_en,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`

	StartsAt time.Time  `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`

	Location   string `json:"location,omitempty"`
	MeetingURL string `json:"meeting_url,omitempty"`

	RegistrationRequired bool       `json:"registration_required"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
	// MaxParticipants is advisory: it is displayed but not enforced as a
	// registration limit.
	MaxParticipants *int  `json:"max_participants,omitempty"`
	GuestsAllowed   bool  `json:"guests_allowed"`
	CostCents       int64 `json:"cost_cents"`
	GuestCostCents  int64 `json:"guest_cost_cents"`

	Visibility string  `json:"visibility"`
	Published  bool    `json:"published"`
	Cancelled  bool    `json:"cancelled"`
	CreatedBy  string  `json:"created_by"`
	CategoryID *string `json:"category_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EventFilter narrows event list queries. Zero values mean "no filter".
type EventFilter struct {
	From          *time.Time
	To            *time.Time
	PublishedOnly bool
	// Visibility is the highest tier the caller may see; events of a more
	// restricted tier are excluded.
	Visibility string
}

// EventRepository defines storage operations for events.
type EventRepository interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, e *Event) error
	List(ctx context.Context, tenantID string, f EventFilter, p PaginationParams) ([]*Event, int, error)
	// ListPublicUpcoming returns published, public-visibility, upcoming
	// events for the public subsite.
	ListPublicUpcoming(ctx context.Context, tenantID string, now time.Time) ([]*Event, error)
}

// EventService defines event CRUD scoped to the acting member's tenant.
type EventService interface {
	Create(ctx context.Context, actor *Member, e *Event) error
	Update(ctx context.Context, actor *Member, e *Event) error
	GetByID(ctx context.Context, actor *Member, id string) (*Event, error)
	List(ctx context.Context, actor *Member, f EventFilter, p PaginationParams) ([]*Event, int, error)
	ListPublic(ctx context.Context, tenant *Tenant) ([]*Event, error)
	Register(ctx context.Context, actor *Member, eventID string, resp *RegistrationResponse) (*EventRegistration, error)
	// ListRegistrations returns the event's registrations together with the
	// count of "registered" responses, so clients can show attendance
	// against the advisory MaxParticipants.
	ListRegistrations(ctx context.Context, actor *Member, eventID string) ([]*EventRegistration, int, error)
}
