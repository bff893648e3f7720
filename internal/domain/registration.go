package domain

import (
	"context"
	"time"
)

// Registration statuses.
const (
	RegistrationStatusRegistered = "registered"
	RegistrationStatusMaybe      = "maybe"
	RegistrationStatusDeclined   = "declined"
)

// EventRegistration is a member's response to an event. One row per
// (event, member) pair; repeated responses update in place.
// swagger:model EventRegistration
type EventRegistration struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	MemberID   string    `json:"member_id"`
	Status     string    `json:"status"`
	GuestCount int       `json:"guest_count"`
	GuestNames []string  `json:"guest_names,omitempty"`
	Paid       bool      `json:"paid"`
	TotalCents int64     `json:"total_cents"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RegistrationResponse is the input for registering for an event.
type RegistrationResponse struct {
	Status     string
	GuestCount int
	GuestNames []string
}

// EventRegistrationRepository defines storage operations for registrations.
type EventRegistrationRepository interface {
	// Upsert inserts or updates the (event, member) registration.
	Upsert(ctx context.Context, reg *EventRegistration) error
	GetByEventAndMember(ctx context.Context, eventID, memberID string) (*EventRegistration, error)
	ListByEvent(ctx context.Context, eventID string) ([]*EventRegistration, error)
	CountRegistered(ctx context.Context, eventID string) (int, error)
}
