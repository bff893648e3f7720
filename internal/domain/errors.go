package domain

import "errors"

// Sentinel errors shared across services and repositories. Repositories
// translate driver-level conditions (sql.ErrNoRows, pq unique violations)
// into these so controllers can map them to HTTP statuses.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	ErrPlanExpired          = errors.New("tenant plan expired")
	ErrTenantNotProvisioned = errors.New("tenant role provisioning missing")
	ErrDuplicateSlug        = errors.New("club slug already registered")

	ErrDuplicateMember = errors.New("member already exists")
	ErrSelfDelete      = errors.New("cannot delete own account")
	ErrLastAdmin       = errors.New("cannot delete the last active admin")

	ErrDuplicateInvitation  = errors.New("pending invitation already exists")
	ErrInvitationExpired    = errors.New("invitation expired")
	ErrInvitationNotPending = errors.New("invitation no longer valid")

	ErrInvalidEventWindow = errors.New("event start must precede end")
	ErrEventCancelled     = errors.New("event is cancelled")
	ErrRegistrationClosed = errors.New("registration deadline has passed")
)
