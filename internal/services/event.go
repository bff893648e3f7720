package services

import (
	"context"
	"fmt"
	"time"

	"lionshub/internal/domain"
)

type eventService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.EventRegistrationRepository
	permissions      domain.PermissionService
	now              func() time.Time
}

// NewEventService creates an EventService. A nil clock defaults to time.Now.
func NewEventService(
	eventRepo domain.EventRepository,
	registrationRepo domain.EventRegistrationRepository,
	permissions domain.PermissionService,
	clock func() time.Time,
) domain.EventService {
	if clock == nil {
		clock = time.Now
	}
	return &eventService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		permissions:      permissions,
		now:              clock,
	}
}

func validateEventWindow(e *domain.Event) error {
	if e.EndsAt != nil && !e.StartsAt.Before(*e.EndsAt) {
		return domain.ErrInvalidEventWindow
	}
	return nil
}

func (s *eventService) Create(ctx context.Context, actor *domain.Member, e *domain.Event) error {
	perms, err := s.permissions.PermissionsFor(ctx, actor)
	if err != nil {
		return fmt.Errorf("load permissions: %w", err)
	}
	if !perms.Has(domain.PermEventsCreate) {
		return domain.ErrForbidden
	}
	if err := validateEventWindow(e); err != nil {
		return err
	}
	if e.Visibility == "" {
		e.Visibility = domain.VisibilityMembers
	}
	now := s.now()
	e.TenantID = actor.TenantID
	e.CreatedBy = actor.ID
	e.CreatedAt = now
	e.UpdatedAt = now
	if err := s.eventRepo.Create(ctx, e); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *eventService) Update(ctx context.Context, actor *domain.Member, e *domain.Event) error {
	perms, err := s.permissions.PermissionsFor(ctx, actor)
	if err != nil {
		return fmt.Errorf("load permissions: %w", err)
	}
	existing, err := s.eventRepo.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}
	if existing.TenantID != actor.TenantID {
		return domain.ErrNotFound
	}
	// Creators may edit their own events; others need events.manage.
	if existing.CreatedBy != actor.ID && !perms.Has(domain.PermEventsManage) {
		return domain.ErrForbidden
	}
	if err := validateEventWindow(e); err != nil {
		return err
	}
	e.TenantID = actor.TenantID
	e.UpdatedAt = s.now()
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// visibleTier returns the highest visibility tier the member may see.
func (s *eventService) visibleTier(ctx context.Context, actor *domain.Member) (string, error) {
	perms, err := s.permissions.PermissionsFor(ctx, actor)
	if err != nil {
		return "", fmt.Errorf("load permissions: %w", err)
	}
	if perms.Has(domain.PermEventsManage) || perms.Has(domain.PermAdminUsers) {
		return domain.VisibilityBoard, nil
	}
	return domain.VisibilityMembers, nil
}

func (s *eventService) GetByID(ctx context.Context, actor *domain.Member, id string) (*domain.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.TenantID != actor.TenantID {
		return nil, domain.ErrNotFound
	}
	if e.Visibility == domain.VisibilityBoard {
		tier, err := s.visibleTier(ctx, actor)
		if err != nil {
			return nil, err
		}
		if tier != domain.VisibilityBoard {
			return nil, domain.ErrNotFound
		}
	}
	return e, nil
}

func (s *eventService) List(ctx context.Context, actor *domain.Member, f domain.EventFilter, p domain.PaginationParams) ([]*domain.Event, int, error) {
	tier, err := s.visibleTier(ctx, actor)
	if err != nil {
		return nil, 0, err
	}
	if f.Visibility == "" || (f.Visibility == domain.VisibilityBoard && tier != domain.VisibilityBoard) {
		f.Visibility = tier
	}
	return s.eventRepo.List(ctx, actor.TenantID, f, p)
}

func (s *eventService) ListPublic(ctx context.Context, tenant *domain.Tenant) ([]*domain.Event, error) {
	return s.eventRepo.ListPublicUpcoming(ctx, tenant.ID, s.now())
}

// Register upserts the member's registration. Total cost is computed at
// write time from the event's per-person costs and the guest count.
// MaxParticipants is advisory and not enforced here.
func (s *eventService) Register(ctx context.Context, actor *domain.Member, eventID string, resp *domain.RegistrationResponse) (*domain.EventRegistration, error) {
	e, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e.TenantID != actor.TenantID {
		return nil, domain.ErrNotFound
	}
	if e.Cancelled {
		return nil, domain.ErrEventCancelled
	}
	now := s.now()
	if e.RegistrationDeadline != nil && now.After(*e.RegistrationDeadline) {
		return nil, domain.ErrRegistrationClosed
	}

	status := resp.Status
	switch status {
	case domain.RegistrationStatusRegistered, domain.RegistrationStatusMaybe, domain.RegistrationStatusDeclined:
	case "":
		status = domain.RegistrationStatusRegistered
	default:
		return nil, fmt.Errorf("invalid registration status %q", resp.Status)
	}

	guests := resp.GuestCount
	if guests < 0 {
		guests = 0
	}
	if !e.GuestsAllowed {
		guests = 0
	}
	var total int64
	if status != domain.RegistrationStatusDeclined {
		total = e.CostCents + int64(guests)*e.GuestCostCents
	}

	reg := &domain.EventRegistration{
		EventID:    eventID,
		MemberID:   actor.ID,
		Status:     status,
		GuestCount: guests,
		GuestNames: resp.GuestNames,
		TotalCents: total,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if guests == 0 {
		reg.GuestNames = nil
	}
	if err := s.registrationRepo.Upsert(ctx, reg); err != nil {
		return nil, fmt.Errorf("upsert registration: %w", err)
	}
	return reg, nil
}

func (s *eventService) ListRegistrations(ctx context.Context, actor *domain.Member, eventID string) ([]*domain.EventRegistration, int, error) {
	e, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, 0, err
	}
	if e.TenantID != actor.TenantID {
		return nil, 0, domain.ErrNotFound
	}
	regs, err := s.registrationRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}
	registered, err := s.registrationRepo.CountRegistered(ctx, eventID)
	if err != nil {
		return nil, 0, fmt.Errorf("count registered: %w", err)
	}
	return regs, registered, nil
}
