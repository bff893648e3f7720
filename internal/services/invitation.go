package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"lionshub/internal/domain"
	"lionshub/internal/i18n"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type invitationService struct {
	invitationRepo domain.InvitationRepository
	memberRepo     domain.MemberRepository
	tenantRepo     domain.TenantRepository
	roleRepo       domain.RoleRepository
	permissions    domain.PermissionService
	emailService   domain.EmailService
	appBaseURL     string
	logger         *slog.Logger
	now            func() time.Time
}

// NewInvitationService creates an InvitationService. A nil clock defaults to time.Now.
func NewInvitationService(
	invitationRepo domain.InvitationRepository,
	memberRepo domain.MemberRepository,
	tenantRepo domain.TenantRepository,
	roleRepo domain.RoleRepository,
	permissions domain.PermissionService,
	emailService domain.EmailService,
	appBaseURL string,
	logger *slog.Logger,
	clock func() time.Time,
) domain.InvitationService {
	if clock == nil {
		clock = time.Now
	}
	return &invitationService{
		invitationRepo: invitationRepo,
		memberRepo:     memberRepo,
		tenantRepo:     tenantRepo,
		roleRepo:       roleRepo,
		permissions:    permissions,
		emailService:   emailService,
		appBaseURL:     strings.TrimSuffix(appBaseURL, "/"),
		logger:         logger,
		now:            clock,
	}
}

func (s *invitationService) acceptURL(token string) string {
	return s.appBaseURL + "/invite/" + token
}

func (s *invitationService) requireInvitePermission(ctx context.Context, actor *domain.Member) error {
	perms, err := s.permissions.PermissionsFor(ctx, actor)
	if err != nil {
		return fmt.Errorf("load permissions: %w", err)
	}
	if !perms.CanManageInvitations() {
		return domain.ErrForbidden
	}
	return nil
}

func (s *invitationService) Create(ctx context.Context, actor *domain.Member, email, roleType string) (*domain.CreatedInvitation, error) {
	if err := s.requireInvitePermission(ctx, actor); err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("invalid email format")
	}
	if roleType == "" {
		roleType = domain.RoleTypeMember
	}
	if _, ok := domain.DefaultRoleNames[roleType]; !ok {
		return nil, fmt.Errorf("unknown role type %q", roleType)
	}

	// An active member for the email blocks a fresh invitation.
	if existing, err := s.memberRepo.GetByEmail(ctx, actor.TenantID, email); err == nil {
		if existing.Active {
			return nil, domain.ErrDuplicateMember
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check existing member: %w", err)
	}

	if _, err := s.invitationRepo.GetPendingByEmail(ctx, actor.TenantID, email); err == nil {
		return nil, domain.ErrDuplicateInvitation
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check pending invitation: %w", err)
	}

	// Finished rows from earlier rounds (expired, revoked, or accepted with
	// the member since deleted) would collide with the (tenant, email)
	// uniqueness constraint on re-invite.
	if err := s.invitationRepo.PurgeStale(ctx, actor.TenantID, email); err != nil {
		return nil, fmt.Errorf("purge stale invitations: %w", err)
	}

	now := s.now()
	inv := &domain.Invitation{
		TenantID:  actor.TenantID,
		Email:     email,
		Token:     uuid.NewString(),
		RoleType:  roleType,
		InvitedBy: actor.ID,
		Status:    domain.InvitationStatusPending,
		ExpiresAt: now.Add(domain.InvitationTTL),
		CreatedAt: now,
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		// Concurrent create for the same email: the constraint is the
		// race-breaker.
		if errors.Is(err, domain.ErrDuplicateInvitation) {
			return nil, domain.ErrDuplicateInvitation
		}
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	return &domain.CreatedInvitation{
		Invitation: inv,
		InviteURL:  s.acceptURL(inv.Token),
		EmailSent:  s.sendInvitationEmail(ctx, inv, actor),
	}, nil
}

// sendInvitationEmail delivers the invitation email. Failure is reported to
// the caller via the return value but never rolls back the invitation.
func (s *invitationService) sendInvitationEmail(ctx context.Context, inv *domain.Invitation, actor *domain.Member) bool {
	if s.emailService == nil {
		return false
	}
	tenant, err := s.tenantRepo.GetByID(ctx, inv.TenantID)
	if err != nil {
		s.logger.ErrorContext(ctx, "invitation email: load tenant failed", "err", err)
		return false
	}
	daysLeft := 0
	if remaining := inv.ExpiresAt.Sub(s.now()); remaining > 0 {
		daysLeft = int(remaining.Hours() / 24)
	}
	roleName := inv.RoleType
	if name, ok := domain.DefaultRoleNames[inv.RoleType]; ok {
		roleName = name
	}
	data := &domain.InvitationEmailData{
		Email:         inv.Email,
		TenantName:    tenant.Name,
		InviterName:   actor.DisplayName(),
		RoleName:      roleName,
		AcceptURL:     s.acceptURL(inv.Token),
		ExpiresInDays: daysLeft,
		Locale:        i18n.DefaultLocale,
	}
	if err := s.emailService.SendInvitation(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "invitation email delivery failed", "email", inv.Email, "err", err)
		return false
	}
	return true
}

// lookup finds an invitation by token, falling back to the internal UUID id
// for backward compatibility with links that embedded the row id.
func (s *invitationService) lookup(ctx context.Context, tokenOrID string) (*domain.Invitation, error) {
	inv, err := s.invitationRepo.GetByToken(ctx, tokenOrID)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	if _, parseErr := uuid.Parse(tokenOrID); parseErr != nil {
		return nil, domain.ErrNotFound
	}
	inv, err = s.invitationRepo.GetByID(ctx, tokenOrID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return inv, nil
}

// validate checks status and expiry, lazily transitioning a past-expiry
// pending invitation to expired.
func (s *invitationService) validate(ctx context.Context, inv *domain.Invitation) error {
	if inv.Status != domain.InvitationStatusPending {
		return domain.ErrInvitationNotPending
	}
	if inv.Expired(s.now()) {
		if err := s.invitationRepo.MarkExpired(ctx, inv.ID); err != nil {
			s.logger.ErrorContext(ctx, "mark invitation expired failed", "id", inv.ID, "err", err)
		}
		inv.Status = domain.InvitationStatusExpired
		return domain.ErrInvitationExpired
	}
	return nil
}

func (s *invitationService) GetByTokenOrID(ctx context.Context, tokenOrID string) (*domain.InvitationDetails, error) {
	inv, err := s.lookup(ctx, tokenOrID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, inv); err != nil {
		return nil, err
	}

	tenant, err := s.tenantRepo.GetByID(ctx, inv.TenantID)
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	inviterName := ""
	if inviter, err := s.memberRepo.GetByID(ctx, inv.InvitedBy); err == nil {
		inviterName = inviter.DisplayName()
	}
	roleName := inv.RoleType
	if role, err := s.roleRepo.GetByType(ctx, inv.TenantID, inv.RoleType); err == nil {
		roleName = role.Name
	}
	return &domain.InvitationDetails{
		ID:            inv.ID,
		Email:         inv.Email,
		TenantName:    tenant.Name,
		RoleName:      roleName,
		InvitedByName: inviterName,
		ExpiresAt:     inv.ExpiresAt,
	}, nil
}

func (s *invitationService) Accept(ctx context.Context, tokenOrID string, acc *domain.InvitationAcceptance) (*domain.Member, error) {
	if acc == nil || acc.AuthUserID == "" {
		return nil, fmt.Errorf("auth user id is required")
	}
	inv, err := s.lookup(ctx, tokenOrID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, inv); err != nil {
		return nil, err
	}

	// A missing role for the invitation's type is a tenant provisioning
	// defect, not a user error.
	role, err := s.roleRepo.GetByType(ctx, inv.TenantID, inv.RoleType)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrTenantNotProvisioned
		}
		return nil, fmt.Errorf("get role: %w", err)
	}

	now := s.now()
	authUserID := acc.AuthUserID
	member := &domain.Member{
		TenantID:   inv.TenantID,
		AuthUserID: &authUserID,
		Email:      inv.Email,
		FirstName:  strings.TrimSpace(acc.FirstName),
		LastName:   strings.TrimSpace(acc.LastName),
		Active:     true,
		Status:     domain.MemberStatusActive,
		RoleID:     &role.ID,
		Locale:     i18n.DefaultLocale,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.invitationRepo.Accept(ctx, inv, member); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateMember):
			return nil, domain.ErrDuplicateMember
		case errors.Is(err, domain.ErrInvitationNotPending):
			return nil, domain.ErrInvitationNotPending
		}
		return nil, fmt.Errorf("accept invitation: %w", err)
	}
	return member, nil
}

func (s *invitationService) Resend(ctx context.Context, actor *domain.Member, tokenOrID string) (*domain.CreatedInvitation, error) {
	if err := s.requireInvitePermission(ctx, actor); err != nil {
		return nil, err
	}
	inv, err := s.lookup(ctx, tokenOrID)
	if err != nil {
		return nil, err
	}
	if inv.TenantID != actor.TenantID {
		return nil, domain.ErrNotFound
	}
	if err := s.validate(ctx, inv); err != nil {
		return nil, err
	}

	// The token is deliberately not rotated; the existing accept URL stays
	// valid and only the email is re-sent.
	return &domain.CreatedInvitation{
		Invitation: inv,
		InviteURL:  s.acceptURL(inv.Token),
		EmailSent:  s.sendInvitationEmail(ctx, inv, actor),
	}, nil
}

func (s *invitationService) Revoke(ctx context.Context, actor *domain.Member, tokenOrID string) error {
	if err := s.requireInvitePermission(ctx, actor); err != nil {
		return err
	}
	inv, err := s.lookup(ctx, tokenOrID)
	if err != nil {
		return err
	}
	if inv.TenantID != actor.TenantID {
		return domain.ErrNotFound
	}
	if inv.Status != domain.InvitationStatusPending {
		return domain.ErrInvitationNotPending
	}
	// Hard delete so the same email can be invited again later.
	return s.invitationRepo.Delete(ctx, inv.ID)
}

func (s *invitationService) List(ctx context.Context, actor *domain.Member) ([]*domain.Invitation, error) {
	if err := s.requireInvitePermission(ctx, actor); err != nil {
		return nil, err
	}
	invs, err := s.invitationRepo.ListByTenant(ctx, actor.TenantID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return invs, nil
}
