package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"lionshub/internal/domain"
)

// Avatar upload limits.
const maxAvatarBytes = 5 << 20 // 5 MiB

var allowedAvatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ErrAvatarTooLarge and ErrAvatarType are the avatar validation failures.
var (
	ErrAvatarTooLarge = errors.New("avatar file too large")
	ErrAvatarType     = errors.New("avatar file type not allowed")
)

type memberService struct {
	memberRepo  domain.MemberRepository
	roleRepo    domain.RoleRepository
	permissions domain.PermissionService
	avatars     domain.AvatarStorage
	authAdmin   domain.AuthAdmin
	logger      *slog.Logger
	now         func() time.Time
}

// NewMemberService creates a MemberService. A nil clock defaults to time.Now.
func NewMemberService(
	memberRepo domain.MemberRepository,
	roleRepo domain.RoleRepository,
	permissions domain.PermissionService,
	avatars domain.AvatarStorage,
	authAdmin domain.AuthAdmin,
	logger *slog.Logger,
	clock func() time.Time,
) domain.MemberService {
	if clock == nil {
		clock = time.Now
	}
	return &memberService{
		memberRepo:  memberRepo,
		roleRepo:    roleRepo,
		permissions: permissions,
		avatars:     avatars,
		authAdmin:   authAdmin,
		logger:      logger,
		now:         clock,
	}
}

func (s *memberService) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	return s.memberRepo.GetByID(ctx, id)
}

func (s *memberService) GetByAuthUserID(ctx context.Context, authUserID string) (*domain.Member, error) {
	return s.memberRepo.GetByAuthUserID(ctx, authUserID)
}

func (s *memberService) UpdateProfile(ctx context.Context, m *domain.Member) error {
	m.FirstName = strings.TrimSpace(m.FirstName)
	m.LastName = strings.TrimSpace(m.LastName)
	if m.Email != "" && !emailRegexp.MatchString(m.Email) {
		return fmt.Errorf("invalid email format")
	}
	m.UpdatedAt = s.now()
	if err := s.memberRepo.Update(ctx, m); err != nil {
		if errors.Is(err, domain.ErrDuplicateMember) || errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("update member: %w", err)
	}
	return nil
}

func avatarKey(m *domain.Member) string {
	return "avatars/" + m.TenantID + "/" + m.ID
}

func (s *memberService) SetAvatar(ctx context.Context, m *domain.Member, upload *domain.AvatarUpload) (string, error) {
	if upload.Size > maxAvatarBytes {
		return "", ErrAvatarTooLarge
	}
	ext, ok := allowedAvatarTypes[upload.ContentType]
	if !ok {
		return "", ErrAvatarType
	}
	url, err := s.avatars.Put(ctx, avatarKey(m)+ext, upload.ContentType, upload.Body, upload.Size)
	if err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	m.AvatarURL = url
	m.UpdatedAt = s.now()
	if err := s.memberRepo.Update(ctx, m); err != nil {
		return "", fmt.Errorf("update member: %w", err)
	}
	return url, nil
}

func (s *memberService) RemoveAvatar(ctx context.Context, m *domain.Member) error {
	if m.AvatarURL == "" {
		return nil
	}
	// Key extension is derived from the stored URL.
	key := avatarKey(m)
	if i := strings.LastIndexByte(m.AvatarURL, '.'); i >= 0 {
		key += m.AvatarURL[i:]
	}
	if err := s.avatars.Delete(ctx, key); err != nil {
		// Prefer an orphaned object over a stuck profile update.
		s.logger.ErrorContext(ctx, "avatar object deletion failed", "key", key, "err", err)
	}
	m.AvatarURL = ""
	m.UpdatedAt = s.now()
	if err := s.memberRepo.Update(ctx, m); err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	return nil
}

func (s *memberService) List(ctx context.Context, tenantID string, p domain.PaginationParams) ([]*domain.Member, int, error) {
	return s.memberRepo.List(ctx, tenantID, p)
}

// Delete removes targetID on behalf of actor. Authored events are reassigned
// to the actor, authored invitations deleted, registrations cascaded, and the
// external auth identity removed best-effort afterwards.
func (s *memberService) Delete(ctx context.Context, actor *domain.Member, targetID string) error {
	perms, err := s.permissions.PermissionsFor(ctx, actor)
	if err != nil {
		return fmt.Errorf("load permissions: %w", err)
	}
	if !perms.Has(domain.PermAdminUsers) && !perms.Has(domain.PermMembersManage) {
		return domain.ErrForbidden
	}
	if actor.ID == targetID {
		return domain.ErrSelfDelete
	}

	target, err := s.memberRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target.TenantID != actor.TenantID {
		return domain.ErrNotFound
	}

	// Last-admin protection: the tenant must keep at least one active admin.
	if target.RoleID != nil {
		role, err := s.roleRepo.GetByID(ctx, *target.RoleID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get target role: %w", err)
		}
		if err == nil && role.Type == domain.RoleTypeAdmin {
			count, err := s.memberRepo.CountActiveAdmins(ctx, target.TenantID)
			if err != nil {
				return fmt.Errorf("count active admins: %w", err)
			}
			if count <= 1 {
				return domain.ErrLastAdmin
			}
		}
	}

	if err := s.memberRepo.DeleteWithReassign(ctx, targetID, actor.ID); err != nil {
		return err
	}

	if target.AuthUserID != nil && s.authAdmin != nil {
		if err := s.authAdmin.DeleteUser(ctx, *target.AuthUserID); err != nil {
			s.logger.ErrorContext(ctx, "auth identity deletion failed",
				"member_id", targetID, "auth_user_id", *target.AuthUserID, "err", err)
		}
	}
	return nil
}
