package services

import (
	"context"
	"fmt"

	"lionshub/internal/domain"
)

type permissionService struct {
	roleRepo domain.RoleRepository
}

// NewPermissionService creates a PermissionService backed by the role repository.
func NewPermissionService(roleRepo domain.RoleRepository) domain.PermissionService {
	return &permissionService{roleRepo: roleRepo}
}

// PermissionsFor computes the member's permission set from their assigned
// role. A member without a role has no permissions. The set is recomputed
// from storage on every call.
func (s *permissionService) PermissionsFor(ctx context.Context, member *domain.Member) (domain.PermissionSet, error) {
	if member.RoleID == nil {
		return domain.PermissionSet{}, nil
	}
	codes, err := s.roleRepo.ListPermissionCodes(ctx, *member.RoleID)
	if err != nil {
		return nil, fmt.Errorf("list permission codes: %w", err)
	}
	return domain.NewPermissionSet(codes), nil
}
