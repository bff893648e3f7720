package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lionshub/internal/domain"
)

func TestPermissionService_PermissionsFor(t *testing.T) {
	ctx := context.Background()

	t.Run("a member without a role has no permissions", func(t *testing.T) {
		svc := NewPermissionService(newFakeRoleRepo())

		perms, err := svc.PermissionsFor(ctx, &domain.Member{ID: "member-1"})
		require.NoError(t, err)
		assert.False(t, perms.Has(domain.PermMembersRead))
		assert.False(t, perms.CanManageInvitations())
	})

	t.Run("permissions come from the assigned role", func(t *testing.T) {
		roles := newFakeRoleRepo()
		roles.add(
			&domain.Role{ID: "role-board", TenantID: "tenant-1", Type: domain.RoleTypeBoard},
			domain.DefaultRolePermissions[domain.RoleTypeBoard],
		)
		svc := NewPermissionService(roles)
		roleID := "role-board"

		perms, err := svc.PermissionsFor(ctx, &domain.Member{ID: "member-1", RoleID: &roleID})
		require.NoError(t, err)
		assert.True(t, perms.Has(domain.PermMembersInvite))
		assert.True(t, perms.Has(domain.PermEventsCreate))
		assert.False(t, perms.Has(domain.PermAdminUsers))
	})

	t.Run("repository failures propagate", func(t *testing.T) {
		roles := newFakeRoleRepo()
		roles.listErr = assert.AnError
		svc := NewPermissionService(roles)
		roleID := "role-x"

		_, err := svc.PermissionsFor(ctx, &domain.Member{ID: "member-1", RoleID: &roleID})
		assert.Error(t, err)
	})
}
