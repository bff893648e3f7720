package domain

import (
	"context"
	"strings"
)

// Role types seeded for every tenant. (tenant, type) is unique.
const (
	RoleTypeAdmin  = "admin"
	RoleTypeBoard  = "board"
	RoleTypeMember = "member"
)

// Permission codes. Codes follow a "{resource}.{action}" grammar.
const (
	PermAdminUsers     = "admin.users"
	PermMembersRead    = "members.read"
	PermMembersInvite  = "members.invite"
	PermMembersManage  = "members.manage"
	PermEventsCreate   = "events.create"
	PermEventsManage   = "events.manage"
	PermTenantSettings = "tenant.settings"
)

// DefaultRolePermissions are the permission bundles seeded per role type at
// tenant creation.
var DefaultRolePermissions = map[string][]string{
	RoleTypeAdmin: {
		PermAdminUsers, PermMembersRead, PermMembersInvite, PermMembersManage,
		PermEventsCreate, PermEventsManage, PermTenantSettings,
	},
	RoleTypeBoard: {
		PermMembersRead, PermMembersInvite, PermEventsCreate, PermEventsManage,
	},
	RoleTypeMember: {
		PermMembersRead,
	},
}

// DefaultRoleNames maps role types to their seeded display names.
var DefaultRoleNames = map[string]string{
	RoleTypeAdmin:  "Administrator",
	RoleTypeBoard:  "Vorstand",
	RoleTypeMember: "Mitglied",
}

// Role is a named permission bundle scoped to a tenant.
// swagger:model Role
type Role struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Type     string `json:"type"`
	Name     string `json:"name"`
}

// PermissionSet is the set of permission codes granted by a member's role.
type PermissionSet map[string]struct{}

// NewPermissionSet builds a PermissionSet from a list of codes.
func NewPermissionSet(codes []string) PermissionSet {
	s := make(PermissionSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// Has reports whether the set contains the exact code.
func (s PermissionSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// CanManageInvitations reports whether the set permits invitation
// management: members.invite, admin.users, or any members.* code other than
// exactly members.read.
func (s PermissionSet) CanManageInvitations() bool {
	if s.Has(PermMembersInvite) || s.Has(PermAdminUsers) {
		return true
	}
	for code := range s {
		if strings.HasPrefix(code, "members.") && code != PermMembersRead {
			return true
		}
	}
	return false
}

// RoleRepository defines the interface for role storage.
type RoleRepository interface {
	GetByID(ctx context.Context, id string) (*Role, error)
	GetByType(ctx context.Context, tenantID, roleType string) (*Role, error)
	ListPermissionCodes(ctx context.Context, roleID string) ([]string, error)
}

// PermissionService computes the effective permission set for a member.
// Permissions are recomputed from storage on every call; there is no
// cross-request caching.
type PermissionService interface {
	PermissionsFor(ctx context.Context, member *Member) (PermissionSet, error)
}
