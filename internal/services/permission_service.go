// Package services provides business logic layer for the AuthBox service.
// This file implements permission assignment to accounts and groups.
package services

import (
	"context"

	"github.com/avissapr/authbox/internal/models"
	"github.com/avissapr/authbox/internal/repository"
)

// PermissionService implements permission grant operations. All targets are
// explicit parameters; there is no ambient current-user or current-group
// state anywhere in this layer.
type PermissionService struct {
	perms *repository.PermissionRepository
}

// NewPermissionService creates a PermissionService.
func NewPermissionService(perms *repository.PermissionRepository) *PermissionService {
	return &PermissionService{perms: perms}
}

// Assign is the one-shot assignment action: it resolves a permission by its
// codename and grants it to both the given account and the given group.
//
// Contract:
//  1. Resolve the codename; an unknown code fails with
//     repository.ErrPermissionNotFound and produces no side effects.
//  2. Add the permission to the account's permission set.
//  3. Add the same permission to the group's permission set.
//
// Both grants are idempotent: re-running the action has no additional
// effect. The user and group grants land in independent relations; granting
// to the group does not grant to its members.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - user: Target account (must be persisted)
//   - group: Target group (must be persisted)
//   - codename: Permission short code (e.g. "add_post")
func (s *PermissionService) Assign(ctx context.Context, user *models.User, group *models.Group, codename string) error {
	permission, err := s.perms.FindByCodename(ctx, codename)
	if err != nil {
		return err
	}

	if _, err := s.perms.GrantToUser(ctx, user.ID, permission.ID); err != nil {
		return err
	}

	if _, err := s.perms.GrantToGroup(ctx, group.ID, permission.ID); err != nil {
		return err
	}

	return nil
}

// GrantToUser resolves a codename and adds the permission to the account's
// permission set. Returns whether a new grant was written (false when the
// account already held it).
func (s *PermissionService) GrantToUser(ctx context.Context, user *models.User, codename string) (bool, error) {
	permission, err := s.perms.FindByCodename(ctx, codename)
	if err != nil {
		return false, err
	}
	return s.perms.GrantToUser(ctx, user.ID, permission.ID)
}

// GrantToGroup resolves a codename and adds the permission to the group's
// permission set. Returns whether a new grant was written.
func (s *PermissionService) GrantToGroup(ctx context.Context, group *models.Group, codename string) (bool, error) {
	permission, err := s.perms.FindByCodename(ctx, codename)
	if err != nil {
		return false, err
	}
	return s.perms.GrantToGroup(ctx, group.ID, permission.ID)
}

// RevokeFromUser removes a permission from the account's permission set.
func (s *PermissionService) RevokeFromUser(ctx context.Context, user *models.User, codename string) error {
	permission, err := s.perms.FindByCodename(ctx, codename)
	if err != nil {
		return err
	}
	return s.perms.RevokeFromUser(ctx, user.ID, permission.ID)
}

// RevokeFromGroup removes a permission from the group's permission set.
func (s *PermissionService) RevokeFromGroup(ctx context.Context, group *models.Group, codename string) error {
	permission, err := s.perms.FindByCodename(ctx, codename)
	if err != nil {
		return err
	}
	return s.perms.RevokeFromGroup(ctx, group.ID, permission.ID)
}

// ListForUser returns the permissions the account holds directly.
func (s *PermissionService) ListForUser(ctx context.Context, user *models.User) ([]models.Permission, error) {
	return s.perms.ListForUser(ctx, user.ID)
}

// ListForGroup returns the permissions the group holds.
func (s *PermissionService) ListForGroup(ctx context.Context, group *models.Group) ([]models.Permission, error) {
	return s.perms.ListForGroup(ctx, group.ID)
}
