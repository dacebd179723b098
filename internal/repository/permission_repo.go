// Package repository implements database access layer for the AuthBox service.
// This file handles permission resolution and the user/group grant relations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/avissapr/authbox/internal/database"
	"github.com/avissapr/authbox/internal/models"
	"github.com/jackc/pgx/v5"
)

// PermissionRepository handles permission-related database operations.
// Manages the permission catalog and the two independent grant relations:
// user_permissions and group_permissions. Grants to a group never appear in
// a member's individual permission set.
type PermissionRepository struct{}

// NewPermissionRepository creates a new instance of PermissionRepository.
func NewPermissionRepository() *PermissionRepository {
	return &PermissionRepository{}
}

// FindByCodename resolves a permission by its short code.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - codename: Short code identifying the permission (e.g. "add_post")
//
// Returns:
//   - *models.Permission: Matching permission record
//   - error: ErrPermissionNotFound if no such code exists, database error otherwise
func (r *PermissionRepository) FindByCodename(ctx context.Context, codename string) (*models.Permission, error) {
	query := `SELECT id, codename, name, created_at FROM permissions WHERE codename = $1`

	var p models.Permission
	err := database.DB.QueryRow(ctx, query, codename).Scan(
		&p.ID, &p.Codename, &p.Name, &p.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("permission %q: %w", codename, ErrPermissionNotFound)
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// ListAll retrieves the full permission catalog ordered by codename.
func (r *PermissionRepository) ListAll(ctx context.Context) ([]models.Permission, error) {
	query := `SELECT id, codename, name, created_at FROM permissions ORDER BY codename`

	rows, err := database.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []models.Permission
	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(&p.ID, &p.Codename, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}

	return perms, nil
}

// Create inserts a new permission into the catalog.
//
// Database: Codename must be unique (enforced by UNIQUE constraint)
// Side Effects: Populates permission.ID and permission.CreatedAt
func (r *PermissionRepository) Create(ctx context.Context, permission *models.Permission) error {
	query := `
		INSERT INTO permissions (codename, name)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	return database.DB.QueryRow(ctx, query, permission.Codename, permission.Name).
		Scan(&permission.ID, &permission.CreatedAt)
}

// GrantToUser adds a permission to a user's permission set.
// Idempotent operation - granting an already-held permission has no effect.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - userID: Account receiving the grant
//   - permissionID: Permission being granted
//
// Returns:
//   - bool: true when a new grant was written, false when it already existed
//   - error: Database error if insertion fails, nil on success or duplicate
//
// Database: Uses ON CONFLICT DO NOTHING for idempotency
func (r *PermissionRepository) GrantToUser(ctx context.Context, userID, permissionID int) (bool, error) {
	query := `
		INSERT INTO user_permissions (user_id, permission_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, permission_id) DO NOTHING
	`

	tag, err := database.DB.Exec(ctx, query, userID, permissionID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GrantToGroup adds a permission to a group's permission set.
// Idempotent operation - granting an already-held permission has no effect.
//
// Returns:
//   - bool: true when a new grant was written, false when it already existed
//   - error: Database error if insertion fails, nil on success or duplicate
func (r *PermissionRepository) GrantToGroup(ctx context.Context, groupID, permissionID int) (bool, error) {
	query := `
		INSERT INTO group_permissions (group_id, permission_id)
		VALUES ($1, $2)
		ON CONFLICT (group_id, permission_id) DO NOTHING
	`

	tag, err := database.DB.Exec(ctx, query, groupID, permissionID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// RevokeFromUser removes a permission from a user's permission set.
func (r *PermissionRepository) RevokeFromUser(ctx context.Context, userID, permissionID int) error {
	query := `DELETE FROM user_permissions WHERE user_id = $1 AND permission_id = $2`
	_, err := database.DB.Exec(ctx, query, userID, permissionID)
	return err
}

// RevokeFromGroup removes a permission from a group's permission set.
func (r *PermissionRepository) RevokeFromGroup(ctx context.Context, groupID, permissionID int) error {
	query := `DELETE FROM group_permissions WHERE group_id = $1 AND permission_id = $2`
	_, err := database.DB.Exec(ctx, query, groupID, permissionID)
	return err
}

// ListForUser retrieves the permissions granted directly to a user.
// Group-held permissions are deliberately not folded in; the two relations
// are independent.
func (r *PermissionRepository) ListForUser(ctx context.Context, userID int) ([]models.Permission, error) {
	query := `
		SELECT p.id, p.codename, p.name, p.created_at
		FROM permissions p
		JOIN user_permissions up ON p.id = up.permission_id
		WHERE up.user_id = $1
		ORDER BY p.codename
	`

	return r.listGrants(ctx, query, userID)
}

// ListForGroup retrieves the permissions granted to a group.
func (r *PermissionRepository) ListForGroup(ctx context.Context, groupID int) ([]models.Permission, error) {
	query := `
		SELECT p.id, p.codename, p.name, p.created_at
		FROM permissions p
		JOIN group_permissions gp ON p.id = gp.permission_id
		WHERE gp.group_id = $1
		ORDER BY p.codename
	`

	return r.listGrants(ctx, query, groupID)
}

func (r *PermissionRepository) listGrants(ctx context.Context, query string, ownerID int) ([]models.Permission, error) {
	rows, err := database.DB.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []models.Permission
	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(&p.ID, &p.Codename, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}

	return perms, nil
}

// UserHasPermission reports whether the user holds the permission directly.
// Used by the RequirePermission middleware.
func (r *PermissionRepository) UserHasPermission(ctx context.Context, userID int, codename string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM user_permissions up
			JOIN permissions p ON p.id = up.permission_id
			WHERE up.user_id = $1 AND p.codename = $2
		)
	`

	var held bool
	if err := database.DB.QueryRow(ctx, query, userID, codename).Scan(&held); err != nil {
		return false, err
	}
	return held, nil
}
