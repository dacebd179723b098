// Package repository implements database access layer for the AuthBox service.
// This file handles group management and user-group memberships.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/avissapr/authbox/internal/database"
	"github.com/avissapr/authbox/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// GroupRepository handles group-related database operations.
// Manages groups and user memberships; group permission grants live in
// PermissionRepository.
type GroupRepository struct{}

// NewGroupRepository creates a new instance of GroupRepository.
func NewGroupRepository() *GroupRepository {
	return &GroupRepository{}
}

// ListAll retrieves all groups with member counts.
// Used for the admin group listing.
//
// Database: LEFT JOIN with user_groups to count members
func (r *GroupRepository) ListAll(ctx context.Context) ([]models.GroupWithMembers, error) {
	query := `
		SELECT g.id, g.name, g.description, g.created_at,
		       COUNT(ug.user_id) as member_count
		FROM groups g
		LEFT JOIN user_groups ug ON g.id = ug.group_id
		GROUP BY g.id, g.name, g.description, g.created_at
		ORDER BY g.name
	`

	rows, err := database.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.GroupWithMembers
	for rows.Next() {
		var g models.GroupWithMembers
		err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt, &g.MemberCount)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}

	return groups, nil
}

// FindByID retrieves a group by its unique ID.
//
// Returns:
//   - *models.Group: Matching group record
//   - error: ErrGroupNotFound if ID doesn't exist, database error otherwise
func (r *GroupRepository) FindByID(ctx context.Context, id int) (*models.Group, error) {
	query := `SELECT id, name, description, created_at FROM groups WHERE id = $1`

	var g models.Group
	err := database.DB.QueryRow(ctx, query, id).Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}

	return &g, nil
}

// FindByName retrieves a group by its unique name.
// Used by the one-shot CLI where operators address groups by name.
func (r *GroupRepository) FindByName(ctx context.Context, name string) (*models.Group, error) {
	query := `SELECT id, name, description, created_at FROM groups WHERE name = $1`

	var g models.Group
	err := database.DB.QueryRow(ctx, query, name).Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("group %q: %w", name, ErrGroupNotFound)
	}
	if err != nil {
		return nil, err
	}

	return &g, nil
}

// Create inserts a new group into the database.
//
// Returns:
//   - error: ErrDuplicateGroup if the name is taken (unique constraint),
//     database error otherwise
//
// Side Effects: Populates group.ID and group.CreatedAt with database values
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	query := `
		INSERT INTO groups (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := database.DB.QueryRow(ctx, query, group.Name, group.Description).
		Scan(&group.ID, &group.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("create group %q: %w", group.Name, ErrDuplicateGroup)
	}
	return err
}

// Delete removes a group from the database by ID.
// CASCADE deletion removes all memberships and group permission grants.
func (r *GroupRepository) Delete(ctx context.Context, groupID int) error {
	query := `DELETE FROM groups WHERE id = $1`
	_, err := database.DB.Exec(ctx, query, groupID)
	return err
}

// GetMembers retrieves all users assigned to a specific group.
//
// Database: JOIN with users table through user_groups
func (r *GroupRepository) GetMembers(ctx context.Context, groupID int) ([]models.User, error) {
	query := `
		SELECT u.id, u.email, u.name, u.phone, u.is_active, u.is_admin, u.created_at
		FROM users u
		JOIN user_groups ug ON u.id = ug.user_id
		WHERE ug.group_id = $1
		ORDER BY u.name
	`

	rows, err := database.DB.Query(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.IsActive, &u.IsAdmin, &u.CreatedAt)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, nil
}

// AddMember adds a user to a group.
// Idempotent operation - duplicate memberships are ignored.
//
// Database: Uses ON CONFLICT DO NOTHING for idempotency
func (r *GroupRepository) AddMember(ctx context.Context, userID, groupID int) error {
	query := `
		INSERT INTO user_groups (user_id, group_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, group_id) DO NOTHING
	`

	_, err := database.DB.Exec(ctx, query, userID, groupID)
	return err
}

// RemoveMember removes a user from a group.
func (r *GroupRepository) RemoveMember(ctx context.Context, userID, groupID int) error {
	query := `DELETE FROM user_groups WHERE user_id = $1 AND group_id = $2`
	_, err := database.DB.Exec(ctx, query, userID, groupID)
	return err
}
