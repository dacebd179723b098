// Package repository implements database access layer for the AuthBox service.
// This file provides statistical aggregation queries for the admin dashboard.
package repository

import (
	"context"

	"github.com/avissapr/authbox/internal/database"
)

// StatsRepository handles statistical queries for dashboard displays.
type StatsRepository struct{}

// NewStatsRepository creates a new instance of StatsRepository.
func NewStatsRepository() *StatsRepository {
	return &StatsRepository{}
}

// DashboardStats represents aggregated statistics for the admin dashboard.
type DashboardStats struct {
	TotalUsers       int `json:"total_users"`       // All accounts
	ActiveUsers      int `json:"active_users"`      // Accounts with is_active = true
	TotalGroups      int `json:"total_groups"`      // All groups
	TotalPermissions int `json:"total_permissions"` // Permission catalog size
	UserGrants       int `json:"user_grants"`       // Rows in user_permissions
	GroupGrants      int `json:"group_grants"`      // Rows in group_permissions
}

// GetDashboardStats retrieves aggregated statistics for the admin dashboard.
//
// Database: Scalar subqueries over users, groups, permissions, and the two
// grant relations; a single round trip.
func (r *StatsRepository) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users) as total_users,
			(SELECT COUNT(*) FROM users WHERE is_active) as active_users,
			(SELECT COUNT(*) FROM groups) as total_groups,
			(SELECT COUNT(*) FROM permissions) as total_permissions,
			(SELECT COUNT(*) FROM user_permissions) as user_grants,
			(SELECT COUNT(*) FROM group_permissions) as group_grants
	`

	var stats DashboardStats
	err := database.DB.QueryRow(ctx, query).Scan(
		&stats.TotalUsers, &stats.ActiveUsers, &stats.TotalGroups,
		&stats.TotalPermissions, &stats.UserGrants, &stats.GroupGrants,
	)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
