// Package repository_test provides unit tests for the repository layer.
// Stats repository tests verify the dashboard aggregation query.
package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/avissapr/authbox/internal/repository"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStatsRepository_GetDashboardStats verifies the single-round-trip
// aggregation for the admin dashboard.
func TestStatsRepository_GetDashboardStats(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mock, cleanup := setupMockDB(t)
		defer cleanup()

		rows := pgxmock.NewRows([]string{
			"total_users", "active_users", "total_groups",
			"total_permissions", "user_grants", "group_grants",
		}).AddRow(10, 8, 3, 4, 12, 6)

		mock.ExpectQuery("SELECT(.+)total_users").WillReturnRows(rows)

		repo := repository.NewStatsRepository()
		stats, err := repo.GetDashboardStats(context.Background())

		assert.NoError(t, err)
		require.NotNil(t, stats)
		assert.Equal(t, 10, stats.TotalUsers)
		assert.Equal(t, 8, stats.ActiveUsers)
		assert.Equal(t, 3, stats.TotalGroups)
		assert.Equal(t, 4, stats.TotalPermissions)
		assert.Equal(t, 12, stats.UserGrants)
		assert.Equal(t, 6, stats.GroupGrants)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database failure", func(t *testing.T) {
		mock, cleanup := setupMockDB(t)
		defer cleanup()

		mock.ExpectQuery("SELECT(.+)total_users").
			WillReturnError(errors.New("connection reset"))

		repo := repository.NewStatsRepository()
		stats, err := repo.GetDashboardStats(context.Background())

		assert.Error(t, err)
		assert.Nil(t, stats)
	})
}
