// Package handlers provides unit tests for the HTTP layer.
// Admin tests exercise the one-shot assignment endpoint against a mocked
// database.
package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avissapr/authbox/internal/repository"
	"github.com/avissapr/authbox/internal/security"
	"github.com/avissapr/authbox/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminApp(t *testing.T) *fiber.App {
	t.Helper()

	users := repository.NewUserRepository()
	auth := services.NewAuthService(nil, 4)
	userService := services.NewUserService(users, auth)
	permService := services.NewPermissionService(repository.NewPermissionRepository())
	handler := NewAdminHandler(userService, permService, security.NewLogger())

	app := fiber.New()
	app.Post("/admin/assign", handler.Assign)
	return app
}

func adminUserRow(id int, email string, t time.Time) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "email", "name", "phone", "date_of_birth", "profile_picture",
		"password_hash", "is_active", "is_admin", "created_at",
	}).AddRow(id, email, "Test User", "", nil, nil, "$2a$12$hash", true, false, t)
}

// TestAdminHandler_Assign verifies the combined assignment endpoint.
//
// Test Scenarios:
//   - Success: user and group resolved, grant written to both relations
//   - Unknown codename: 404 after the lookup, nothing written
func TestAdminHandler_Assign(t *testing.T) {
	testTime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("grants and responds 204", func(t *testing.T) {
		mock, cleanup := setupMockDB(t)
		defer cleanup()

		app := newAdminApp(t)

		mock.ExpectQuery("SELECT(.+)FROM users WHERE id").
			WithArgs(1).
			WillReturnRows(adminUserRow(1, "normal@user.com", testTime))
		mock.ExpectQuery("SELECT(.+)FROM groups WHERE id").
			WithArgs(2).
			WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description", "created_at"}).
				AddRow(2, "customer", "", testTime))
		mock.ExpectQuery("SELECT(.+)FROM permissions WHERE codename").
			WithArgs("add_post").
			WillReturnRows(pgxmock.NewRows([]string{"id", "codename", "name", "created_at"}).
				AddRow(10, "add_post", "Can add post", testTime))
		mock.ExpectExec("INSERT INTO user_permissions").
			WithArgs(1, 10).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec("INSERT INTO group_permissions").
			WithArgs(2, 10).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		// Audit entry written after the grants
		mock.ExpectQuery("INSERT INTO audit_log").
			WithArgs(pgxmock.AnyArg(), "ASSIGN_PERMISSION", "permission",
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(1, testTime))

		req := httptest.NewRequest("POST", "/admin/assign",
			strings.NewReader(`{"user_id":1,"group_id":2,"codename":"add_post"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown codename writes nothing", func(t *testing.T) {
		mock, cleanup := setupMockDB(t)
		defer cleanup()

		app := newAdminApp(t)

		mock.ExpectQuery("SELECT(.+)FROM users WHERE id").
			WithArgs(1).
			WillReturnRows(adminUserRow(1, "normal@user.com", testTime))
		mock.ExpectQuery("SELECT(.+)FROM groups WHERE id").
			WithArgs(2).
			WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description", "created_at"}).
				AddRow(2, "customer", "", testTime))
		mock.ExpectQuery("SELECT(.+)FROM permissions WHERE codename").
			WithArgs("no_such_perm").
			WillReturnRows(pgxmock.NewRows([]string{"id", "codename", "name", "created_at"}))

		req := httptest.NewRequest("POST", "/admin/assign",
			strings.NewReader(`{"user_id":1,"group_id":2,"codename":"no_such_perm"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		assert.NoError(t, mock.ExpectationsWereMet(), "No grant may be written for an unknown codename")
	})
}
