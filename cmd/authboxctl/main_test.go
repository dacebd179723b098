// Tests for the grant command body. A mocked pool stands in for the
// database, so the full resolve-assign-audit sequence is verified without
// a live instance.
package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avissapr/authbox/internal/database"
	"github.com/avissapr/authbox/internal/repository"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	oldDB := database.DB
	database.DB = mock
	t.Cleanup(func() {
		database.DB = oldDB
		mock.Close()
	})

	return mock
}

func grantFixtures(t *testing.T, mock pgxmock.PgxPoolIface) {
	t.Helper()

	testTime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT(.+)FROM users WHERE email").
		WithArgs("normal@user.com").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "email", "name", "phone", "date_of_birth", "profile_picture",
			"password_hash", "is_active", "is_admin", "created_at",
		}).AddRow(1, "normal@user.com", "Test User", "", nil, nil, "$2a$12$hash", true, false, testTime))
	mock.ExpectQuery("SELECT(.+)FROM groups WHERE name").
		WithArgs("customer").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description", "created_at"}).
			AddRow(2, "customer", "", testTime))

	// The codename is resolved once for the audit reference and once
	// inside the assignment itself.
	for i := 0; i < 2; i++ {
		mock.ExpectQuery("SELECT(.+)FROM permissions WHERE codename").
			WithArgs("add_post").
			WillReturnRows(pgxmock.NewRows([]string{"id", "codename", "name", "created_at"}).
				AddRow(10, "add_post", "Can add post", testTime))
	}

	mock.ExpectExec("INSERT INTO user_permissions").
		WithArgs(1, 10).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO group_permissions").
		WithArgs(2, 10).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
}

// TestRunGrant verifies the full grant sequence and its audit entry.
//
// Test Scenarios:
//   - Success: audit entry carries the resolved permission ID
//   - Audit write failure: warning on stderr, command still succeeds
//   - Unknown codename: error before any grant is attempted
func TestRunGrant(t *testing.T) {
	testTime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("success with audit reference", func(t *testing.T) {
		mock := setupMockDB(t)
		grantFixtures(t, mock)

		permissionID := 10
		mock.ExpectQuery("INSERT INTO audit_log").
			WithArgs((*int)(nil), "ASSIGN_PERMISSION", "permission",
				&permissionID, "", "authboxctl").
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(1, testTime))

		var out, errOut bytes.Buffer
		err := runGrant(context.Background(), "normal@user.com", "customer", "add_post", &out, &errOut)

		assert.NoError(t, err)
		assert.Contains(t, out.String(), `granted "add_post"`)
		assert.Empty(t, errOut.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("audit failure warns but does not fail the grant", func(t *testing.T) {
		mock := setupMockDB(t)
		grantFixtures(t, mock)

		mock.ExpectQuery("INSERT INTO audit_log").
			WithArgs(pgxmock.AnyArg(), "ASSIGN_PERMISSION", "permission",
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(errors.New("connection reset"))

		var out, errOut bytes.Buffer
		err := runGrant(context.Background(), "normal@user.com", "customer", "add_post", &out, &errOut)

		assert.NoError(t, err, "A failed audit write must not undo a completed grant")
		assert.Contains(t, errOut.String(), "warning: audit entry not written")
		assert.Contains(t, out.String(), `granted "add_post"`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown codename writes nothing", func(t *testing.T) {
		mock := setupMockDB(t)

		testTime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		mock.ExpectQuery("SELECT(.+)FROM users WHERE email").
			WithArgs("normal@user.com").
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "email", "name", "phone", "date_of_birth", "profile_picture",
				"password_hash", "is_active", "is_admin", "created_at",
			}).AddRow(1, "normal@user.com", "Test User", "", nil, nil, "$2a$12$hash", true, false, testTime))
		mock.ExpectQuery("SELECT(.+)FROM groups WHERE name").
			WithArgs("customer").
			WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description", "created_at"}).
				AddRow(2, "customer", "", testTime))
		mock.ExpectQuery("SELECT(.+)FROM permissions WHERE codename").
			WithArgs("no_such_perm").
			WillReturnRows(pgxmock.NewRows([]string{"id", "codename", "name", "created_at"}))

		var out, errOut bytes.Buffer
		err := runGrant(context.Background(), "normal@user.com", "customer", "no_such_perm", &out, &errOut)

		assert.ErrorIs(t, err, repository.ErrPermissionNotFound)
		assert.Empty(t, out.String())
		assert.NoError(t, mock.ExpectationsWereMet(), "No grant may be written for an unknown codename")
	})
}
