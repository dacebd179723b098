// Package repository_test provides unit tests for the repository layer.
// Audit repository tests verify entry creation and the recent listing.
package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/avissapr/authbox/internal/models"
	"github.com/avissapr/authbox/internal/repository"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

// TestAuditRepository_Log verifies an entry is written and gets its ID and
// timestamp from RETURNING.
func TestAuditRepository_Log(t *testing.T) {
	testTime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	mock, cleanup := setupMockDB(t)
	defer cleanup()

	actorID := 1
	objectID := 7
	entry := &models.AuditLog{
		ActorID:    &actorID,
		Action:     "GRANT_PERMISSION",
		ObjectType: "user",
		ObjectID:   &objectID,
		IPAddress:  "203.0.113.7",
		UserAgent:  "test-agent",
	}

	rows := pgxmock.NewRows([]string{"id", "created_at"}).AddRow(100, testTime)

	mock.ExpectQuery("INSERT INTO audit_log").
		WithArgs(entry.ActorID, entry.Action, entry.ObjectType, entry.ObjectID,
			entry.IPAddress, entry.UserAgent).
		WillReturnRows(rows)

	repo := repository.NewAuditRepository()
	err := repo.Log(context.Background(), entry)

	assert.NoError(t, err)
	assert.Equal(t, 100, entry.ID)
	assert.Equal(t, testTime, entry.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestAuditRepository_ListRecent verifies newest-first retrieval with limit.
func TestAuditRepository_ListRecent(t *testing.T) {
	testTime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	mock, cleanup := setupMockDB(t)
	defer cleanup()

	actorID := 1
	rows := pgxmock.NewRows([]string{
		"id", "actor_id", "action", "object_type", "object_id", "ip_address",
		"user_agent", "created_at",
	}).
		AddRow(2, &actorID, "CREATE_USER", "user", nil, "203.0.113.7", "ua", testTime).
		AddRow(1, nil, "ASSIGN_PERMISSION", "permission", nil, "", "authboxctl", testTime)

	mock.ExpectQuery("SELECT(.+)FROM audit_log").
		WithArgs(50).
		WillReturnRows(rows)

	repo := repository.NewAuditRepository()
	entries, err := repo.ListRecent(context.Background(), 50)

	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "CREATE_USER", entries[0].Action)
	assert.Nil(t, entries[1].ActorID, "CLI entries carry no actor")
	assert.NoError(t, mock.ExpectationsWereMet())
}
