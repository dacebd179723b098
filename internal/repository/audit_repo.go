// Package repository provides data access layer for the AuthBox service.
// This file implements the audit repository for security and compliance logging.
package repository

import (
	"context"

	"github.com/avissapr/authbox/internal/database"
	"github.com/avissapr/authbox/internal/models"
)

// AuditRepository handles all database operations related to audit logging.
//
// Immutability Note:
//
//	Audit entries are never modified or deleted once created. They provide
//	a permanent record of account, group, and permission changes.
type AuditRepository struct{}

// NewAuditRepository creates and returns a new AuditRepository instance.
func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

// Log creates a new audit log entry in the database.
// Called after significant actions: account creation and deletion, group
// changes, permission grants and revocations, login and logout.
//
// Side Effects:
//   - Sets entry.ID to the generated audit log ID
//   - Sets entry.CreatedAt to the server timestamp
func (r *AuditRepository) Log(ctx context.Context, entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_log (actor_id, action, object_type, object_id, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	return database.DB.QueryRow(ctx, query,
		entry.ActorID, entry.Action, entry.ObjectType, entry.ObjectID,
		entry.IPAddress, entry.UserAgent,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// ListRecent retrieves the most recent audit entries, newest first.
// Used by the admin audit endpoint.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	query := `
		SELECT id, actor_id, action, object_type, object_id, ip_address, user_agent, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := database.DB.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AuditLog
	for rows.Next() {
		var e models.AuditLog
		err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.ObjectType, &e.ObjectID,
			&e.IPAddress, &e.UserAgent, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, nil
}
