// Package models defines the domain entities and data transfer objects for AuthBox.
// It includes database models mapped to PostgreSQL tables, form DTOs for user input,
// and view models for API responses.
package models

import "time"

// ============================================================================
// Domain Models (Database Entities)
// ============================================================================

// User represents an account record. The email address is the login
// identifier and is unique across all accounts.
//
// Database Table: users
// Security Note: PasswordHash should never be exposed in API responses or logs
type User struct {
	ID             int        `db:"id"`              // Primary key, auto-increment
	Email          string     `db:"email"`           // Unique, used for login
	Name           string     `db:"name"`            // Display name
	Phone          string     `db:"phone"`           // Contact number, format unconstrained
	DateOfBirth    *time.Time `db:"date_of_birth"`   // Optional, nil when not provided
	ProfilePicture *string    `db:"profile_picture"` // Optional storage key (e.g. "profile_pics/<uuid>.png")
	PasswordHash   string     `db:"password_hash"`   // bcrypt hashed password
	IsActive       bool       `db:"is_active"`       // Inactive accounts cannot authenticate
	IsAdmin        bool       `db:"is_admin"`        // Grants access to admin routes
	CreatedAt      time.Time  `db:"created_at"`      // Account creation timestamp
}

// Permission represents a named capability identified by a short codename
// (e.g. "add_post"). Permissions are granted to users and to groups through
// independent many-to-many relations.
//
// Database Table: permissions
type Permission struct {
	ID        int       `db:"id"`         // Primary key
	Codename  string    `db:"codename"`   // Unique short code (e.g. "add_post")
	Name      string    `db:"name"`       // Human-readable label
	CreatedAt time.Time `db:"created_at"` // Creation timestamp
}

// UserPermission represents a permission granted directly to a user.
// Granting an already-held permission is a no-op.
//
// Database Table: user_permissions with composite primary key
type UserPermission struct {
	UserID       int       `db:"user_id"`       // Foreign key to users table
	PermissionID int       `db:"permission_id"` // Foreign key to permissions table
	CreatedAt    time.Time `db:"created_at"`    // When the grant was made
}

// GroupPermission represents a permission granted to a group. Group grants
// do not flow into members' individual permission sets; the two relations
// are independent.
//
// Database Table: group_permissions with composite primary key
type GroupPermission struct {
	GroupID      int       `db:"group_id"`      // Foreign key to groups table
	PermissionID int       `db:"permission_id"` // Foreign key to permissions table
	CreatedAt    time.Time `db:"created_at"`    // When the grant was made
}

// AuditLog represents an audit trail entry for security monitoring.
// Significant actions (account creation, grants, logins) are logged here.
//
// Database Table: audit_log
type AuditLog struct {
	ID         int       // Primary key
	ActorID    *int      // User who performed the action (nullable for system/CLI actions)
	Action     string    // Action type (e.g. "GRANT_PERMISSION", "CREATE_USER")
	ObjectType string    // Type of object affected ("user", "group", "permission")
	ObjectID   *int      // ID of affected object (nullable)
	IPAddress  string    // Source IP address
	UserAgent  string    // Browser/client identifier
	CreatedAt  time.Time // When action occurred
}

// ============================================================================
// Data Transfer Objects (DTOs) - Request Input
// ============================================================================

// LoginForm represents user login credentials.
type LoginForm struct {
	Email    string `json:"email"`    // Login identifier
	Password string `json:"password"` // Plain-text password (never stored)
}

// CreateUserForm represents data for creating a new account.
// DateOfBirth is parsed from "2006-01-02" when present.
type CreateUserForm struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
	DateOfBirth string `json:"date_of_birth"` // Optional, "YYYY-MM-DD"
	IsAdmin     bool   `json:"is_admin"`
}

// UpdateProfileForm represents a profile mutation. Nil pointers mean
// "leave the field unchanged"; an empty DateOfBirth clears it.
type UpdateProfileForm struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	DateOfBirth *string `json:"date_of_birth"` // "YYYY-MM-DD" or "" to clear
}

// GrantForm represents a one-shot permission assignment targeting a user
// and a group at the same time.
type GrantForm struct {
	UserID   int    `json:"user_id"`
	GroupID  int    `json:"group_id"`
	Codename string `json:"codename"` // Permission short code
}

// ============================================================================
// View Models - API Responses
// ============================================================================

// UserView is the API-safe projection of a User. It never carries the
// password hash.
type UserView struct {
	ID             int        `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	ProfilePicture *string    `json:"profile_picture,omitempty"`
	IsActive       bool       `json:"is_active"`
	IsAdmin        bool       `json:"is_admin"`
	CreatedAt      time.Time  `json:"created_at"`
}

// View converts a User to its API-safe projection.
func (u *User) View() UserView {
	return UserView{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Phone:          u.Phone,
		DateOfBirth:    u.DateOfBirth,
		ProfilePicture: u.ProfilePicture,
		IsActive:       u.IsActive,
		IsAdmin:        u.IsAdmin,
		CreatedAt:      u.CreatedAt,
	}
}

// PermissionGrantView reports the outcome of a grant operation.
type PermissionGrantView struct {
	Codename string `json:"codename"`
	UserID   int    `json:"user_id,omitempty"`
	GroupID  int    `json:"group_id,omitempty"`
	Granted  bool   `json:"granted"` // false when the grant already existed
}
