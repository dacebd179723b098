// Package models defines data structures for the AuthBox service.
// This file contains Group and UserGroup models for shared-permission management.
package models

import "time"

// Group represents a named collection of accounts sharing a set of
// permissions.
//
// Database: groups table
type Group struct {
	ID          int       `db:"id"`          // Primary key, auto-increment
	Name        string    `db:"name"`        // Unique group name (e.g. "Editors", "Moderators")
	Description string    `db:"description"` // Optional description of group purpose
	CreatedAt   time.Time `db:"created_at"`  // Timestamp when group was created
}

// UserGroup represents membership of a user in a group.
// Many-to-many relationship between users and groups.
//
// Database: user_groups table with composite primary key
type UserGroup struct {
	UserID    int       `db:"user_id"`    // Foreign key to users table
	GroupID   int       `db:"group_id"`   // Foreign key to groups table
	CreatedAt time.Time `db:"created_at"` // Timestamp when user was added to group
}

// GroupWithMembers extends Group with member count for display purposes.
// Used in list views to show how many users are in each group.
type GroupWithMembers struct {
	Group
	MemberCount int `db:"member_count"` // Count of users assigned to this group
}
