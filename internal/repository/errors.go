// Package repository implements the database access layer for the AuthBox service.
// This file defines the sentinel errors the repositories surface to callers.
package repository

import "errors"

var (
	// ErrUserNotFound is returned when no account matches the given
	// identifier. An authentication miss is derived from this error by
	// the backends; it is never treated as a fault there.
	ErrUserNotFound = errors.New("user not found")

	// ErrGroupNotFound is returned when no group matches the given ID or name.
	ErrGroupNotFound = errors.New("group not found")

	// ErrPermissionNotFound is returned when no permission matches the
	// given codename.
	ErrPermissionNotFound = errors.New("permission not found")

	// ErrDuplicateEmail is returned when an account is created with an
	// email already in use. Maps the Postgres unique_violation on
	// users.email.
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrDuplicateGroup is returned when a group is created with a name
	// already in use.
	ErrDuplicateGroup = errors.New("group name already in use")
)
