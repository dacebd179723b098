// Package models_test provides unit tests for data model structures.
// Tests validate model field assignments and view projections without
// requiring database connections or external dependencies.
package models_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/avissapr/authbox/internal/models"
)

// TestUserModel verifies User model structure and field assignments.
//
// Model Fields Tested:
//   - Email: unique login identifier
//   - DateOfBirth, ProfilePicture: optional fields carried as pointers
//
// Note: This test validates the model structure only. Business logic
// validation (email uniqueness, date parsing) is tested in the repository
// and service layers.
func TestUserModel(t *testing.T) {
	dob := time.Date(1995, 3, 14, 0, 0, 0, 0, time.UTC)
	pic := "profile_pics/abc.png"

	user := models.User{
		Email:          "test@example.com",
		Name:           "Test User",
		Phone:          "555-0100",
		DateOfBirth:    &dob,
		ProfilePicture: &pic,
		IsActive:       true,
	}

	if user.Email != "test@example.com" {
		t.Errorf("Expected email test@example.com, got %s", user.Email)
	}

	if user.DateOfBirth == nil || !user.DateOfBirth.Equal(dob) {
		t.Errorf("Expected date of birth %v, got %v", dob, user.DateOfBirth)
	}

	if user.ProfilePicture == nil || *user.ProfilePicture != pic {
		t.Errorf("Expected profile picture %s, got %v", pic, user.ProfilePicture)
	}

	// Optional fields default to absent, not zero values
	blank := models.User{}
	if blank.DateOfBirth != nil || blank.ProfilePicture != nil {
		t.Error("Optional fields must default to nil")
	}
}

// TestUserView verifies the API projection never leaks the password hash.
//
// Security Note: UserView is the only user shape that crosses the HTTP
// boundary; this test guards the projection against regressions.
func TestUserView(t *testing.T) {
	user := models.User{
		ID:           1,
		Email:        "test@example.com",
		Name:         "Test User",
		PasswordHash: "$2a$12$secret-hash",
		IsActive:     true,
		IsAdmin:      true,
	}

	view := user.View()

	if view.Email != user.Email || view.ID != user.ID {
		t.Errorf("View must carry identity fields, got %+v", view)
	}
	if !view.IsAdmin {
		t.Error("View must carry the admin flag")
	}

	data, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), "secret-hash") {
		t.Error("Serialized view must never contain the password hash")
	}
}

// TestPermissionModel verifies Permission field assignments.
func TestPermissionModel(t *testing.T) {
	perm := models.Permission{
		Codename: "add_post",
		Name:     "Can add post",
	}

	if perm.Codename != "add_post" {
		t.Errorf("Expected codename add_post, got %s", perm.Codename)
	}
	if perm.Name != "Can add post" {
		t.Errorf("Expected name 'Can add post', got %s", perm.Name)
	}
}

// TestGroupModel verifies Group and GroupWithMembers structures.
func TestGroupModel(t *testing.T) {
	group := models.GroupWithMembers{
		Group: models.Group{
			Name:        "customer",
			Description: "Customer accounts",
		},
		MemberCount: 3,
	}

	if group.Name != "customer" {
		t.Errorf("Expected name customer, got %s", group.Name)
	}
	if group.MemberCount != 3 {
		t.Errorf("Expected 3 members, got %d", group.MemberCount)
	}
}
