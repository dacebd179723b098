// Package services provides business logic layer for the AuthBox service.
// This file implements account creation and profile management.
package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/avissapr/authbox/internal/models"
	"github.com/avissapr/authbox/internal/repository"
	"github.com/google/uuid"
)

// dateLayout is the wire format for optional date-of-birth values.
const dateLayout = "2006-01-02"

// ErrInvalidDate is returned when a date field does not parse as YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// UserService implements account lifecycle operations on top of the user
// repository: registration with hashed credentials and profile mutation.
type UserService struct {
	users *repository.UserRepository
	auth  *AuthService
}

// NewUserService creates a UserService.
func NewUserService(users *repository.UserRepository, auth *AuthService) *UserService {
	return &UserService{users: users, auth: auth}
}

// CreateUser registers a new account from the given form.
// The password is bcrypt-hashed before it reaches the repository; the date
// of birth is optional and parsed from "YYYY-MM-DD" when present.
//
// Returns:
//   - *models.User: Created account with ID and CreatedAt populated
//   - error: repository.ErrDuplicateEmail when the email is taken,
//     a parse error for a malformed date, database error otherwise
func (s *UserService) CreateUser(ctx context.Context, form models.CreateUserForm) (*models.User, error) {
	hash, err := s.auth.HashPassword(form.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        strings.TrimSpace(form.Email),
		Name:         form.Name,
		Phone:        form.Phone,
		PasswordHash: hash,
		IsActive:     true,
		IsAdmin:      form.IsAdmin,
	}

	if form.DateOfBirth != "" {
		dob, err := time.Parse(dateLayout, form.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("date_of_birth %q: %w", form.DateOfBirth, ErrInvalidDate)
		}
		user.DateOfBirth = &dob
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies a partial profile update to an account.
// Nil form fields are left unchanged; an empty date string clears the
// stored date of birth.
func (s *UserService) UpdateProfile(ctx context.Context, userID int, form models.UpdateProfileForm) error {
	var dob *time.Time
	clearDOB := false

	if form.DateOfBirth != nil {
		if *form.DateOfBirth == "" {
			clearDOB = true
		} else {
			parsed, err := time.Parse(dateLayout, *form.DateOfBirth)
			if err != nil {
				return fmt.Errorf("date_of_birth %q: %w", *form.DateOfBirth, ErrInvalidDate)
			}
			dob = &parsed
		}
	}

	return s.users.UpdateProfile(ctx, userID, form.Name, form.Phone, dob, clearDOB)
}

// AttachProfilePicture assigns a fresh storage key for the account's
// profile image and records it. The upload itself happens against the
// object store out of band; this service only manages the reference.
//
// Returns the generated key, e.g. "profile_pics/5f3c...d2.png".
func (s *UserService) AttachProfilePicture(ctx context.Context, userID int, filename string) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".png"
	}

	key := fmt.Sprintf("profile_pics/%s%s", uuid.NewString(), ext)
	if err := s.users.SetProfilePicture(ctx, userID, &key); err != nil {
		return "", err
	}
	return key, nil
}

// RemoveProfilePicture clears the account's profile image reference.
func (s *UserService) RemoveProfilePicture(ctx context.Context, userID int) error {
	return s.users.SetProfilePicture(ctx, userID, nil)
}
