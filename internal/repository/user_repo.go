// Package repository implements database access layer for the AuthBox service.
// This file handles user account management, authentication queries, and user CRUD operations.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avissapr/authbox/internal/database"
	"github.com/avissapr/authbox/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

// UserRepository handles user-related database operations.
// Manages account records, authentication lookups, and profile mutations.
type UserRepository struct{}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

const userColumns = `id, email, name, phone, date_of_birth, profile_picture, password_hash, is_active, is_admin, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.Phone, &user.DateOfBirth,
		&user.ProfilePicture, &user.PasswordHash, &user.IsActive, &user.IsAdmin,
		&user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail retrieves a user by their email address.
// Used by the authentication backends to validate credentials.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - email: User's email address (unique login identifier)
//
// Returns:
//   - *models.User: Full record including password hash
//   - error: ErrUserNotFound if email doesn't exist, database error otherwise
//
// Database: Uses parameterized query to prevent SQL injection
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(database.DB.QueryRow(ctx, query, email))
}

// FindByID retrieves a user by their unique ID.
// Used for session resolution and by Backend.GetUser.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - id: User's unique identifier (primary key)
//
// Returns:
//   - *models.User: Full record including password hash
//   - error: ErrUserNotFound if ID doesn't exist, database error otherwise
func (r *UserRepository) FindByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(database.DB.QueryRow(ctx, query, id))
}

// ListAll retrieves all users in the system.
// Used by the admin user listing. Excludes password_hash.
//
// Returns:
//   - []models.User: Slice of all users ordered by creation date (newest first)
//   - error: Database error if query fails, nil on success
func (r *UserRepository) ListAll(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT id, email, name, phone, date_of_birth, profile_picture, is_active, is_admin, created_at
		FROM users ORDER BY created_at DESC
	`

	rows, err := database.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID, &user.Email, &user.Name, &user.Phone, &user.DateOfBirth,
			&user.ProfilePicture, &user.IsActive, &user.IsAdmin, &user.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, nil
}

// Create inserts a new user into the database.
// Password must be pre-hashed using bcrypt before calling this method.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - user: User struct with email, name, phone, optional date of birth and
//     profile picture, and a bcrypt hashed password
//
// Returns:
//   - error: ErrDuplicateEmail if the email is already registered (unique
//     constraint on users.email), database error otherwise
//
// Side Effects: Populates user.ID and user.CreatedAt with database-generated values
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, name, phone, date_of_birth, profile_picture, password_hash, is_active, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := database.DB.QueryRow(ctx, query,
		user.Email, user.Name, user.Phone, user.DateOfBirth,
		user.ProfilePicture, user.PasswordHash, user.IsActive, user.IsAdmin,
	).Scan(&user.ID, &user.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("create user %q: %w", user.Email, ErrDuplicateEmail)
	}
	return err
}

// UpdateProfile mutates the mutable profile fields of an account.
// Nil form fields are left unchanged via COALESCE; the date of birth is
// cleared when the form carries an explicit null date.
//
// Parameters:
//   - ctx: Context for cancellation and timeout control
//   - userID: Account to update
//   - name, phone: New values, nil to keep current
//   - dateOfBirth: New value; pass clearDOB=true to null the column
//
// Returns:
//   - error: ErrUserNotFound if the account no longer exists
func (r *UserRepository) UpdateProfile(ctx context.Context, userID int, name, phone *string, dateOfBirth *time.Time, clearDOB bool) error {
	query := `
		UPDATE users
		SET name = COALESCE($2, name),
		    phone = COALESCE($3, phone),
		    date_of_birth = CASE WHEN $5 THEN NULL ELSE COALESCE($4, date_of_birth) END
		WHERE id = $1
	`

	tag, err := database.DB.Exec(ctx, query, userID, name, phone, dateOfBirth, clearDOB)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetProfilePicture stores the storage key of the account's profile image.
// Pass nil to remove the picture reference.
func (r *UserRepository) SetProfilePicture(ctx context.Context, userID int, key *string) error {
	query := `UPDATE users SET profile_picture = $2 WHERE id = $1`

	tag, err := database.DB.Exec(ctx, query, userID, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetActive toggles the is_active flag. Inactive accounts are rejected by
// the credentials backend.
func (r *UserRepository) SetActive(ctx context.Context, userID int, active bool) error {
	query := `UPDATE users SET is_active = $2 WHERE id = $1`

	tag, err := database.DB.Exec(ctx, query, userID, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes a user from the database by ID.
// This is a hard delete - user data is permanently removed from the system.
//
// Database: ON DELETE CASCADE will automatically remove related:
//   - user_permissions (user_id foreign key)
//   - user_groups (user_id foreign key)
func (r *UserRepository) Delete(ctx context.Context, userID int) error {
	query := `DELETE FROM users WHERE id = $1`
	_, err := database.DB.Exec(ctx, query, userID)
	return err
}
