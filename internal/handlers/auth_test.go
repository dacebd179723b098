// Package handlers provides unit tests for the HTTP layer.
// Login tests run the real credentials backend against a mocked database so
// the whole request path is exercised: body parsing, rate limit hook,
// backend chain, session creation, and response shaping.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avissapr/authbox/internal/backends"
	"github.com/avissapr/authbox/internal/database"
	"github.com/avissapr/authbox/internal/repository"
	"github.com/avissapr/authbox/internal/security"
	"github.com/avissapr/authbox/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// stubGuard records rate limit interactions and optionally refuses logins.
type stubGuard struct {
	refuse    error
	failures  int
	successes int
}

func (g *stubGuard) LoginRateLimit(email, ip string) error { return g.refuse }
func (g *stubGuard) RecordLoginFailure(email, ip string)   { g.failures++ }
func (g *stubGuard) RecordLoginSuccess(email, ip string, userID int) {
	g.successes++
}

func setupMockDB(t *testing.T) (pgxmock.PgxPoolIface, func()) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	oldDB := database.DB
	database.DB = mock

	return mock, func() {
		database.DB = oldDB
		mock.Close()
	}
}

// newLoginApp builds a fiber app with POST /login wired to a real
// AuthHandler over the configured backend chain.
func newLoginApp(t *testing.T, guard *stubGuard) *fiber.App {
	t.Helper()

	users := repository.NewUserRepository()
	chain, err := backends.Build([]string{"email", "credentials"}, users)
	require.NoError(t, err)

	authService := services.NewAuthService(chain, bcrypt.MinCost)
	tokens := security.NewTokenGenerator("test-secret", "authbox", time.Hour)
	handler := NewAuthHandler(session.New(), authService, tokens, guard, security.NewLogger())

	app := fiber.New()
	app.Post("/login", handler.Login)
	app.Post("/api/token", handler.Token)
	return app
}

// userRow returns a single-account result set whose password hash matches
// the given plaintext.
func userRow(t *testing.T, id int, email, password string, active bool) *pgxmock.Rows {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return pgxmock.NewRows([]string{
		"id", "email", "name", "phone", "date_of_birth", "profile_picture",
		"password_hash", "is_active", "is_admin", "created_at",
	}).AddRow(id, email, "Test User", "", nil, nil, string(hash), active, false,
		time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))
}

// TestAuthHandler_Login verifies the login endpoint end to end.
//
// Test Scenarios:
//   - Valid credentials: 200, session cookie, view without password hash
//   - Wrong password: uniform 401, failure recorded
//   - Unknown email: identical 401 to the wrong-password case
//   - Rate limited: 429 before any database work
func TestAuthHandler_Login(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		mock, cleanup := setupMockDB(t)
		defer cleanup()

		guard := &stubGuard{}
		app := newLoginApp(t, guard)

		// The email backend delegates to credentials, which looks the
		// account up once.
		mock.ExpectQuery("SELECT(.+)FROM users WHERE email").
			WithArgs("normal@user.com").
			WillReturnRows(userRow(t, 1, "normal@user.com", "s3cret-pw", true))

		req := httptest.NewRequest("POST", "/login",
			strings.NewReader(`{"email":"normal@user.com","password":"s3cret-pw"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Cookies(), "Login must set a session cookie")
		assert.Equal(t, 1, guard.successes)

		body, _ := io.ReadAll(resp.Body)
		assert.NotContains(t, string(body), "password", "Response must not leak credentials")

		var view map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &view))
		assert.Equal(t, "normal@user.com", view["email"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wrong password", func(t *testing.T) {
		mock, cleanup := setupMockDB(t)
		defer cleanup()

		guard := &stubGuard{}
		app := newLoginApp(t, guard)

		mock.ExpectQuery("SELECT(.+)FROM users WHERE email").
			WithArgs("normal@user.com").
			WillReturnRows(userRow(t, 1, "normal@user.com", "s3cret-pw", true))

		req := httptest.NewRequest("POST", "/login",
			strings.NewReader(`{"email":"normal@user.com","password":"wrong"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, 1, guard.failures)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown email reports the same error", func(t *testing.T) {
		mock, cleanup := setupMockDB(t)
		defer cleanup()

		guard := &stubGuard{}
		app := newLoginApp(t, guard)

		mock.ExpectQuery("SELECT(.+)FROM users WHERE email").
			WithArgs("missing@user.com").
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "email", "name", "phone", "date_of_birth", "profile_picture",
				"password_hash", "is_active", "is_admin", "created_at",
			}))

		req := httptest.NewRequest("POST", "/login",
			strings.NewReader(`{"email":"missing@user.com","password":"whatever"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "invalid email or password",
			"Unknown email and wrong password must be indistinguishable")
	})

	t.Run("rate limited", func(t *testing.T) {
		_, cleanup := setupMockDB(t)
		defer cleanup()

		guard := &stubGuard{refuse: errors.New("too many login attempts")}
		app := newLoginApp(t, guard)

		req := httptest.NewRequest("POST", "/login",
			strings.NewReader(`{"email":"normal@user.com","password":"s3cret-pw"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	})
}

// TestAuthHandler_Token verifies bearer token issuance for API clients.
func TestAuthHandler_Token(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	guard := &stubGuard{}
	app := newLoginApp(t, guard)

	mock.ExpectQuery("SELECT(.+)FROM users WHERE email").
		WithArgs("normal@user.com").
		WillReturnRows(userRow(t, 1, "normal@user.com", "s3cret-pw", true))

	req := httptest.NewRequest("POST", "/api/token",
		strings.NewReader(`{"email":"normal@user.com","password":"s3cret-pw"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Bearer", body.TokenType)

	// The issued token must verify and carry the account ID
	tokens := security.NewTokenGenerator("test-secret", "authbox", time.Hour)
	userID, _, err := tokens.Verify(body.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, 1, userID)
}
