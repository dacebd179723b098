// Package handlers implements HTTP request handlers for the AuthBox service.
// This file handles authentication operations including login, logout, token
// issuance, and session management.
package handlers

import (
	"github.com/avissapr/authbox/internal/models"
	"github.com/avissapr/authbox/internal/repository"
	"github.com/avissapr/authbox/internal/security"
	"github.com/avissapr/authbox/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// AuthHandler handles authentication-related HTTP requests.
// Manages login, logout, token issuance, and the current-account endpoint.
type AuthHandler struct {
	store          *session.Store
	authService    *services.AuthService
	tokens         *security.TokenGenerator
	auditRepo      *repository.AuditRepository
	securityLogger *security.Logger
	security       loginGuard
}

// loginGuard is the slice of SecurityMiddleware the handler needs; narrowed
// for testability.
type loginGuard interface {
	LoginRateLimit(email, ipAddress string) error
	RecordLoginFailure(email, ipAddress string)
	RecordLoginSuccess(email, ipAddress string, userID int)
}

// NewAuthHandler creates a new instance of AuthHandler.
func NewAuthHandler(store *session.Store, authService *services.AuthService, tokens *security.TokenGenerator, guard loginGuard, securityLogger *security.Logger) *AuthHandler {
	return &AuthHandler{
		store:          store,
		authService:    authService,
		tokens:         tokens,
		auditRepo:      repository.NewAuditRepository(),
		securityLogger: securityLogger,
		security:       guard,
	}
}

// Login authenticates user credentials and creates a session.
//
// Request Body: {"email": ..., "password": ...}
//
// Responses:
//   - 200 with the account view on success; session cookie is set
//   - 401 on a credential miss (no distinction between unknown email and
//     wrong password)
//   - 429 when rate limited or the account is locked
//
// Side Effects:
//   - Creates session with user_id, user_email, is_admin on success
//   - Logs authentication attempts to the security log
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var form models.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return respondError(c, fiber.StatusBadRequest, "malformed request body")
	}

	if err := h.security.LoginRateLimit(form.Email, c.IP()); err != nil {
		return respondError(c, fiber.StatusTooManyRequests, err.Error())
	}

	user, err := h.authService.Authenticate(c.Context(), form.Email, form.Password)
	if err != nil {
		h.securityLogger.Error("authentication backend failure", err)
		return respondError(c, fiber.StatusInternalServerError, "internal error")
	}

	if user == nil {
		// Credential miss: a normal result, reported uniformly
		h.security.RecordLoginFailure(form.Email, c.IP())
		return respondError(c, fiber.StatusUnauthorized, "invalid email or password")
	}

	sess, err := h.store.Get(c)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "session error")
	}

	sess.Set("user_id", user.ID)
	sess.Set("user_email", user.Email)
	sess.Set("is_admin", user.IsAdmin)

	if err := sess.Save(); err != nil {
		return respondError(c, fiber.StatusInternalServerError, "session error")
	}

	h.security.RecordLoginSuccess(user.Email, c.IP(), user.ID)

	return respond(c, fiber.StatusOK, user.View())
}

// Logout destroys the user session.
//
// Responses:
//   - 204 regardless of prior session state
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return c.SendStatus(fiber.StatusNoContent)
	}

	userID, _ := sess.Get("user_id").(int)
	userEmail, _ := sess.Get("user_email").(string)

	if userID != 0 {
		h.securityLogger.SecurityEvent(security.EventLogout, &userID, userEmail,
			c.IP(), c.Get("User-Agent"), nil)
	}

	if err := sess.Destroy(); err != nil {
		return respondError(c, fiber.StatusInternalServerError, "session error")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Me returns the authenticated account. The session only stores the account
// ID; the record is resolved through the backend chain so a deleted account
// yields 401 rather than stale data.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(int)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, "authentication required")
	}

	user, err := h.authService.GetUser(c.Context(), userID)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "internal error")
	}
	if user == nil {
		return respondError(c, fiber.StatusUnauthorized, "account no longer exists")
	}

	return respond(c, fiber.StatusOK, user.View())
}

// Token authenticates credentials and issues a bearer token for API
// clients. Same rate limiting and miss semantics as Login; no session is
// created.
//
// Response: {"access_token": ..., "token_type": "Bearer"}
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var form models.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return respondError(c, fiber.StatusBadRequest, "malformed request body")
	}

	if err := h.security.LoginRateLimit(form.Email, c.IP()); err != nil {
		return respondError(c, fiber.StatusTooManyRequests, err.Error())
	}

	user, err := h.authService.Authenticate(c.Context(), form.Email, form.Password)
	if err != nil {
		h.securityLogger.Error("authentication backend failure", err)
		return respondError(c, fiber.StatusInternalServerError, "internal error")
	}

	if user == nil {
		h.security.RecordLoginFailure(form.Email, c.IP())
		return respondError(c, fiber.StatusUnauthorized, "invalid email or password")
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "token generation failed")
	}

	h.security.RecordLoginSuccess(user.Email, c.IP(), user.ID)
	h.securityLogger.SecurityEvent(security.EventTokenIssued, &user.ID, user.Email,
		c.IP(), c.Get("User-Agent"), nil)

	return respond(c, fiber.StatusOK, fiber.Map{
		"access_token": token,
		"token_type":   "Bearer",
	})
}
