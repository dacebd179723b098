// Package middleware provides HTTP middleware functions for authentication and authorization.
// These middleware functions are used to protect routes and enforce permission checks.
package middleware

import (
	"strings"

	"github.com/avissapr/authbox/internal/repository"
	"github.com/avissapr/authbox/internal/security"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// AuthRequired is a middleware that ensures the user is authenticated.
// It checks for a valid session with a user_id, returning 401 if not found.
//
// Context Locals Set:
//   - user_id: The authenticated user's ID (int)
//   - user_email: The user's email (string)
//   - is_admin: Whether the user is an administrator (bool)
//
// Example:
//
//	admin := app.Group("/admin", middleware.AuthRequired(store))
func AuthRequired(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		userID := sess.Get("user_id")
		if userID == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		// Pass user information to context for handlers to use
		c.Locals("user_id", userID)
		c.Locals("user_email", sess.Get("user_email"))
		c.Locals("is_admin", sess.Get("is_admin"))

		return c.Next()
	}
}

// TokenRequired authenticates API clients carrying a bearer token issued by
// POST /api/token. Sets the same context locals as AuthRequired.
func TokenRequired(tokens *security.TokenGenerator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return fiber.NewError(fiber.StatusUnauthorized, "bearer token required")
		}

		userID, claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals("user_id", userID)
		c.Locals("is_admin", claims.IsAdmin)

		return c.Next()
	}
}

// AdminOnly is a middleware that ensures the user has admin privileges.
// This middleware MUST be used after AuthRequired or TokenRequired, as it
// depends on is_admin being set in the context.
//
// Security Note:
//
//	Always chain this after an authentication middleware so the flag is
//	populated before checking it.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		isAdmin, _ := c.Locals("is_admin").(bool)
		if !isAdmin {
			return fiber.NewError(fiber.StatusForbidden, "admin only")
		}

		return c.Next()
	}
}

// RequirePermission ensures the authenticated user directly holds the given
// permission. Group-held permissions do not satisfy the check; the two
// grant relations are independent.
//
// Must be chained after AuthRequired or TokenRequired.
func RequirePermission(perms *repository.PermissionRepository, codename string, logger *security.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("user_id").(int)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		held, err := perms.UserHasPermission(c.Context(), userID, codename)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "permission check failed")
		}

		if !held {
			if logger != nil {
				email, _ := c.Locals("user_email").(string)
				logger.SecurityEvent(security.EventPermissionDenied, &userID, email,
					c.IP(), c.Get("User-Agent"),
					map[string]interface{}{"codename": codename, "path": c.Path()})
			}
			return fiber.NewError(fiber.StatusForbidden, "missing permission: "+codename)
		}

		return c.Next()
	}
}
