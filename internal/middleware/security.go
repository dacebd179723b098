// Package middleware provides security middleware for the AuthBox service:
// request logging, security headers, login rate limiting, and lockout
// bookkeeping.
package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/avissapr/authbox/internal/security"
	"github.com/gofiber/fiber/v2"
)

// SecurityMiddleware provides centralized security functionality.
type SecurityMiddleware struct {
	logger         *security.Logger
	config         *security.SecurityConfig
	rateLimiter    *security.RateLimiter
	accountLockout *security.AccountLockout
}

// NewSecurityMiddleware creates a new security middleware instance.
func NewSecurityMiddleware(logger *security.Logger, config *security.SecurityConfig) *SecurityMiddleware {
	return &SecurityMiddleware{
		logger:         logger,
		config:         config,
		rateLimiter:    security.NewRateLimiter(config.LoginRateLimit, time.Minute/time.Duration(config.LoginRateLimit)),
		accountLockout: security.NewAccountLockout(config.AccountLockoutThreshold, config.AccountLockoutDuration),
	}
}

// Stop releases background resources (the rate limiter's cleanup goroutine).
func (sm *SecurityMiddleware) Stop() {
	sm.rateLimiter.Stop()
}

// LoginRateLimit checks whether a login attempt may proceed. Returns an
// error describing the refusal, nil when the attempt is allowed.
func (sm *SecurityMiddleware) LoginRateLimit(email, ipAddress string) error {
	if !sm.rateLimiter.Allow(ipAddress) {
		sm.logger.SecurityEvent(security.EventRateLimitExceeded, nil, email, ipAddress, "",
			map[string]interface{}{"endpoint": "login"})
		return fmt.Errorf("too many login attempts")
	}

	if sm.accountLockout.IsLocked(email) {
		sm.logger.SecurityEvent(security.EventAccountLocked, nil, email, ipAddress, "",
			map[string]interface{}{"endpoint": "login"})
		return fmt.Errorf("account temporarily locked")
	}

	return nil
}

// RecordLoginFailure registers a failed attempt against the account.
func (sm *SecurityMiddleware) RecordLoginFailure(email, ipAddress string) {
	locked := sm.accountLockout.RecordFailedAttempt(email)

	sm.logger.SecurityEvent(security.EventLoginFailure, nil, email, ipAddress, "",
		map[string]interface{}{"locked": locked})
}

// RecordLoginSuccess clears failure bookkeeping for the account.
func (sm *SecurityMiddleware) RecordLoginSuccess(email, ipAddress string, userID int) {
	sm.accountLockout.ResetAttempts(email)
	sm.rateLimiter.Reset(ipAddress)

	sm.logger.SecurityEvent(security.EventLoginSuccess, &userID, email, ipAddress, "", nil)
}

// RequestLogger logs every request as a structured JSON entry.
func (sm *SecurityMiddleware) RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// A returned error has not been through the error handler yet, so
		// the response still carries the pre-error status. Log the status
		// the error handler will produce.
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			}
		}

		sm.logger.HTTPRequest(
			c.Method(),
			c.Path(),
			status,
			time.Since(start).Milliseconds(),
			c.IP(),
			c.Get("User-Agent"),
		)

		return err
	}
}

// SecureHeaders sets standard security response headers.
func (sm *SecurityMiddleware) SecureHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "no-referrer")
		c.Set("Cache-Control", "no-store")
		if sm.config.SessionSecure {
			c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		return c.Next()
	}
}
