// Package security provides centralized security configuration and utilities:
// hardening defaults, structured security logging, login rate limiting, and
// API token generation.
package security

import (
	"time"
)

// SecurityConfig holds all security-related configuration values.
// These values are tuned based on OWASP ASVS and NIST guidelines.
type SecurityConfig struct {
	// Secure password storage
	BcryptCost int // Cost factor for bcrypt hashing (recommended: 12)

	// Secure session management
	SessionTimeout    time.Duration // Session inactivity timeout
	SessionCookieName string        // Name of session cookie
	SessionSecure     bool          // Require HTTPS for session cookies
	SessionHTTPOnly   bool          // Prevent JavaScript access to session cookies
	SessionSameSite   string        // CSRF protection via SameSite attribute

	// Brute force protection
	LoginRateLimit          int           // Max login attempts per minute per IP
	AccountLockoutThreshold int           // Failed attempts before account lockout
	AccountLockoutDuration  time.Duration // How long account stays locked

	// Input limits
	MaxNameLength  int           // Maximum characters in display/group names
	MaxEmailLength int           // Maximum characters in an email address
	QueryTimeout   time.Duration // Per-request database budget

	// Security monitoring
	MonitoringInterval     time.Duration // How often to check for security events
	AlertThresholdFailures int           // Failed logins before alerting
}

// DefaultSecurityConfig returns security configuration with recommended defaults.
// These values comply with OWASP ASVS 4.0 and NIST SP 800-53 guidelines.
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		// Bcrypt cost 12 = 2^12 = 4096 iterations
		BcryptCost: 12,

		// Session configuration
		SessionTimeout:    8 * time.Hour,
		SessionCookieName: "authbox_session",
		SessionSecure:     true,
		SessionHTTPOnly:   true,
		SessionSameSite:   "Strict",

		// Brute force protection
		LoginRateLimit:          5,
		AccountLockoutThreshold: 10,
		AccountLockoutDuration:  30 * time.Minute,

		// Input limits
		MaxNameLength:  150,
		MaxEmailLength: 254,
		QueryTimeout:   30 * time.Second,

		// Security monitoring
		MonitoringInterval:     5 * time.Minute,
		AlertThresholdFailures: 5,
	}
}
