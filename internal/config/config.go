// Package config loads service configuration from the environment,
// optionally seeded from a .env file during development.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration of the service.
type Config struct {
	Port        string
	DatabaseURL string

	// AuthBackends is the ordered list of authentication strategy names
	// (see internal/backends). Default: email then credentials.
	AuthBackends []string

	// Session cookie hardening; disable SessionSecure only for local
	// plain-HTTP development.
	SessionSecure bool

	BcryptCost int

	JWTSecret     string
	JWTIssuer     string
	JWTTTLMinutes int
}

// Load reads environment variables, optionally from a .env file if present.
func Load() Config {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	return Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		AuthBackends:  getEnvList("AUTH_BACKENDS", []string{"email", "credentials"}),
		SessionSecure: getEnvBool("SESSION_SECURE", true),
		BcryptCost:    getEnvInt("BCRYPT_COST", 12),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change"),
		JWTIssuer:     getEnv("JWT_ISSUER", "authbox"),
		JWTTTLMinutes: getEnvInt("JWT_TTL_MINUTES", 60),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
