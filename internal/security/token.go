// Package security provides API token generation and verification.
// Tokens are HS256 JWTs for clients that cannot hold a session cookie.
package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/avissapr/authbox/internal/models"
)

// ErrInvalidToken is returned when a presented token fails verification.
var ErrInvalidToken = errors.New("invalid token")

// TokenClaims carries the registered claims plus the admin flag.
type TokenClaims struct {
	jwt.RegisteredClaims
	IsAdmin bool `json:"is_admin"`
}

// TokenGenerator issues and verifies API access tokens.
type TokenGenerator struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenGenerator creates a TokenGenerator.
func NewTokenGenerator(secret, issuer string, ttl time.Duration) *TokenGenerator {
	return &TokenGenerator{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// Generate issues a signed access token for the given account.
func (g *TokenGenerator) Generate(user *models.User) (string, error) {
	now := time.Now().UTC()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
		IsAdmin: user.IsAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}

// Verify parses and validates a token, returning the account ID it was
// issued for.
func (g *TokenGenerator) Verify(tokenString string) (int, *TokenClaims, error) {
	claims := &TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return g.secret, nil
	}, jwt.WithIssuer(g.issuer), jwt.WithExpirationRequired())

	if err != nil || !token.Valid {
		return 0, nil, ErrInvalidToken
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, nil, ErrInvalidToken
	}

	return userID, claims, nil
}
