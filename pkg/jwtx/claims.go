package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default lifetimes. Services may override them from configuration.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenType distinguishes access tokens from refresh tokens so one can never
// be replayed as the other, even if the keys were ever shared.
type TokenType string

const (
	TypeAccess  TokenType = "access"
	TypeRefresh TokenType = "refresh"
)

// Claims carried by both token types. Role is only set on access tokens.
type Claims struct {
	jwt.RegisteredClaims

	// Type is "access" or "refresh".
	Type TokenType `json:"typ"`

	// Role of the subject at issue time (student, professor, company, admin).
	Role string `json:"role,omitempty"`

	// SID is the session the token was minted for.
	SID string `json:"sid,omitempty"`
}

// NewAccessClaims builds claims for a short-lived access token.
func NewAccessClaims(subject, role, sid string, ttl time.Duration, issuer string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: registered(subject, ttl, issuer, now),
		Type:             TypeAccess,
		Role:             role,
		SID:              sid,
	}
}

// NewRefreshClaims builds claims for a refresh token. The random jti makes
// every refresh token unique, so two issued in the same second still hash
// to different fingerprints.
func NewRefreshClaims(subject, sid string, ttl time.Duration, issuer string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: registered(subject, ttl, issuer, now),
		Type:             TypeRefresh,
		SID:              sid,
	}
}

func registered(subject string, ttl time.Duration, issuer string, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        NewJTI(),
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateType checks the typ claim.
func (c *Claims) ValidateType(expected TokenType) error {
	if c.Type != expected {
		return ErrTokenType
	}
	return nil
}
