package domain

import "time"

// TokenPair is what a successful login or refresh hands back.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// RefreshToken is the stored record of an issued refresh token. Only the
// fingerprint of the signed token is kept.
type RefreshToken struct {
	ID        string
	UserID    string
	SessionID string
	TokenHash string // base64url SHA-256 of the signed JWT
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the record is no longer usable at now.
func (t RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
