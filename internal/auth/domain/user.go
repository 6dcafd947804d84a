package domain

import (
	"strings"
	"time"
)

type User struct {
	ID            string
	Email         string // lower-cased, unique
	PasswordHash  string // argon2id PHC string
	Role          Role
	MFASecret     *string    // TOTP secret, sealed with the master key (nullable)
	MFAEnrolledAt *time.Time // set once MFA is enabled (nullable)
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MFAEnabled reports whether TOTP must be presented at login.
func (u User) MFAEnabled() bool {
	return u.MFAEnrolledAt != nil && u.MFASecret != nil
}

// NormalizeEmail trims and lower-cases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
