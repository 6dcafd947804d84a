package domain

import "time"

// MFAMethod names the second factor used at login.
type MFAMethod string

const (
	MFAMethodNone         MFAMethod = ""
	MFAMethodTOTP         MFAMethod = "totp"
	MFAMethodRecoveryCode MFAMethod = "recovery_code"
)

// MFAEnrollment is a freshly generated TOTP secret awaiting confirmation.
// Nothing is persisted until the user proves possession with a code.
type MFAEnrollment struct {
	Secret  string // base32, no padding
	URI     string // otpauth://totp/...
	QRCode  string // data:image/png;base64,...
	Issuer  string
	Account string
}

// MFAStatus summarises a user's second factor.
type MFAStatus struct {
	Enabled                bool
	EnrolledAt             *time.Time
	RecoveryCodesRemaining int
}

// RecoveryCode is a single-use fallback code. Only a keyed hash is stored.
type RecoveryCode struct {
	ID        string
	UserID    string
	CodeHash  string
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (c RecoveryCode) Used() bool { return c.UsedAt != nil }
