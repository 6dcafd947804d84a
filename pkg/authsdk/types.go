package authsdk

import "time"

// ============================================================================
// Error Response Types
// ============================================================================

// ErrorResponse is the JSON body of every error returned by the service.
// Client code should use the APIError type from errors.go instead.
type ErrorResponse struct {
	// Error is the stable machine readable code, e.g. "mfa_required".
	Error string `json:"error"`

	// ErrorDescription is safe to show to the user.
	ErrorDescription string `json:"error_description,omitempty"`

	// MFAMethods is only set with "mfa_required".
	MFAMethods []string `json:"mfa_methods,omitempty"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks lists the dependencies /readyz looked at.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// ============================================================================
// Account Types
// ============================================================================

// RegisterRequest creates an account. Role defaults to "student"; only
// "student" and "company" may sign themselves up.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	MFAEnabled bool      `json:"mfa_enabled"`
	CreatedAt  time.Time `json:"created_at"`
}

// MeResponse describes the caller of GET /auth/me.
type MeResponse struct {
	User      UserResponse `json:"user"`
	SessionID string       `json:"session_id"`
}

// ============================================================================
// Token Types
// ============================================================================

// LoginRequest authenticates with a password. Accounts with MFA enabled
// must also send exactly one of TOTPCode or RecoveryCode.
type LoginRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	TOTPCode     string `json:"totp_code,omitempty"`
	RecoveryCode string `json:"recovery_code,omitempty"`
}

// TokenResponse is returned by login and refresh. The same tokens are also
// set as HttpOnly cookies.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int `json:"expires_in"`

	// RefreshExpiresAt is when the refresh token stops working.
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`

	SessionID string `json:"session_id"`

	// MFAMethod is "totp" or "recovery_code" when a second factor was used.
	MFAMethod string `json:"mfa_method,omitempty"`

	// User is only set on login.
	User *UserResponse `json:"user,omitempty"`
}

// RefreshRequest may be omitted when the refresh token cookie is sent.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// LogoutRequest may be omitted when the refresh token cookie is sent.
// EndSession also removes the device from the session list.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
	EndSession   bool   `json:"end_session,omitempty"`
}

// ============================================================================
// MFA Types
// ============================================================================

// MFAEnrollResponse carries a fresh TOTP secret. Nothing is stored until it
// is confirmed with POST /auth/mfa/verify.
type MFAEnrollResponse struct {
	Secret  string `json:"secret"`
	URI     string `json:"otpauth_uri"`
	QRCode  string `json:"qr_code"` // data:image/png;base64,...
	Issuer  string `json:"issuer"`
	Account string `json:"account"`
}

// MFAVerifyRequest confirms an enrollment.
type MFAVerifyRequest struct {
	Secret string `json:"secret"`
	Code   string `json:"code"`
}

// MFADisableRequest turns MFA off. Both factors are required.
type MFADisableRequest struct {
	Password string `json:"password"`
	Code     string `json:"code"`
}

// MFACodeRequest carries a current TOTP code.
type MFACodeRequest struct {
	Code string `json:"code"`
}

// RecoveryCodesResponse lists plaintext recovery codes. They are shown once.
type RecoveryCodesResponse struct {
	RecoveryCodes []string `json:"recovery_codes"`
}

// MFAStatusResponse summarises the caller's second factor.
type MFAStatusResponse struct {
	Enabled                bool       `json:"enabled"`
	EnrolledAt             *time.Time `json:"enrolled_at,omitempty"`
	RecoveryCodesRemaining int        `json:"recovery_codes_remaining"`
}

// ============================================================================
// Session Types
// ============================================================================

// SessionInfo is one signed-in device.
type SessionInfo struct {
	ID           string    `json:"id"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`

	// Current marks the session the request was made from.
	Current bool `json:"current"`
}

// ListSessionsResponse is returned by GET /auth/sessions, most recently
// active first.
type ListSessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}

// RevokeAllResponse reports how many sessions were ended.
type RevokeAllResponse struct {
	Revoked int64 `json:"revoked"`
}
