package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/careerhub/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	ErrorCodeInvalidCredentials  = "invalid_credentials"
	ErrorCodeMFARequired         = "mfa_required"
	ErrorCodeMFAInvalid          = "mfa_invalid"
	ErrorCodeRecoveryCodeInvalid = "recovery_code_invalid"
	ErrorCodeRefreshInvalid      = "refresh_invalid"
	ErrorCodeRefreshExpired      = "refresh_expired"
	ErrorCodeStoreUnavailable    = "store_unavailable"
	ErrorCodeMFAAlreadyEnabled   = "mfa_already_enabled"
	ErrorCodeMFANotEnabled       = "mfa_not_enabled"
	ErrorCodeSessionNotFound     = "session_not_found"
	ErrorCodeEmailTaken          = "email_taken"
	ErrorCodeInvalidRequest      = "invalid_request"
	ErrorCodeInvalidToken        = "invalid_token"
	ErrorCodeRateLimited         = "rate_limit_exceeded"
	ErrorCodeServerError         = "server_error"
)

// MFA methods accepted at login.
const (
	MFAMethodTOTP         = "totp"
	MFAMethodRecoveryCode = "recovery_code"
)

// ============================================================================
// APIError
// ============================================================================

// APIError is an error response from the service. It is used both by the
// server (to write the response) and by the client (to report it).
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is a stable machine readable code such as "mfa_required"
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description,omitempty"`

	// MFAMethods lists the accepted second factors for "mfa_required"
	MFAMethods []string `json:"mfa_methods,omitempty"`

	// RetryAfter is the suggested wait in seconds for 429 and 503
	RetryAfter int `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches another *APIError with the same code, so the predefined
// errors below work with errors.Is.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// Retryable reports whether the same request may succeed later.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusServiceUnavailable || e.StatusCode == http.StatusTooManyRequests
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	if e.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(e.RetryAfter))
	}
	httpx.WriteJSON(w, e.StatusCode, ErrorResponse{
		Error:            e.Code,
		ErrorDescription: e.Description,
		MFAMethods:       e.MFAMethods,
	})
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	// ErrInvalidRequest is returned for malformed bodies and missing fields.
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrInvalidToken is returned when the access token is missing, invalid or expired.
	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the access token is missing, invalid or expired",
	}

	// ErrMFARequired is returned by login for MFA accounts without a second factor.
	ErrMFARequired = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeMFARequired,
		Description: "a second factor is required",
		MFAMethods:  []string{MFAMethodTOTP, MFAMethodRecoveryCode},
	}

	// ErrInvalidCredentials covers unknown emails and wrong passwords alike.
	ErrInvalidCredentials = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidCredentials,
	}

	ErrMFAInvalid          = &APIError{StatusCode: http.StatusUnauthorized, Code: ErrorCodeMFAInvalid}
	ErrRecoveryCodeInvalid = &APIError{StatusCode: http.StatusUnauthorized, Code: ErrorCodeRecoveryCodeInvalid}
	ErrRefreshInvalid      = &APIError{StatusCode: http.StatusUnauthorized, Code: ErrorCodeRefreshInvalid}
	ErrRefreshExpired      = &APIError{StatusCode: http.StatusUnauthorized, Code: ErrorCodeRefreshExpired}
	ErrMFAAlreadyEnabled   = &APIError{StatusCode: http.StatusConflict, Code: ErrorCodeMFAAlreadyEnabled}
	ErrMFANotEnabled       = &APIError{StatusCode: http.StatusBadRequest, Code: ErrorCodeMFANotEnabled}
	ErrSessionNotFound     = &APIError{StatusCode: http.StatusNotFound, Code: ErrorCodeSessionNotFound}
	ErrEmailTaken          = &APIError{StatusCode: http.StatusConflict, Code: ErrorCodeEmailTaken}
	ErrRateLimited         = &APIError{StatusCode: http.StatusTooManyRequests, Code: ErrorCodeRateLimited}

	// ErrStoreUnavailable means the request may be retried.
	ErrStoreUnavailable = &APIError{
		StatusCode:  http.StatusServiceUnavailable,
		Code:        ErrorCodeStoreUnavailable,
		Description: "service temporarily unavailable",
		RetryAfter:  1,
	}

	// ErrServerError is returned when the server hit something unexpected.
	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// NewAPIError creates an APIError with a custom description.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{
		StatusCode:  statusCode,
		Code:        code,
		Description: description,
	}
}

// IsMFARequired reports whether err asks for a second factor.
func IsMFARequired(err error) bool {
	return errors.Is(err, ErrMFARequired)
}

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
			MFAMethods:  errResp.MFAMethods,
			RetryAfter:  retryAfter,
		}
	}

	// Fallback: create generic error from status code
	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		RetryAfter:  retryAfter,
	}
}
