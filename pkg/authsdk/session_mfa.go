package authsdk

import (
	"context"
	"net/http"
)

// EnrollMFA starts TOTP enrollment. Confirm it with VerifyMFA.
func (s *Session) EnrollMFA(ctx context.Context) (*MFAEnrollResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/auth/mfa/enroll", nil)
	if err != nil {
		return nil, err
	}

	var enrollResp MFAEnrollResponse
	if err := decodeJSON(resp, &enrollResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &enrollResp, nil
}

// VerifyMFA confirms an enrollment with a code from the authenticator and
// enables MFA. The returned recovery codes are only shown once.
func (s *Session) VerifyMFA(ctx context.Context, secret, code string) (*RecoveryCodesResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/auth/mfa/verify", MFAVerifyRequest{
		Secret: secret,
		Code:   code,
	})
	if err != nil {
		return nil, err
	}

	var codes RecoveryCodesResponse
	if err := decodeJSON(resp, &codes, http.StatusOK); err != nil {
		return nil, err
	}
	return &codes, nil
}

// DisableMFA turns MFA off. Both the password and a current code are required.
func (s *Session) DisableMFA(ctx context.Context, password, code string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/auth/mfa/disable", MFADisableRequest{
		Password: password,
		Code:     code,
	})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// RegenerateRecoveryCodes replaces every recovery code with a new batch.
func (s *Session) RegenerateRecoveryCodes(ctx context.Context, code string) (*RecoveryCodesResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/auth/mfa/recovery-codes", MFACodeRequest{Code: code})
	if err != nil {
		return nil, err
	}

	var codes RecoveryCodesResponse
	if err := decodeJSON(resp, &codes, http.StatusOK); err != nil {
		return nil, err
	}
	return &codes, nil
}

// MFAStatus reports whether MFA is on and how many recovery codes are left.
func (s *Session) MFAStatus(ctx context.Context) (*MFAStatusResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/auth/mfa/status", nil)
	if err != nil {
		return nil, err
	}

	var status MFAStatusResponse
	if err := decodeJSON(resp, &status, http.StatusOK); err != nil {
		return nil, err
	}
	return &status, nil
}
