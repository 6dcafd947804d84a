package http

import (
	"net/http"

	"github.com/aussiebroadwan/careerhub/internal/auth/service"
	"github.com/aussiebroadwan/careerhub/pkg/authsdk"
	"github.com/aussiebroadwan/careerhub/pkg/httpx"
)

// MFAHandler handles all MFA-related endpoints.
type MFAHandler struct {
	MFAService *service.MFAService
}

func principalID(w http.ResponseWriter, r *http.Request) (string, bool) {
	p, ok := httpx.PrincipalFrom(r.Context())
	if !ok || p.UserID == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return "", false
	}
	return p.UserID, true
}

// HandleEnroll handles POST /auth/mfa/enroll
//
//	@Summary		Start TOTP enrollment
//	@Description	Generates a TOTP secret with its otpauth URI and a QR code. Nothing is stored until /auth/mfa/verify.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.MFAEnrollResponse	"TOTP secret and QR code"
//	@Failure		401	{object}	authsdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		409	{object}	authsdk.ErrorResponse		"MFA already enabled"
//	@Failure		503	{object}	authsdk.ErrorResponse		"Store unavailable"
//	@Router			/auth/mfa/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	userID, ok := principalID(w, r)
	if !ok {
		return
	}

	enrollment, err := h.MFAService.Enroll(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MFAEnrollResponse{
		Secret:  enrollment.Secret,
		URI:     enrollment.URI,
		QRCode:  enrollment.QRCode,
		Issuer:  enrollment.Issuer,
		Account: enrollment.Account,
	})
}

// HandleVerify handles POST /auth/mfa/verify
//
//	@Summary		Confirm TOTP enrollment
//	@Description	Checks a code against the enrolled secret, enables MFA and returns ten recovery codes.
//	@Description	The recovery codes are shown only once.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.MFAVerifyRequest		true	"Secret from enroll and a current code"
//	@Success		200		{object}	authsdk.RecoveryCodesResponse	"Recovery codes"
//	@Failure		400		{object}	authsdk.ErrorResponse			"Missing fields"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Invalid code or access token"
//	@Failure		409		{object}	authsdk.ErrorResponse			"MFA already enabled"
//	@Failure		429		{object}	authsdk.ErrorResponse			"Rate limit exceeded"
//	@Router			/auth/mfa/verify [post].
func (h *MFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	userID, ok := principalID(w, r)
	if !ok {
		return
	}

	var req authsdk.MFAVerifyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	codes, err := h.MFAService.Enable(r.Context(), userID, req.Secret, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.RecoveryCodesResponse{RecoveryCodes: codes})
}

// HandleDisable handles POST /auth/mfa/disable
//
//	@Summary		Disable MFA
//	@Description	Requires the account password and a current TOTP code. Remaining recovery codes are deleted.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	authsdk.MFADisableRequest	true	"Password and current code"
//	@Success		204		"MFA disabled"
//	@Failure		400		{object}	authsdk.ErrorResponse	"MFA not enabled"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Wrong password or code"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limit exceeded"
//	@Router			/auth/mfa/disable [post].
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	userID, ok := principalID(w, r)
	if !ok {
		return
	}

	var req authsdk.MFADisableRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	if err := h.MFAService.Disable(r.Context(), userID, req.Password, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleRegenerateRecoveryCodes handles POST /auth/mfa/recovery-codes
//
//	@Summary		Replace recovery codes
//	@Description	Invalidates every existing recovery code and returns a new batch of ten.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.MFACodeRequest			true	"Current TOTP code"
//	@Success		200		{object}	authsdk.RecoveryCodesResponse	"New recovery codes"
//	@Failure		400		{object}	authsdk.ErrorResponse			"MFA not enabled"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Invalid code or access token"
//	@Router			/auth/mfa/recovery-codes [post].
func (h *MFAHandler) HandleRegenerateRecoveryCodes(w http.ResponseWriter, r *http.Request) {
	userID, ok := principalID(w, r)
	if !ok {
		return
	}

	var req authsdk.MFACodeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	codes, err := h.MFAService.RegenerateRecoveryCodes(r.Context(), userID, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.RecoveryCodesResponse{RecoveryCodes: codes})
}

// HandleStatus handles GET /auth/mfa/status
//
//	@Summary		MFA status
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.MFAStatusResponse	"Enabled flag and remaining recovery codes"
//	@Failure		401	{object}	authsdk.ErrorResponse		"Invalid or missing access token"
//	@Router			/auth/mfa/status [get].
func (h *MFAHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := principalID(w, r)
	if !ok {
		return
	}

	status, err := h.MFAService.Status(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MFAStatusResponse{
		Enabled:                status.Enabled,
		EnrolledAt:             status.EnrolledAt,
		RecoveryCodesRemaining: status.RecoveryCodesRemaining,
	})
}
