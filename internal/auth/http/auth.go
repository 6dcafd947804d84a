package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/careerhub/internal/auth/domain"
	"github.com/aussiebroadwan/careerhub/internal/auth/service"
	"github.com/aussiebroadwan/careerhub/pkg/authsdk"
	"github.com/aussiebroadwan/careerhub/pkg/httpx"
)

// AuthHandler serves registration, login, refresh and logout.
type AuthHandler struct {
	AuthService *service.AuthService
	UserService *service.UserService
	Cookies     CookieConfig
}

func userResponse(u domain.User) authsdk.UserResponse {
	return authsdk.UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Role:       u.Role.String(),
		MFAEnabled: u.MFAEnabled(),
		CreatedAt:  u.CreatedAt,
	}
}

func tokenResponse(pair domain.TokenPair, sessionID string, accessTTL time.Duration) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		TokenType:        "Bearer",
		ExpiresIn:        int(accessTTL / time.Second),
		RefreshExpiresAt: pair.RefreshExpiresAt,
		SessionID:        sessionID,
	}
}

// HandleRegister handles POST /auth/register
//
//	@Summary		Create an account
//	@Description	Registers a student or company account. Professors and admins are provisioned separately.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"email, password and optional role"
//	@Success		201		{object}	authsdk.UserResponse	"The new account"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Invalid email, password or role"
//	@Failure		409		{object}	authsdk.ErrorResponse	"Email already registered"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limit exceeded"
//	@Failure		503		{object}	authsdk.ErrorResponse	"Store unavailable"
//	@Router			/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	user, err := h.AuthService.Register(r.Context(), req.Email, req.Password, domain.Role(req.Role))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, userResponse(user))
}

// HandleLogin handles POST /login
//
//	@Summary		Sign in
//	@Description	Verifies the password and, for MFA accounts, exactly one of totp_code or recovery_code.
//	@Description	On success the tokens are returned and set as HttpOnly cookies, and the device is bound to a session.
//	@Description	A fourth device signs out the oldest one.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials and optional second factor"
//	@Success		200		{object}	authsdk.TokenResponse	"Token pair and user"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed request"
//	@Failure		401		{object}	authsdk.ErrorResponse	"invalid_credentials, mfa_required, mfa_invalid or recovery_code_invalid"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limit exceeded"
//	@Failure		503		{object}	authsdk.ErrorResponse	"Store unavailable"
//	@Router			/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	res, err := h.AuthService.Login(r.Context(), service.LoginRequest{
		Email:        req.Email,
		Password:     req.Password,
		TOTPCode:     req.TOTPCode,
		RecoveryCode: req.RecoveryCode,
		Meta:         requestMeta(r),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	accessTTL, refreshTTL := h.AuthService.TokenTTLs()
	h.Cookies.setAccess(w, res.Tokens.AccessToken, accessTTL)
	h.Cookies.setRefresh(w, res.Tokens.RefreshToken, refreshTTL)

	body := tokenResponse(res.Tokens, res.Session.ID, accessTTL)
	body.MFAMethod = string(res.MFAMethod)
	user := userResponse(res.User)
	body.User = &user
	httpx.WriteJSON(w, http.StatusOK, body)
}

// HandleRefresh handles POST /auth/refresh
//
//	@Summary		Refresh the access token
//	@Description	Takes the refresh token from the body or the refresh_token cookie and returns a new access token.
//	@Description	The refresh token stays the same unless rotation is enabled.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	false	"Refresh token (optional when the cookie is sent)"
//	@Success		200		{object}	authsdk.TokenResponse	"New access token"
//	@Failure		401		{object}	authsdk.ErrorResponse	"refresh_invalid or refresh_expired"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limit exceeded"
//	@Failure		503		{object}	authsdk.ErrorResponse	"Store unavailable"
//	@Router			/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		writeDecodeError(w, r, err)
		return
	}

	raw := refreshToken(r, req.RefreshToken)
	if raw == "" {
		authsdk.NewAPIError(http.StatusUnauthorized, authsdk.ErrorCodeRefreshInvalid, "refresh token is required").WriteError(w)
		return
	}

	res, err := h.AuthService.Refresh(r.Context(), raw)
	if err != nil {
		if k := service.KindOf(err); k == service.KindRefreshInvalid || k == service.KindRefreshExpired {
			h.Cookies.clear(w)
		}
		writeServiceError(w, r, err)
		return
	}

	accessTTL, refreshTTL := h.AuthService.TokenTTLs()
	h.Cookies.setAccess(w, res.Tokens.AccessToken, accessTTL)
	if res.Rotated {
		h.Cookies.setRefresh(w, res.Tokens.RefreshToken, refreshTTL)
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(res.Tokens, res.SessionID, accessTTL))
}

// HandleLogout handles POST /auth/logout
//
//	@Summary		Sign out
//	@Description	Revokes the refresh token from the body or cookie and clears both cookies.
//	@Description	With end_session the device is also removed from the session list. Repeating a logout is not an error.
//	@Tags			Auth
//	@Accept			json
//	@Param			request	body	authsdk.LogoutRequest	false	"Refresh token (optional when the cookie is sent)"
//	@Success		204		"Signed out"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limit exceeded"
//	@Failure		503		{object}	authsdk.ErrorResponse	"Store unavailable"
//	@Router			/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LogoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		writeDecodeError(w, r, err)
		return
	}

	err := h.AuthService.Logout(r.Context(), refreshToken(r, req.RefreshToken), service.LogoutOptions{
		EndSession: req.EndSession,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.clear(w)
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe handles GET /auth/me
//
//	@Summary		Current account
//	@Description	Returns the account and session behind the access token.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.MeResponse		"Account and session id"
//	@Failure		400	{object}	authsdk.ErrorResponse	"Account no longer exists"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		503	{object}	authsdk.ErrorResponse	"Store unavailable"
//	@Router			/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := httpx.PrincipalFrom(r.Context())
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	user, err := h.UserService.GetUserByID(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MeResponse{
		User:      userResponse(user),
		SessionID: p.SessionID,
	})
}
