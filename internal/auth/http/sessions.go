package http

import (
	"net/http"

	"github.com/aussiebroadwan/careerhub/internal/auth/service"
	"github.com/aussiebroadwan/careerhub/pkg/authsdk"
	"github.com/aussiebroadwan/careerhub/pkg/httpx"
	"github.com/aussiebroadwan/careerhub/pkg/idx"
)

// SessionsHandler lists and revokes the caller's devices.
type SessionsHandler struct {
	AuthService *service.AuthService
	Cookies     CookieConfig
}

// HandleList handles GET /auth/sessions
//
//	@Summary		List signed-in devices
//	@Description	Most recently active first. The session of the calling access token has current=true.
//	@Tags			Sessions
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.ListSessionsResponse	"Sessions"
//	@Failure		401	{object}	authsdk.ErrorResponse			"Invalid or missing access token"
//	@Failure		503	{object}	authsdk.ErrorResponse			"Store unavailable"
//	@Router			/auth/sessions [get].
func (h *SessionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	p, ok := httpx.PrincipalFrom(r.Context())
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	sessions, err := h.AuthService.ListSessions(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := authsdk.ListSessionsResponse{Sessions: make([]authsdk.SessionInfo, 0, len(sessions))}
	for _, s := range sessions {
		out.Sessions = append(out.Sessions, authsdk.SessionInfo{
			ID:           s.ID,
			IPAddress:    s.IPAddress,
			UserAgent:    s.UserAgent,
			CreatedAt:    s.CreatedAt,
			LastActiveAt: s.LastActiveAt,
			Current:      s.ID == p.SessionID,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleRevoke handles DELETE /auth/sessions/{id}
//
//	@Summary		Sign a device out
//	@Description	Deletes the session and its refresh tokens. Access tokens already issued stay valid until they expire.
//	@Tags			Sessions
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Session ID"
//	@Success		204	"Session revoked"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		404	{object}	authsdk.ErrorResponse	"No such session for this account"
//	@Router			/auth/sessions/{id} [delete].
func (h *SessionsHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	p, ok := httpx.PrincipalFrom(r.Context())
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	// Session ids are ULIDs; anything else cannot exist.
	sid, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		authsdk.ErrSessionNotFound.WriteError(w)
		return
	}
	id := sid.String()

	if err := h.AuthService.RevokeSession(r.Context(), p.UserID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if id == p.SessionID {
		h.Cookies.clear(w)
	}
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleRevokeAll handles DELETE /auth/sessions/all
//
//	@Summary		Sign out everywhere
//	@Description	Deletes every session and refresh token of the account and clears the caller's cookies.
//	@Tags			Sessions
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.RevokeAllResponse	"Number of sessions ended"
//	@Failure		401	{object}	authsdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		503	{object}	authsdk.ErrorResponse		"Store unavailable"
//	@Router			/auth/sessions/all [delete].
func (h *SessionsHandler) HandleRevokeAll(w http.ResponseWriter, r *http.Request) {
	p, ok := httpx.PrincipalFrom(r.Context())
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	n, err := h.AuthService.RevokeAllSessions(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.clear(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.RevokeAllResponse{Revoked: n})
}
