package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// ListSessions returns the caller's signed-in devices.
func (s *Session) ListSessions(ctx context.Context) (*ListSessionsResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/auth/sessions", nil)
	if err != nil {
		return nil, err
	}

	var list ListSessionsResponse
	if err := decodeJSON(resp, &list, http.StatusOK); err != nil {
		return nil, err
	}
	return &list, nil
}

// RevokeSession signs one of the caller's devices out.
func (s *Session) RevokeSession(ctx context.Context, sessionID string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/auth/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// RevokeAllSessions signs the caller out everywhere, this Session included.
func (s *Session) RevokeAllSessions(ctx context.Context) (*RevokeAllResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/auth/sessions/all", nil)
	if err != nil {
		return nil, err
	}

	var out RevokeAllResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.refreshToken = ""
	s.mu.Unlock()
	return &out, nil
}
