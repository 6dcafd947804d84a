package authsdk

import (
	"context"
	"net/http"
)

// Register creates an account.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/register", req, "")
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusCreated); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a token pair.
func (c *SDKClient) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/login", req, "")
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokenResp, nil
}

// Refresh mints a new access token. RefreshToken in the response is the
// same token unless the server rotates refresh tokens.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/refresh", RefreshRequest{RefreshToken: refreshToken}, "")
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokenResp, nil
}

// Logout revokes a refresh token. It succeeds for tokens that are already
// revoked.
func (c *SDKClient) Logout(ctx context.Context, refreshToken string, endSession bool) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/logout", LogoutRequest{
		RefreshToken: refreshToken,
		EndSession:   endSession,
	}, "")
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
