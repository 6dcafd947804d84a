package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/careerhub/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRegisterLoginRefresh tests the complete flow:
// 1. Register a student
// 2. Login with email and password
// 3. Refresh the access token
// 4. Logout and check the refresh token is dead
func TestRegisterLoginRefresh(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	user := registerStudent(t, client, "refresh@uni.example")
	t.Logf("Registered user %s", user.ID)

	login, err := client.Login(t.Context(), authsdk.LoginRequest{Email: "refresh@uni.example", Password: testPassword})
	require.NoError(t, err)
	assertTokenResponse(t, login)
	require.Equal(t, user.ID, login.User.ID)

	refreshed, err := client.Refresh(t.Context(), login.RefreshToken)
	require.NoError(t, err)
	assertTokenResponse(t, refreshed)
	require.Equal(t, login.SessionID, refreshed.SessionID, "Refresh keeps the session")
	require.Equal(t, login.RefreshToken, refreshed.RefreshToken, "Rotation is off by default")

	t.Logf("Refresh successful for session %s", refreshed.SessionID)

	restored, err := client.AuthenticateWithRefreshToken(t.Context(), login.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, login.SessionID, restored.SessionID())

	require.NoError(t, client.Logout(t.Context(), login.RefreshToken, false))

	_, err = client.Refresh(t.Context(), login.RefreshToken)
	assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeRefreshInvalid)

	t.Logf("Refresh token rejected after logout")
}

// TestSessionAutoRefresh verifies the SDK session refreshes an expiring
// access token on its own.
func TestSessionAutoRefresh(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerStudent(t, client, "auto@uni.example")
	session := performLogin(t, client, "auto@uni.example")

	stale := client.NewSessionFromTokens("expired", session.RefreshToken(), 0)
	me, err := stale.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, "auto@uni.example", me.User.Email)
	require.NotEqual(t, "expired", stale.AccessToken())
}
