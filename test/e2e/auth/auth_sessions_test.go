package auth_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/careerhub/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestDeviceLimit signs in from four devices and checks the oldest one is
// signed out.
func TestDeviceLimit(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	const email = "devices@uni.example"
	registerStudent(t, authsdk.NewSDKClient(baseURL), email)

	var sessions []*authsdk.Session
	for i := range 4 {
		sessions = append(sessions, performLogin(t, deviceClient(baseURL, fmt.Sprintf("device-%d", i)), email))
	}

	list, err := sessions[3].ListSessions(t.Context())
	require.NoError(t, err)
	require.Len(t, list.Sessions, 3)
	for _, s := range list.Sessions {
		require.NotEqual(t, sessions[0].SessionID(), s.ID, "Oldest session should be evicted")
	}

	_, err = authsdk.NewSDKClient(baseURL).Refresh(t.Context(), sessions[0].RefreshToken())
	assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeRefreshInvalid)

	t.Logf("Fourth device evicted session %s", sessions[0].SessionID())
}

// TestRevokeSessions covers revoking one device and then all of them.
func TestRevokeSessions(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	const email = "revoke@uni.example"
	registerStudent(t, authsdk.NewSDKClient(baseURL), email)

	laptop := performLogin(t, deviceClient(baseURL, "laptop"), email)
	phone := performLogin(t, deviceClient(baseURL, "phone"), email)
	tablet := performLogin(t, deviceClient(baseURL, "tablet"), email)

	require.NoError(t, laptop.RevokeSession(t.Context(), phone.SessionID()))
	require.Error(t, phone.Refresh(t.Context()), "Revoked device cannot refresh")

	out, err := laptop.RevokeAllSessions(t.Context())
	require.NoError(t, err)
	require.Equal(t, int64(2), out.Revoked)

	require.Error(t, tablet.Refresh(t.Context()))

	t.Logf("Revoked %d remaining sessions", out.Revoked)
}
