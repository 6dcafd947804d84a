package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/careerhub/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestInvalidCredentials verifies that a wrong password and an unknown email
// are rejected the same way.
func TestInvalidCredentials(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerStudent(t, client, "known@uni.example")

	_, wrongPassword := client.Login(t.Context(), authsdk.LoginRequest{Email: "known@uni.example", Password: "wrong-password"})
	_, unknownEmail := client.Login(t.Context(), authsdk.LoginRequest{Email: "nobody@uni.example", Password: testPassword})

	a := assertAPIError(t, wrongPassword, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)
	b := assertAPIError(t, unknownEmail, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)
	require.Equal(t, a.Description, b.Description, "Failures must not reveal which accounts exist")

	t.Logf("Invalid credentials correctly rejected with 401")
}

// TestInvalidAccessToken verifies that authenticated routes reject garbage
// and refresh tokens used as access tokens.
func TestInvalidAccessToken(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	invalid := client.NewSessionFromTokens("invalid-token-12345", "", 3600)
	_, err := invalid.Me(t.Context())
	assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)

	registerStudent(t, client, "typ@uni.example")
	session := performLogin(t, client, "typ@uni.example")

	swapped := client.NewSessionFromTokens(session.RefreshToken(), "", 3600)
	_, err = swapped.Me(t.Context())
	assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)

	t.Logf("Invalid tokens correctly rejected with 401")
}

// TestDuplicateRegistration verifies that emails are unique regardless of
// case.
func TestDuplicateRegistration(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerStudent(t, client, "dup@uni.example")

	_, err := client.Register(t.Context(), authsdk.RegisterRequest{Email: "DUP@uni.example", Password: testPassword})
	assertAPIError(t, err, http.StatusConflict, authsdk.ErrorCodeEmailTaken)
}
