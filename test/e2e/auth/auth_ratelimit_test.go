package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/careerhub/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitLoginEndpoint verifies that /login is rate limited.
// This endpoint has strict limits (5 req/min) to slow down password guessing.
func TestRateLimitLoginEndpoint(t *testing.T) {
	baseURL, cleanup := setupAuthContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	var lastErr error
	for i := range 6 {
		_, err := client.Login(t.Context(), authsdk.LoginRequest{Email: "nobody@uni.example", Password: "wrong-password"})
		if i < 5 {
			assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)
			continue
		}
		lastErr = err
	}

	apiErr := assertAPIError(t, lastErr, http.StatusTooManyRequests, authsdk.ErrorCodeRateLimited)
	require.True(t, apiErr.Retryable())
	require.Positive(t, apiErr.RetryAfter, "Retry-After should be set")

	t.Logf("Successfully rate limited after 5 requests to /login, retry after %ds", apiErr.RetryAfter)
}

// TestRateLimitRegisterEndpoint verifies that /auth/register shares the
// strict profile but not the bucket used by /login.
func TestRateLimitRegisterEndpoint(t *testing.T) {
	baseURL, cleanup := setupAuthContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	var lastErr error
	for range 6 {
		_, lastErr = client.Register(t.Context(), authsdk.RegisterRequest{Email: "not-an-email", Password: testPassword})
	}
	assertAPIError(t, lastErr, http.StatusTooManyRequests, authsdk.ErrorCodeRateLimited)

	_, err := client.Login(t.Context(), authsdk.LoginRequest{Email: "nobody@uni.example", Password: "wrong-password"})
	assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)
}

// TestRateLimitHealthEndpoints verifies health checks stay available under
// normal polling.
func TestRateLimitHealthEndpoints(t *testing.T) {
	baseURL, cleanup := setupAuthContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	for range 50 {
		health, err := client.GetLiveness(t.Context())
		assertHealthy(t, health, err)
	}
}
