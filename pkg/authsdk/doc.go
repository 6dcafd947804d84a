/*
Package authsdk provides a client SDK for the Careerhub authentication service.

# Overview

The package is organized around two types:

  - SDKClient: unauthenticated operations (register, login, refresh, logout, health)
  - Session: authenticated operations with automatic access token refresh

	client := authsdk.NewSDKClient("https://auth.example.com")

	health, err := client.GetLiveness(ctx)

	user, err := client.Register(ctx, authsdk.RegisterRequest{
		Email:    "ada@uni.example",
		Password: "correct horse battery",
	})

	session, err := client.AuthenticateWithPassword(ctx, "ada@uni.example", "correct horse battery")

# Multi-factor login

Accounts with MFA enabled get an "mfa_required" error from a password-only
login. Repeat the login with exactly one second factor:

	session, err := client.AuthenticateWithPassword(ctx, email, password)
	if authsdk.IsMFARequired(err) {
		session, err = client.Authenticate(ctx, authsdk.LoginRequest{
			Email:    email,
			Password: password,
			TOTPCode: code, // or RecoveryCode: "ABCD-EFGH"
		})
	}

A recovery code works once. Every failed second factor answers with the same
description so the response does not tell which factor was wrong.

# Automatic Token Refresh

Session methods call getValidToken internally, which refreshes the access
token 30 seconds before it expires. Refresh tokens are not rotated by default,
so the same refresh token keeps working until it expires, is revoked, or its
session is evicted by a newer login on another device.

# Errors

Every non-2xx response is returned as *APIError. Compare with errors.Is
against the predefined errors:

	if errors.Is(err, authsdk.ErrRefreshExpired) {
		// sign in again
	}

Errors with Retryable() true (503, 429) carry the server's Retry-After in
seconds.

# Thread Safety

Sessions are safe for concurrent use. Multiple goroutines can share a single
Session; only one of them performs a refresh when the access token expires.
*/
package authsdk
