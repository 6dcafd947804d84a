package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/careerhub/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Login(t *testing.T) {
	t.Parallel()
	h := newHarness(t, harnessConfig{})
	ctx := context.Background()
	u, err := h.users.Register(ctx, "Company@Uni.Example", testPassword, domain.RoleCompany)
	require.NoError(t, err)

	t.Run("tokens carry user and role, one session is bound", func(t *testing.T) {
		before := h.sessionCount(t, u.ID)
		res, err := h.auth.Login(ctx, LoginRequest{Email: " company@uni.example ", Password: testPassword, Meta: device("laptop")})
		require.NoError(t, err)
		require.Equal(t, domain.MFAMethodNone, res.MFAMethod)
		require.Equal(t, before+1, h.sessionCount(t, u.ID))

		claims, err := h.tokens.VerifyAccessToken(res.Tokens.AccessToken)
		require.NoError(t, err)
		require.Equal(t, u.ID, claims.Subject)
		require.Equal(t, "company", claims.Role)
		require.Equal(t, res.Session.ID, claims.SID)

		require.True(t, h.refreshStored(t, res.Tokens.RefreshToken))
		require.True(t, res.Tokens.RefreshExpiresAt.After(res.Tokens.AccessExpiresAt))
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		_, errWrong := h.auth.Login(ctx, LoginRequest{Email: u.Email, Password: "not the password", Meta: device("x")})
		_, errUnknown := h.auth.Login(ctx, LoginRequest{Email: "ghost@uni.example", Password: testPassword, Meta: device("x")})
		_, errEmpty := h.auth.Login(ctx, LoginRequest{Meta: device("x")})

		for _, err := range []error{errWrong, errUnknown, errEmpty} {
			require.ErrorIs(t, err, ErrInvalidCredentials)
			var e *Error
			require.True(t, errors.As(err, &e))
			require.Equal(t, "invalid email or password", e.Message)
		}
	})

	t.Run("failures are observed", func(t *testing.T) {
		require.NotEmpty(t, h.events.Named(EventLoginFailed))
		require.NotEmpty(t, h.events.Named(EventLoginSucceeded))
	})
}

func TestAuthService_LoginWithMFA(t *testing.T) {
	t.Parallel()
	h := newHarness(t, harnessConfig{})
	ctx := context.Background()
	u := h.register(t, "mfa@uni.example")
	secret, codes := h.enableMFA(t, u.ID)

	t.Run("no code means MFA required and nothing issued", func(t *testing.T) {
		res, err := h.auth.Login(ctx, LoginRequest{Email: u.Email, Password: testPassword, Meta: device("laptop")})
		require.ErrorIs(t, err, ErrMFARequired)
		require.Empty(t, res.Tokens.AccessToken)
		require.Empty(t, res.Tokens.RefreshToken)
		require.Zero(t, h.sessionCount(t, u.ID))
	})

	t.Run("wrong password still hides MFA state", func(t *testing.T) {
		_, err := h.auth.Login(ctx, LoginRequest{Email: u.Email, Password: "wrong", TOTPCode: "000000", Meta: device("laptop")})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("bad TOTP", func(t *testing.T) {
		code := totpCode(t, secret, h.clock.Now().Add(-5*time.Minute))
		_, err := h.auth.Login(ctx, LoginRequest{Email: u.Email, Password: testPassword, TOTPCode: code, Meta: device("laptop")})
		require.ErrorIs(t, err, ErrMFAInvalid)
		require.Zero(t, h.sessionCount(t, u.ID))
	})

	t.Run("valid TOTP", func(t *testing.T) {
		code := totpCode(t, secret, h.clock.Now())
		res, err := h.auth.Login(ctx, LoginRequest{Email: u.Email, Password: testPassword, TOTPCode: code, Meta: device("laptop")})
		require.NoError(t, err)
		require.Equal(t, domain.MFAMethodTOTP, res.MFAMethod)
		require.NotEmpty(t, res.Tokens.AccessToken)
	})

	t.Run("recovery code works once", func(t *testing.T) {
		req := LoginRequest{Email: u.Email, Password: testPassword, RecoveryCode: codes[0], Meta: device("phone")}
		res, err := h.auth.Login(ctx, req)
		require.NoError(t, err)
		require.Equal(t, domain.MFAMethodRecoveryCode, res.MFAMethod)

		_, err = h.auth.Login(ctx, req)
		require.ErrorIs(t, err, ErrRecoveryCodeInvalid)

		var e *Error
		require.True(t, errors.As(err, &e))
		require.Equal(t, ErrMFAInvalid.Message, e.Message, "no enumeration signal")
	})

	t.Run("unknown recovery code", func(t *testing.T) {
		_, err := h.auth.Login(ctx, LoginRequest{Email: u.Email, Password: testPassword, RecoveryCode: "ZZZZ-ZZZZ", Meta: device("tablet")})
		require.ErrorIs(t, err, ErrRecoveryCodeInvalid)
	})
}

func TestAuthService_FailedLoginDoesNotBurnRecoveryCode(t *testing.T) {
	t.Parallel()
	h := newHarness(t, harnessConfig{})
	ctx := context.Background()
	u := h.register(t, "keep@uni.example")
	_, codes := h.enableMFA(t, u.ID)

	_, err := h.auth.Login(ctx, LoginRequest{Email: u.Email, Password: "wrong", RecoveryCode: codes[0], Meta: device("laptop")})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	remaining, err := h.recovery.Remaining(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, RecoveryCodeCount, remaining)
}

// Register, enable MFA, sign out everywhere, then come back with a
// recovery code.
func TestScenario_RecoveryCodeAfterLogoutEverywhere(t *testing.T) {
	t.Parallel()
	h := newHarness(t, harnessConfig{})
	ctx := context.Background()

	u, err := h.auth.Register(ctx, "scenario@uni.example", testPassword, domain.RoleStudent)
	require.NoError(t, err)

	first := h.login(t, u.Email, device("laptop"))
	secret, codes := h.enableMFA(t, u.ID)
	require.NotEmpty(t, secret)
	require.Len(t, codes, 10)

	_, err = h.auth.RevokeAllSessions(ctx, u.ID)
	require.NoError(t, err)
	require.Zero(t, h.sessionCount(t, u.ID))

	h.clock.Advance(time.Minute)
	res, err := h.auth.Login(ctx, LoginRequest{
		Email:        u.Email,
		Password:     testPassword,
		RecoveryCode: codes[3],
		Meta:         device("laptop"),
	})
	require.NoError(t, err)

	ok, err := h.recovery.VerifyAndBurn(ctx, u.ID, codes[3])
	require.NoError(t, err)
	require.False(t, ok, "recovery code should be used")

	remaining, err := h.recovery.Remaining(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 9, remaining)

	require.Equal(t, 1, h.sessionCount(t, u.ID))
	require.NotEqual(t, first.Session.ID, res.Session.ID)
	require.NotEqual(t, first.Tokens.RefreshToken, res.Tokens.RefreshToken)

	_, err = h.auth.Refresh(ctx, first.Tokens.RefreshToken)
	require.ErrorIs(t, err, ErrRefreshInvalid)
	_, err = h.auth.Refresh(ctx, res.Tokens.RefreshToken)
	require.NoError(t, err)
}

// At the cap, a login from a fourth device replaces the oldest of the three.
func TestScenario_FourthDevice(t *testing.T) {
	t.Parallel()
	h := newHarness(t, harnessConfig{MaxSessions: 3})
	ctx := context.Background()
	u := h.register(t, "devices@uni.example")

	phone := h.login(t, u.Email, device("phone"))
	h.clock.Advance(time.Hour)
	laptop := h.login(t, u.Email, device("laptop"))
	h.clock.Advance(time.Hour)
	tablet := h.login(t, u.Email, device("tablet"))
	h.clock.Advance(time.Hour)
	desktop := h.login(t, u.Email, device("desktop"))

	sessions, err := h.auth.ListSessions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 3)

	got := make([]string, 0, 3)
	for _, s := range sessions {
		got = append(got, s.ID)
	}
	require.ElementsMatch(t, []string{laptop.Session.ID, tablet.Session.ID, desktop.Session.ID}, got)
	require.NotContains(t, got, phone.Session.ID)
}

func TestAuthService_Refresh(t *testing.T) {
	t.Parallel()
	h := newHarness(t, harnessConfig{})
	ctx := context.Background()
	u := h.register(t, "touch@uni.example")
	res := h.login(t, u.Email, device("laptop"))

	h.clock.Advance(10 * time.Minute)
	out, err := h.auth.Refresh(ctx, res.Tokens.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, out.Tokens.AccessToken)

	sess, err := h.sessions.Get(ctx, res.Session.ID)
	require.NoError(t, err)
	require.True(t, sess.LastActiveAt.Equal(h.clock.Now()), "refresh should touch the session")
}

func TestAuthService_Logout(t *testing.T) {
	t.Parallel()
	h := newHarness(t, harnessConfig{})
	ctx := context.Background()
	u := h.register(t, "bye@uni.example")

	t.Run("revokes the refresh token and keeps the session", func(t *testing.T) {
		res := h.login(t, u.Email, device("laptop"))
		require.NoError(t, h.auth.Logout(ctx, res.Tokens.RefreshToken, LogoutOptions{}))

		_, err := h.auth.Refresh(ctx, res.Tokens.RefreshToken)
		require.ErrorIs(t, err, ErrRefreshInvalid)
		_, err = h.sessions.Get(ctx, res.Session.ID)
		require.NoError(t, err)
	})

	t.Run("end session", func(t *testing.T) {
		res := h.login(t, u.Email, device("phone"))
		require.NoError(t, h.auth.Logout(ctx, res.Tokens.RefreshToken, LogoutOptions{EndSession: true}))

		_, err := h.sessions.Get(ctx, res.Session.ID)
		require.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("idempotent", func(t *testing.T) {
		res := h.login(t, u.Email, device("tablet"))
		require.NoError(t, h.auth.Logout(ctx, res.Tokens.RefreshToken, LogoutOptions{EndSession: true}))
		require.NoError(t, h.auth.Logout(ctx, res.Tokens.RefreshToken, LogoutOptions{EndSession: true}))
		require.NoError(t, h.auth.Logout(ctx, "", LogoutOptions{}))
	})
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()
	h := newHarness(t, harnessConfig{})
	ctx := context.Background()

	u, err := h.auth.Register(ctx, "  New.Student@Uni.Example ", testPassword, "")
	require.NoError(t, err)
	require.Equal(t, "new.student@uni.example", u.Email)
	require.Equal(t, domain.RoleStudent, u.Role)
	require.NotEqual(t, testPassword, u.PasswordHash)

	cases := []struct {
		name     string
		email    string
		password string
		role     domain.Role
		want     error
	}{
		{"taken", "new.student@uni.example", testPassword, domain.RoleStudent, ErrEmailTaken},
		{"bad email", "not-an-email", testPassword, domain.RoleStudent, ErrInvalidRequest},
		{"display name", "Ada <ada@uni.example>", testPassword, domain.RoleStudent, ErrInvalidRequest},
		{"short password", "short@uni.example", "1234567", domain.RoleStudent, ErrInvalidRequest},
		{"long password", "long@uni.example", strings.Repeat("p", MaxPasswordLength+1), domain.RoleStudent, ErrInvalidRequest},
		{"admin", "admin@uni.example", testPassword, domain.RoleAdmin, ErrInvalidRequest},
		{"professor", "prof@uni.example", testPassword, domain.RoleProfessor, ErrInvalidRequest},
		{"unknown role", "odd@uni.example", testPassword, "janitor", ErrInvalidRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.auth.Register(ctx, tc.email, tc.password, tc.role)
			require.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("company", func(t *testing.T) {
		c, err := h.auth.Register(ctx, "hr@company.example", testPassword, domain.RoleCompany)
		require.NoError(t, err)
		require.Equal(t, domain.RoleCompany, c.Role)
	})
}
