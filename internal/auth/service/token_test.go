package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/careerhub/internal/auth/domain"
	"github.com/aussiebroadwan/careerhub/pkg/cryptox"
	"github.com/aussiebroadwan/careerhub/pkg/idx"
	"github.com/aussiebroadwan/careerhub/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestTokenService_AccessToken(t *testing.T) {
	t.Parallel()
	h := newHarness(t, harnessConfig{})
	u := domain.User{ID: idx.New().String(), Role: domain.RoleCompany}

	token, exp, err := h.tokens.IssueAccessToken(u, "sess-1")
	require.NoError(t, err)
	require.True(t, exp.Equal(testEpoch.Add(jwtx.DefaultAccessTokenTTL)))

	claims, err := h.tokens.VerifyAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.Subject)
	require.Equal(t, "company", claims.Role)
	require.Equal(t, "sess-1", claims.SID)
	require.Equal(t, jwtx.TypeAccess, claims.Type)

	t.Run("expires", func(t *testing.T) {
		h.clock.Advance(jwtx.DefaultAccessTokenTTL + time.Second)
		_, err := h.tokens.VerifyAccessToken(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})
}

func TestTokenService_Refresh(t *testing.T) {
	t.Parallel()
	h := newHarness(t, harnessConfig{})
	ctx := context.Background()
	u := h.register(t, "refresh@uni.example")
	res := h.login(t, u.Email, device("laptop"))

	t.Run("mints a new access token without rotating", func(t *testing.T) {
		h.clock.Advance(time.Minute)
		out, err := h.tokens.Refresh(ctx, res.Tokens.RefreshToken)
		require.NoError(t, err)
		require.False(t, out.Rotated)
		require.Equal(t, res.Tokens.RefreshToken, out.Tokens.RefreshToken)
		require.Equal(t, res.Session.ID, out.SessionID)
		require.Equal(t, u.ID, out.User.ID)

		claims, err := h.tokens.VerifyAccessToken(out.Tokens.AccessToken)
		require.NoError(t, err)
		require.Equal(t, u.ID, claims.Subject)
		require.Equal(t, res.Session.ID, claims.SID)

		// Sliding refresh: the same token keeps working.
		_, err = h.tokens.Refresh(ctx, res.Tokens.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("garbage is invalid", func(t *testing.T) {
		_, err := h.tokens.Refresh(ctx, "not.a.jwt")
		require.ErrorIs(t, err, ErrRefreshInvalid)
	})

	t.Run("tampered token is invalid", func(t *testing.T) {
		_, err := h.tokens.Refresh(ctx, tamper(res.Tokens.RefreshToken))
		require.ErrorIs(t, err, ErrRefreshInvalid)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := h.tokens.Refresh(ctx, res.Tokens.AccessToken)
		require.ErrorIs(t, err, ErrRefreshInvalid)
	})

	t.Run("deleted row is invalid", func(t *testing.T) {
		other := h.login(t, u.Email, device("phone"))
		require.NoError(t, h.tokens.Revoke(ctx, other.Tokens.RefreshToken))

		out, err := h.tokens.Refresh(ctx, other.Tokens.RefreshToken)
		require.ErrorIs(t, err, ErrRefreshInvalid)
		require.Empty(t, out.Tokens.AccessToken)
	})

	t.Run("revoke is idempotent", func(t *testing.T) {
		require.NoError(t, h.tokens.Revoke(ctx, res.Tokens.RefreshToken))
		require.NoError(t, h.tokens.Revoke(ctx, res.Tokens.RefreshToken))
		require.NoError(t, h.tokens.Revoke(ctx, "never-issued"))
		require.NoError(t, h.tokens.Revoke(ctx, ""))
	})
}

func TestTokenService_RefreshExpiry(t *testing.T) {
	t.Parallel()

	t.Run("signed expiry", func(t *testing.T) {
		h := newHarness(t, harnessConfig{})
		u := h.register(t, "signed@uni.example")
		res := h.login(t, u.Email, device("laptop"))

		h.clock.Advance(jwtx.DefaultRefreshTokenTTL + time.Minute)
		_, err := h.tokens.Refresh(context.Background(), res.Tokens.RefreshToken)
		require.ErrorIs(t, err, ErrRefreshExpired)
	})

	t.Run("stored expiry wins", func(t *testing.T) {
		h := newHarness(t, harnessConfig{})
		ctx := context.Background()
		u := h.register(t, "stored@uni.example")
		sess, err := h.sessions.Open(ctx, u.ID, device("laptop"))
		require.NoError(t, err)

		// Signed for a week, stored for an hour.
		now := h.clock.Now()
		raw, err := h.tokens.RefreshKey.Sign(jwtx.NewRefreshClaims(u.ID, sess.ID, jwtx.DefaultRefreshTokenTTL, testIssuer, now))
		require.NoError(t, err)
		require.NoError(t, h.store.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
			ID:        idx.New().String(),
			UserID:    u.ID,
			SessionID: sess.ID,
			TokenHash: cryptox.FingerprintToken(raw),
			ExpiresAt: now.Add(time.Hour),
			CreatedAt: now,
		}))

		h.clock.Advance(2 * time.Hour)
		_, err = h.tokens.Refresh(ctx, raw)
		require.ErrorIs(t, err, ErrRefreshExpired)
		require.False(t, h.refreshStored(t, raw), "expired row should be deleted")

		_, err = h.tokens.Refresh(ctx, raw)
		require.ErrorIs(t, err, ErrRefreshInvalid)
	})

	t.Run("mismatched record", func(t *testing.T) {
		h := newHarness(t, harnessConfig{})
		ctx := context.Background()
		u := h.register(t, "mismatch@uni.example")
		sess, err := h.sessions.Open(ctx, u.ID, device("laptop"))
		require.NoError(t, err)

		now := h.clock.Now()
		raw, err := h.tokens.RefreshKey.Sign(jwtx.NewRefreshClaims("someone-else", sess.ID, time.Hour, testIssuer, now))
		require.NoError(t, err)
		require.NoError(t, h.store.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
			ID:        idx.New().String(),
			UserID:    u.ID,
			SessionID: sess.ID,
			TokenHash: cryptox.FingerprintToken(raw),
			ExpiresAt: now.Add(time.Hour),
			CreatedAt: now,
		}))

		_, err = h.tokens.Refresh(ctx, raw)
		require.ErrorIs(t, err, ErrRefreshInvalid)
	})
}

func TestTokenService_Rotation(t *testing.T) {
	t.Parallel()
	h := newHarness(t, harnessConfig{RotateRefresh: true})
	ctx := context.Background()
	u := h.register(t, "rotate@uni.example")
	res := h.login(t, u.Email, device("laptop"))

	out, err := h.tokens.Refresh(ctx, res.Tokens.RefreshToken)
	require.NoError(t, err)
	require.True(t, out.Rotated)
	require.NotEqual(t, res.Tokens.RefreshToken, out.Tokens.RefreshToken)
	require.Equal(t, res.Session.ID, out.SessionID)

	_, err = h.tokens.Refresh(ctx, res.Tokens.RefreshToken)
	require.ErrorIs(t, err, ErrRefreshInvalid, "replayed token must fail")

	_, err = h.tokens.Refresh(ctx, out.Tokens.RefreshToken)
	require.NoError(t, err)
}

func TestTokenService_ConcurrentRotation(t *testing.T) {
	t.Parallel()
	h := newHarness(t, harnessConfig{RotateRefresh: true, File: true})
	ctx := context.Background()
	u := h.register(t, "rotate-race@uni.example")
	res := h.login(t, u.Email, device("laptop"))

	const workers = 6
	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.tokens.Refresh(ctx, res.Tokens.RefreshToken); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), wins.Load())
}

// tamper changes the first character of the signature.
func tamper(token string) string {
	i := strings.LastIndex(token, ".") + 1
	c := byte('A')
	if token[i] == 'A' {
		c = 'B'
	}
	return token[:i] + string(c) + token[i+1:]
}
