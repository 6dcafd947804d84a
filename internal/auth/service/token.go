package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/careerhub/internal/auth/domain"
	"github.com/aussiebroadwan/careerhub/internal/auth/store"
	"github.com/aussiebroadwan/careerhub/pkg/cryptox"
	"github.com/aussiebroadwan/careerhub/pkg/idx"
	"github.com/aussiebroadwan/careerhub/pkg/jwtx"
	"github.com/aussiebroadwan/careerhub/pkg/slogx"
)

// TokenService mints and checks access and refresh tokens.
//
// Access tokens are verified from the signature alone and cannot be
// revoked before they expire. Refresh tokens are only accepted while their
// fingerprint is still in the store, which is what logout and "sign out
// everywhere" delete.
type TokenService struct {
	Store      store.Store
	AccessKey  jwtx.SignerVerifier
	RefreshKey jwtx.SignerVerifier
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// RotateRefresh replaces the refresh token on every use. When false the
	// same refresh token keeps working until it expires or is revoked.
	RotateRefresh bool

	Observer Observer
	Now      func() time.Time
}

// RefreshResult is the outcome of a successful refresh. Tokens.RefreshToken
// is the presented token unless it was rotated.
type RefreshResult struct {
	User      domain.User
	SessionID string
	Tokens    domain.TokenPair
	Rotated   bool
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *TokenService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *TokenService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

// IssueAccessToken signs a short-lived token carrying the user's id, role
// and session.
func (s *TokenService) IssueAccessToken(user domain.User, sessionID string) (string, time.Time, error) {
	claims := jwtx.NewAccessClaims(user.ID, user.Role.String(), sessionID, s.accessTTL(), s.Issuer, s.now())
	token, err := s.AccessKey.Sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return token, claims.ExpiresAt.Time, nil
}

// IssueRefreshToken signs a refresh token and records its fingerprint in
// repo with the same expiry.
func (s *TokenService) IssueRefreshToken(ctx context.Context, repo store.RefreshTokens, userID, sessionID string) (string, time.Time, error) {
	now := s.now()
	claims := jwtx.NewRefreshClaims(userID, sessionID, s.refreshTTL(), s.Issuer, now)
	token, err := s.RefreshKey.Sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign refresh token: %w", err)
	}

	expires := claims.ExpiresAt.Time
	err = repo.CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        idx.NewAt(now).String(),
		UserID:    userID,
		SessionID: sessionID,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: expires,
		CreatedAt: now,
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("store refresh token: %w", err)
	}
	return token, expires, nil
}

// issuePair mints both tokens for one session.
func (s *TokenService) issuePair(ctx context.Context, repo store.RefreshTokens, user domain.User, sessionID string) (domain.TokenPair, error) {
	access, accessExp, err := s.IssueAccessToken(user, sessionID)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, refreshExp, err := s.IssueRefreshToken(ctx, repo, user.ID, sessionID)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// VerifyAccessToken checks signature, expiry, issuer and type. It never
// touches the store.
func (s *TokenService) VerifyAccessToken(raw string) (jwtx.Claims, error) {
	return s.AccessKey.Verify(raw)
}

// Refresh exchanges a refresh token for a new access token.
//
// The signed token must verify and its fingerprint must still be stored.
// The stored expiry wins over the signed one, and an expired row is deleted
// on the way out.
func (s *TokenService) Refresh(ctx context.Context, raw string) (RefreshResult, error) {
	claims, err := s.RefreshKey.Verify(raw)
	if err != nil {
		kind := KindRefreshInvalid
		if errors.Is(err, jwtx.ErrExpired) {
			kind = KindRefreshExpired
		}
		return s.reject(ctx, fail(kind, err))
	}

	now := s.now()
	hash := cryptox.FingerprintToken(raw)

	var (
		res     RefreshResult
		expired bool
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		row, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
		if errors.Is(err, store.ErrNotFound) {
			return fail(KindRefreshInvalid, errors.New("refresh token not stored"))
		}
		if err != nil {
			return fmt.Errorf("get refresh token: %w", err)
		}
		if row.UserID != claims.Subject || row.SessionID != claims.SID {
			return fail(KindRefreshInvalid, errors.New("refresh token does not match its record"))
		}

		if row.Expired(now) {
			// Commit the delete, then report expiry.
			expired = true
			if _, err := tx.RefreshTokens().DeleteRefreshToken(ctx, hash); err != nil {
				return fmt.Errorf("delete expired refresh token: %w", err)
			}
			return nil
		}

		user, err := tx.Users().GetUserByID(ctx, row.UserID)
		if errors.Is(err, store.ErrNotFound) {
			return fail(KindRefreshInvalid, errors.New("refresh token owner no longer exists"))
		}
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}

		access, accessExp, err := s.IssueAccessToken(user, row.SessionID)
		if err != nil {
			return err
		}
		res = RefreshResult{
			User:      user,
			SessionID: row.SessionID,
			Tokens: domain.TokenPair{
				AccessToken:      access,
				RefreshToken:     raw,
				AccessExpiresAt:  accessExp,
				RefreshExpiresAt: row.ExpiresAt,
			},
		}

		if !s.RotateRefresh {
			return nil
		}

		// Only one of two concurrent rotations gets to delete the row.
		deleted, err := tx.RefreshTokens().DeleteRefreshToken(ctx, hash)
		if err != nil {
			return fmt.Errorf("delete rotated refresh token: %w", err)
		}
		if !deleted {
			return fail(KindRefreshInvalid, errors.New("refresh token already rotated"))
		}
		next, nextExp, err := s.IssueRefreshToken(ctx, tx.RefreshTokens(), user.ID, row.SessionID)
		if err != nil {
			return err
		}
		res.Tokens.RefreshToken = next
		res.Tokens.RefreshExpiresAt = nextExp
		res.Rotated = true
		return nil
	})
	if err != nil {
		return s.reject(ctx, classify(err))
	}
	if expired {
		return s.reject(ctx, fail(KindRefreshExpired, errors.New("refresh token record expired")))
	}

	observe(ctx, s.Observer, Event{
		Name:      EventRefreshSucceeded,
		UserID:    res.User.ID,
		SessionID: res.SessionID,
		Attrs:     []slog.Attr{slog.Bool("rotated", res.Rotated)},
	})
	return res, nil
}

func (s *TokenService) reject(ctx context.Context, err error) (RefreshResult, error) {
	slogx.FromContext(ctx).Debug("refresh rejected", "error", err)
	observe(ctx, s.Observer, Event{
		Name:  EventRefreshRejected,
		Attrs: []slog.Attr{slog.String("reason", KindOf(err).Code())},
	})
	return RefreshResult{}, err
}

// Revoke forgets a refresh token. Unknown or already revoked tokens are not
// an error.
func (s *TokenService) Revoke(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	if _, err := s.Store.RefreshTokens().DeleteRefreshToken(ctx, cryptox.FingerprintToken(raw)); err != nil {
		return classify(fmt.Errorf("revoke refresh token: %w", err))
	}
	return nil
}

// lookup returns the stored record for a refresh token, if any.
func (s *TokenService) lookup(ctx context.Context, raw string) (domain.RefreshToken, bool, error) {
	row, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(raw))
	if errors.Is(err, store.ErrNotFound) {
		return domain.RefreshToken{}, false, nil
	}
	if err != nil {
		return domain.RefreshToken{}, false, classify(fmt.Errorf("get refresh token: %w", err))
	}
	return row, true, nil
}
