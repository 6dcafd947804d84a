package sqldb

import (
	"context"
	"time"

	"github.com/aussiebroadwan/careerhub/internal/auth/domain"
)

type refreshTokensRepo struct{ conn }

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.exec(ctx,
		`INSERT INTO refresh_tokens (id, user_id, session_id, token_hash, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.SessionID, t.TokenHash, utc(t.ExpiresAt), utc(t.CreatedAt),
	)
	return r.mapInsert(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.queryRow(ctx,
		`SELECT id, user_id, session_id, token_hash, expires_at, created_at
		 FROM refresh_tokens WHERE token_hash = ?`, hash,
	).Scan(&t.ID, &t.UserID, &t.SessionID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	t.ExpiresAt = utc(t.ExpiresAt)
	t.CreatedAt = utc(t.CreatedAt)
	return t, nil
}

func (r *refreshTokensRepo) DeleteRefreshToken(ctx context.Context, hash string) (bool, error) {
	res, err := r.exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash = ?`, hash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *refreshTokensRepo) DeleteSessionRefreshTokens(ctx context.Context, sessionID string) error {
	_, err := r.exec(ctx, `DELETE FROM refresh_tokens WHERE session_id = ?`, sessionID)
	return err
}

func (r *refreshTokensRepo) DeleteUserRefreshTokens(ctx context.Context, userID string) error {
	_, err := r.exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = ?`, userID)
	return err
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= ?`, utc(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
