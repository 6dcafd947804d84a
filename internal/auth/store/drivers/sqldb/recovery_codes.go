package sqldb

import (
	"context"
	"time"

	"github.com/aussiebroadwan/careerhub/internal/auth/domain"
)

type recoveryCodesRepo struct{ conn }

func (r *recoveryCodesRepo) CreateRecoveryCodes(ctx context.Context, codes []domain.RecoveryCode) error {
	for _, c := range codes {
		_, err := r.exec(ctx,
			`INSERT INTO recovery_codes (id, user_id, code_hash, used_at, created_at) VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.UserID, c.CodeHash, mapOptionalTime(c.UsedAt), utc(c.CreatedAt),
		)
		if err != nil {
			return r.mapInsert(err)
		}
	}
	return nil
}

func (r *recoveryCodesRepo) MarkRecoveryCodeUsed(ctx context.Context, userID, hash string, at time.Time) (bool, error) {
	res, err := r.exec(ctx,
		`UPDATE recovery_codes SET used_at = ? WHERE user_id = ? AND code_hash = ? AND used_at IS NULL`,
		utc(at), userID, hash,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *recoveryCodesRepo) CountUnusedRecoveryCodes(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.queryRow(ctx,
		`SELECT COUNT(*) FROM recovery_codes WHERE user_id = ? AND used_at IS NULL`, userID,
	).Scan(&n)
	return n, err
}

func (r *recoveryCodesRepo) DeleteUserRecoveryCodes(ctx context.Context, userID string) error {
	_, err := r.exec(ctx, `DELETE FROM recovery_codes WHERE user_id = ?`, userID)
	return err
}
