package sqldb

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/careerhub/internal/auth/domain"
)

type usersRepo struct{ conn }

const userColumns = `id, email, password_hash, role, mfa_secret, mfa_enrolled_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u        domain.User
		role     string
		secret   sql.NullString
		enrolled sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &secret, &enrolled, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Role = domain.Role(role)
	u.MFASecret = mapNullStringPtr(secret)
	u.MFAEnrolledAt = mapNullTimePtr(enrolled)
	u.CreatedAt = utc(u.CreatedAt)
	u.UpdatedAt = utc(u.UpdatedAt)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, string(u.Role),
		mapOptionalString(u.MFASecret), mapOptionalTime(u.MFAEnrolledAt),
		utc(u.CreatedAt), utc(u.UpdatedAt),
	)
	return r.mapInsert(err)
}

func (r *usersRepo) LockUser(ctx context.Context, id string) error {
	var got string
	return mapNotFound(r.queryRow(ctx, r.d.LockUser, id).Scan(&got))
}

func (r *usersRepo) EnableMFA(ctx context.Context, userID, sealedSecret string, at time.Time) error {
	return r.execOne(ctx,
		`UPDATE users SET mfa_secret = ?, mfa_enrolled_at = ?, updated_at = ? WHERE id = ?`,
		sealedSecret, utc(at), utc(at), userID,
	)
}

func (r *usersRepo) DisableMFA(ctx context.Context, userID string, at time.Time) error {
	return r.execOne(ctx,
		`UPDATE users SET mfa_secret = NULL, mfa_enrolled_at = NULL, updated_at = ? WHERE id = ?`,
		utc(at), userID,
	)
}
