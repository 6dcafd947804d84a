package sqldb

import (
	"context"
	"time"

	"github.com/aussiebroadwan/careerhub/internal/auth/domain"
)

type sessionsRepo struct{ conn }

const sessionColumns = `id, user_id, fingerprint, ip_address, user_agent, created_at, last_active_at`

func scanSession(row interface{ Scan(...any) error }) (domain.Session, error) {
	var s domain.Session
	if err := row.Scan(&s.ID, &s.UserID, &s.Fingerprint, &s.IPAddress, &s.UserAgent, &s.CreatedAt, &s.LastActiveAt); err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	s.CreatedAt = utc(s.CreatedAt)
	s.LastActiveAt = utc(s.LastActiveAt)
	return s, nil
}

func (r *sessionsRepo) list(ctx context.Context, query string, args ...any) ([]domain.Session, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.exec(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.Fingerprint, s.IPAddress, s.UserAgent, utc(s.CreatedAt), utc(s.LastActiveAt),
	)
	return r.mapInsert(err)
}

func (r *sessionsRepo) GetSession(ctx context.Context, id string) (domain.Session, error) {
	return scanSession(r.queryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id))
}

func (r *sessionsRepo) GetSessionByFingerprint(ctx context.Context, userID, fingerprint string) (domain.Session, error) {
	return scanSession(r.queryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE user_id = ? AND fingerprint = ?
		 ORDER BY last_active_at DESC, id DESC LIMIT 1`,
		userID, fingerprint,
	))
}

func (r *sessionsRepo) ListUserSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	return r.list(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE user_id = ?
		 ORDER BY last_active_at DESC, id DESC`, userID)
}

func (r *sessionsRepo) OldestUserSessions(ctx context.Context, userID string, limit int) ([]domain.Session, error) {
	return r.list(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE user_id = ?
		 ORDER BY created_at ASC, id ASC LIMIT ?`, userID, limit)
}

func (r *sessionsRepo) CountUserSessions(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.queryRow(ctx, `SELECT COUNT(*) FROM sessions WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}

func (r *sessionsRepo) TouchSession(ctx context.Context, id string, at time.Time) error {
	return r.execOne(ctx, `UPDATE sessions SET last_active_at = ? WHERE id = ?`, utc(at), id)
}

func (r *sessionsRepo) RebindSession(ctx context.Context, id, ip, userAgent string, at time.Time) error {
	return r.execOne(ctx,
		`UPDATE sessions SET ip_address = ?, user_agent = ?, last_active_at = ? WHERE id = ?`,
		ip, userAgent, utc(at), id,
	)
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM sessions WHERE id = ?`, id)
}

func (r *sessionsRepo) DeleteUserSessions(ctx context.Context, userID string) (int64, error) {
	res, err := r.exec(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *sessionsRepo) DeleteInactiveSessions(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.exec(ctx, `DELETE FROM sessions WHERE last_active_at < ?`, utc(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
