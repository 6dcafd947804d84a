package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/careerhub/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement it. Repositories hang off it so a Tx can hand out the
// same repositories bound to the transaction.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	RecoveryCodes() RecoveryCodes
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST Commit or
	// Rollback the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise. fn must only use the Tx it is given: the
	// outer Store may be serialised behind the open transaction.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Nested transactions are not supported.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail expects an already normalised address.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// LockUser serialises per-user mutations until the surrounding
	// transaction ends. Returns ErrNotFound for an unknown user.
	LockUser(ctx context.Context, id string) error

	// EnableMFA stores the sealed TOTP secret and marks MFA enabled.
	EnableMFA(ctx context.Context, userID, sealedSecret string, at time.Time) error

	// DisableMFA clears the secret and enrolment timestamp.
	DisableMFA(ctx context.Context, userID string, at time.Time) error
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// DeleteRefreshToken reports whether a row was actually removed, which
	// is how concurrent rotations tell who won.
	DeleteRefreshToken(ctx context.Context, hash string) (bool, error)

	DeleteSessionRefreshTokens(ctx context.Context, sessionID string) error
	DeleteUserRefreshTokens(ctx context.Context, userID string) error
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

type RecoveryCodes interface {
	CreateRecoveryCodes(ctx context.Context, codes []domain.RecoveryCode) error

	// MarkRecoveryCodeUsed burns an unused code in a single conditional
	// update. It reports false when no unused code matched.
	MarkRecoveryCodeUsed(ctx context.Context, userID, hash string, at time.Time) (bool, error)

	CountUnusedRecoveryCodes(ctx context.Context, userID string) (int, error)
	DeleteUserRecoveryCodes(ctx context.Context, userID string) error
}

type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error
	GetSession(ctx context.Context, id string) (domain.Session, error)
	GetSessionByFingerprint(ctx context.Context, userID, fingerprint string) (domain.Session, error)

	// ListUserSessions returns sessions most recently active first.
	ListUserSessions(ctx context.Context, userID string) ([]domain.Session, error)

	// OldestUserSessions returns up to limit sessions by creation time,
	// oldest first.
	OldestUserSessions(ctx context.Context, userID string, limit int) ([]domain.Session, error)

	CountUserSessions(ctx context.Context, userID string) (int, error)

	// TouchSession bumps last_active_at. Returns ErrNotFound for an unknown
	// session.
	TouchSession(ctx context.Context, id string, at time.Time) error

	// RebindSession refreshes the network details of a reused session.
	RebindSession(ctx context.Context, id, ip, userAgent string, at time.Time) error

	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID string) (int64, error)
	DeleteInactiveSessions(ctx context.Context, before time.Time) (int64, error)
}
