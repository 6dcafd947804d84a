package sqldb

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/careerhub/internal/auth/store"
)

// DB is the non-transactional half of a store. Drivers embed it and add
// ApplyMigrations.
type DB struct {
	db *sql.DB
	d  Dialect
}

func New(db *sql.DB, d Dialect) *DB {
	return &DB{db: db, d: d}
}

// SQL exposes the pool for migrations.
func (s *DB) SQL() *sql.DB { return s.db }

func (s *DB) Close() error { return s.db.Close() }

func (s *DB) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *DB) conn() conn { return conn{q: s.db, d: s.d} }

func (s *DB) Users() store.Users                 { return &usersRepo{s.conn()} }
func (s *DB) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{s.conn()} }
func (s *DB) RecoveryCodes() store.RecoveryCodes { return &recoveryCodesRepo{s.conn()} }
func (s *DB) Sessions() store.Sessions           { return &sessionsRepo{s.conn()} }

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *DB) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx, d: s.d}, nil
}

// WithTx executes fn within a transaction, handling commit and rollback.
func (s *DB) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

type txStore struct {
	tx *sql.Tx
	d  Dialect
}

func (t *txStore) conn() conn { return conn{q: t.tx, d: t.d} }

func (t *txStore) Users() store.Users                 { return &usersRepo{t.conn()} }
func (t *txStore) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{t.conn()} }
func (t *txStore) RecoveryCodes() store.RecoveryCodes { return &recoveryCodesRepo{t.conn()} }
func (t *txStore) Sessions() store.Sessions           { return &sessionsRepo{t.conn()} }

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close, Ping and ApplyMigrations are no-ops: the outer DB owns them.
func (t *txStore) Close() error               { return nil }
func (t *txStore) Ping(context.Context) error { return nil }
func (t *txStore) ApplyMigrations() error     { return nil }

func (t *txStore) Tx(context.Context) (store.Tx, error) {
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(context.Context, func(tx store.Tx) error) error {
	return sql.ErrTxDone
}
