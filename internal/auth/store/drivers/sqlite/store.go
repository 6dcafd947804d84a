package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/aussiebroadwan/careerhub/internal/auth/store/drivers/sqldb"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect is the sqlite flavour of the shared SQL repositories. Write
// transactions are opened with BEGIN IMMEDIATE (see DSN), so LockUser only
// has to confirm the row exists.
var Dialect = sqldb.Dialect{
	Name:              "sqlite",
	LockUser:          `SELECT id FROM users WHERE id = ?`,
	IsUniqueViolation: isUniqueViolation,
}

type Store struct {
	*sqldb.DB
}

// DSN builds a modernc.org/sqlite connection string for path with the
// pragmas the store relies on. Pass ":memory:" for a throwaway database.
func DSN(path string) string {
	return "file:" + path + "?" + strings.Join([]string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_pragma=journal_mode(WAL)",
		"_txlock=immediate",
		"_time_format=sqlite",
	}, "&")
}

// NewStore opens dsn. A bare path or ":memory:" is expanded with DSN.
func NewStore(dsn string) (*Store, error) {
	if !strings.HasPrefix(dsn, "file:") {
		dsn = DSN(dsn)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Every connection to :memory: is its own database.
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}

	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{DB: sqldb.New(db, Dialect)}, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
