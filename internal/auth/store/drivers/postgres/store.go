package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/careerhub/internal/auth/store/drivers/sqldb"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// uniqueViolation is SQLSTATE 23505.
const uniqueViolation = "23505"

// Dialect is the postgres flavour of the shared SQL repositories. LockUser
// takes a row lock so concurrent logins for one user queue behind each
// other.
var Dialect = sqldb.Dialect{
	Name:              "postgres",
	Rebind:            sqldb.RebindDollar,
	LockUser:          `SELECT id FROM users WHERE id = ? FOR UPDATE`,
	IsUniqueViolation: isUniqueViolation,
}

type Store struct {
	*sqldb.DB
}

// NewStore connects to url (postgres://...) through pgx's database/sql
// adapter and verifies the connection.
func NewStore(ctx context.Context, url string) (*Store, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{DB: sqldb.New(db, Dialect)}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
