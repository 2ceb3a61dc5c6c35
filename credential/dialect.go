package credential

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/lib/pq"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Driver names accepted by [Open]; they match the database/sql driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

type dialect struct {
	name       string
	schema     []string
	rebind     func(query string) string
	encodeTime func(t time.Time) any
	isUnique   func(err error) bool
}

var postgresDialect = dialect{
	name: DriverPostgres,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_login TIMESTAMPTZ
)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_unique ON users (email)`,
	},
	rebind:     func(query string) string { return query },
	encodeTime: func(t time.Time) any { return t.UTC() },
	isUnique:   isPostgresUniqueViolation,
}

var sqliteDialect = dialect{
	name: DriverSQLite,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    last_login INTEGER
)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_unique ON users (email)`,
	},
	rebind:     rebindNumbered,
	encodeTime: func(t time.Time) any { return t.UTC().UnixMicro() },
	isUnique:   isSQLiteUniqueViolation,
}

func dialectFor(driver string) (dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverPostgres, "postgresql":
		return postgresDialect, nil
	case DriverSQLite, "sqlite3":
		return sqliteDialect, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

var numberedParam = regexp.MustCompile(`\$(\d+)`)

// rebindNumbered turns $N placeholders into SQLite's ?N form.
func rebindNumbered(query string) string {
	return numberedParam.ReplaceAllString(query, "?$1")
}

// decodeTime accepts both native timestamps (PostgreSQL) and unix
// microseconds (SQLite).
func decodeTime(src any) (time.Time, bool, error) {
	switch v := src.(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		return v.UTC(), true, nil
	case int64:
		return time.UnixMicro(v).UTC(), true, nil
	default:
		return time.Time{}, false, fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func isPostgresUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	return false
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
