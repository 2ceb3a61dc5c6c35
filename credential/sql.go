package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	insertUserQuery = `
INSERT INTO users (name, email, password_hash, created_at)
VALUES ($1, $2, $3, $4)
RETURNING id`

	selectUserColumns = `SELECT id, name, email, password_hash, created_at, last_login FROM users`

	updateLastLoginQuery = `UPDATE users SET last_login = $1 WHERE id = $2`
)

// SQLStore implements [Store] over database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

var _ Store = (*SQLStore)(nil)

// Open connects to dsn with driver ("postgres" or "sqlite"), verifies the
// connection and applies the schema.
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("database dsn is required")
	}

	db, err := sql.Open(d.name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", d.name, err)
	}
	if d.name == DriverSQLite {
		// SQLite allows one writer; a single connection also keeps :memory: alive.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", d.name, err)
	}

	store := &SQLStore{db: db, dialect: d}
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

// New wraps an existing handle. The caller owns db and must run Migrate if
// the schema may be missing.
func New(db *sql.DB, driver string) (*SQLStore, error) {
	if db == nil {
		return nil, errors.New("database handle is required")
	}
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	return &SQLStore{db: db, dialect: d}, nil
}

// DB returns the raw database handle.
func (s *SQLStore) DB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.db
}

// Close releases the underlying database.
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Migrate creates the users table and its unique email index when absent.
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return nil
}

// Create inserts u and returns its id. It relies on the unique index rather
// than a prior lookup.
func (s *SQLStore) Create(ctx context.Context, u NewUser) (int64, error) {
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var id int64
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(insertUserQuery),
		u.Name, u.Email, u.PasswordHash, s.dialect.encodeTime(createdAt),
	).Scan(&id)
	if err != nil {
		if s.dialect.isUnique(err) {
			return 0, ErrDuplicateEmail
		}
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return id, nil
}

// FindByEmail returns the user registered under email.
func (s *SQLStore) FindByEmail(ctx context.Context, email string) (User, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(selectUserColumns+` WHERE email = $1`), email)
	return scanUser(row)
}

// FindByID returns the user with the given id.
func (s *SQLStore) FindByID(ctx context.Context, id int64) (User, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(selectUserColumns+` WHERE id = $1`), id)
	return scanUser(row)
}

// UpdateLastLogin stamps a successful login.
func (s *SQLStore) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(updateLastLoginQuery), s.dialect.encodeTime(at), id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every user ordered by id.
func (s *SQLStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, selectUserColumns+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return users, nil
}

// Ping checks connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var (
		u         User
		createdAt any
		lastLogin any
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &createdAt, &lastLogin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	created, _, err := decodeTime(createdAt)
	if err != nil {
		return User{}, fmt.Errorf("%w: created_at: %v", ErrUnavailable, err)
	}
	u.CreatedAt = created

	last, ok, err := decodeTime(lastLogin)
	if err != nil {
		return User{}, fmt.Errorf("%w: last_login: %v", ErrUnavailable, err)
	}
	if ok {
		u.LastLogin = &last
	}

	return u, nil
}
