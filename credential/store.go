package credential

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrDuplicateEmail is returned by Create when the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrNotFound is returned by lookups that match no row.
	ErrNotFound = errors.New("user not found")
	// ErrUnavailable wraps every other database failure.
	ErrUnavailable = errors.New("credential store unavailable")
)

// User is a stored account row.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// NewUser is the input to [Store.Create]. Email must already be normalized.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Store is the query contract the auth service depends on.
type Store interface {
	Create(ctx context.Context, u NewUser) (int64, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	List(ctx context.Context) ([]User, error)
	Ping(ctx context.Context) error
}
