package sharedauth

import (
	"errors"

	"github.com/MrEthical07/sharedauth/session"
)

var (
	// ErrValidation matches every [ValidationError].
	ErrValidation = errors.New("validation failed")
	// ErrConflict is returned by Signup when the email is already registered.
	ErrConflict = errors.New("email already exists")
	// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated is returned when an operation needs a logged-in session.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrStoreUnavailable is the session store failure, re-exported so callers
	// do not need to import package session to match it.
	ErrStoreUnavailable = session.ErrStoreUnavailable
	// ErrSession is returned when a session could not be persisted or destroyed.
	ErrSession = errors.New("session persistence failed")
	// ErrPersistence is returned when the credential store fails.
	ErrPersistence = errors.New("credential store failure")
	// ErrRateLimited is returned by Login once the failed-attempt budget is spent.
	ErrRateLimited = errors.New("login rate limited")
	// ErrServiceNotReady is returned by methods called on a nil or unbuilt Service.
	ErrServiceNotReady = errors.New("service not initialized")
)

// ValidationError carries a message that is safe to return to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is lets callers match with errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func validationError(msg string) error {
	return &ValidationError{Message: msg}
}
