package session

import "time"

// Kind distinguishes anonymous from authenticated session state.
type Kind uint8

const (
	// KindAnonymous is the zero value: no user is bound to the session.
	KindAnonymous Kind = 0
	// KindAuthenticated means State.User is set.
	KindAuthenticated Kind = 1
)

func (k Kind) String() string {
	switch k {
	case KindAnonymous:
		return "anonymous"
	case KindAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// UserSummary is the identity snapshot kept in an authenticated session.
// It never carries credential material.
type UserSummary struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	LastLogin time.Time `json:"last_login"`
}

// State is the server-side session payload stored in Redis.
//
// CreatedAt and ExpiresAt are unix seconds. ExpiresAt is fixed when the
// session is first saved and is never extended by later saves.
type State struct {
	SchemaVersion uint8
	Kind          Kind
	User          *UserSummary

	CreatedAt int64
	ExpiresAt int64
}

// Anonymous reports whether no user is bound to s.
func (s *State) Anonymous() bool {
	return s == nil || s.Kind != KindAuthenticated || s.User == nil
}

// Expired reports whether s has passed its absolute expiry at now.
func (s *State) Expired(now time.Time) bool {
	return s.ExpiresAt != 0 && now.Unix() >= s.ExpiresAt
}
