package sharedauth

import (
	"time"

	"github.com/MrEthical07/sharedauth/credential"
	"github.com/MrEthical07/sharedauth/session"
)

// UserSummary is the user view carried inside an authenticated session.
type UserSummary = session.UserSummary

// PublicUser is the client-facing view of a stored account. It never
// carries the password digest.
type PublicUser struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
}

// SignupRequest is the input to [Service.Signup].
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the input to [Service.Login].
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func publicUser(u credential.User) PublicUser {
	out := PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.UTC(),
	}
	if u.LastLogin != nil {
		last := u.LastLogin.UTC()
		out.LastLogin = &last
	}
	return out
}

func summaryOf(u credential.User, lastLogin time.Time) UserSummary {
	return UserSummary{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		LastLogin: lastLogin,
	}
}
