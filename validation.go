package sharedauth

import (
	"regexp"
	"strings"
)

const (
	msgSignupFieldsRequired = "`name`, `email` and `password` are required"
	msgInvalidEmail         = "Invalid email format"
	msgLoginFieldsRequired  = "email and password required"
	msgNameTooLong          = "`name` must be at most 255 bytes"
)

// maxNameBytes keeps a name well inside the session encoder's field limit.
const maxNameBytes = 255

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// normalizeEmail trims and lower-cases an address; stored emails are always
// in this form so lookups are case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	return len(email) <= 254 && emailPattern.MatchString(email)
}

func validateSignup(req SignupRequest) (SignupRequest, error) {
	out := SignupRequest{
		Name:     strings.TrimSpace(req.Name),
		Email:    normalizeEmail(req.Email),
		Password: req.Password,
	}
	if out.Name == "" || out.Email == "" || out.Password == "" {
		return SignupRequest{}, validationError(msgSignupFieldsRequired)
	}
	if len(out.Name) > maxNameBytes {
		return SignupRequest{}, validationError(msgNameTooLong)
	}
	if !validEmail(out.Email) {
		return SignupRequest{}, validationError(msgInvalidEmail)
	}
	return out, nil
}

func validateLogin(req LoginRequest) (LoginRequest, error) {
	out := LoginRequest{
		Email:    normalizeEmail(req.Email),
		Password: req.Password,
	}
	if out.Email == "" || out.Password == "" {
		return LoginRequest{}, validationError(msgLoginFieldsRequired)
	}
	return out, nil
}
