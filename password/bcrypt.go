package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt silently ignores input beyond 72 bytes; longer passwords are refused instead.
const bcryptMaxPasswordBytes = 72

// Bcrypt hashes passwords with bcrypt at a fixed cost.
type Bcrypt struct {
	cost   int
	policy lengthPolicy
}

// NewBcrypt validates cfg.BcryptCost and returns a hasher.
func NewBcrypt(cfg Config) (*Bcrypt, error) {
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if cfg.MinPasswordBytes < 0 || cfg.MaxPasswordBytes < 0 {
		return nil, errors.New("password length bounds must not be negative")
	}

	policy := newLengthPolicy(cfg)
	if policy.max > bcryptMaxPasswordBytes {
		policy.max = bcryptMaxPasswordBytes
	}
	if policy.min > policy.max {
		return nil, errors.New("password min length exceeds max length")
	}

	return &Bcrypt{cost: cfg.BcryptCost, policy: policy}, nil
}

// Hash returns a bcrypt digest of password.
func (b *Bcrypt) Hash(password string) (string, error) {
	if err := b.policy.checkHash(password); err != nil {
		return "", err
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify compares password against a bcrypt digest.
func (b *Bcrypt) Verify(password string, digest string) (bool, error) {
	if err := b.policy.checkVerify(password); err != nil {
		return false, err
	}

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}

// NeedsUpgrade reports whether digest was produced at a lower cost than configured.
func (b *Bcrypt) NeedsUpgrade(digest string) (bool, error) {
	cost, err := bcrypt.Cost([]byte(digest))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	return cost < b.cost, nil
}
