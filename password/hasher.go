package password

import (
	"errors"
	"fmt"
)

// Algorithm names a supported hashing scheme.
type Algorithm string

const (
	// AlgorithmArgon2id selects [Argon2]. It is the default.
	AlgorithmArgon2id Algorithm = "argon2id"
	// AlgorithmBcrypt selects [Bcrypt].
	AlgorithmBcrypt Algorithm = "bcrypt"
)

const (
	// DefaultMinPasswordBytes is applied when Config.MinPasswordBytes is zero.
	DefaultMinPasswordBytes = 8
	// DefaultMaxPasswordBytes is applied when Config.MaxPasswordBytes is zero.
	DefaultMaxPasswordBytes = 1024
)

// ErrPolicy matches every [PolicyError] via errors.Is.
var ErrPolicy = errors.New("password policy violation")

// ErrMalformedHash is returned by Verify when the stored digest cannot be parsed.
var ErrMalformedHash = errors.New("malformed password hash")

// PolicyError reports a plaintext that the hasher refuses to process.
// Reason is safe to show to the user who typed the password.
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string { return e.Reason }

// Is lets callers match any policy failure with errors.Is(err, ErrPolicy).
func (e *PolicyError) Is(target error) bool { return target == ErrPolicy }

// Hasher hashes and verifies passwords. Implementations are safe for
// concurrent use.
type Hasher interface {
	// Hash returns a self-describing digest. Two calls with the same input
	// return different digests because each draws a fresh salt.
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches digest. The comparison is
	// constant time with respect to the derived key.
	Verify(plaintext, digest string) (bool, error)
}

// Config holds the parameters for every supported algorithm; only the
// fields relevant to Algorithm are read.
type Config struct {
	Algorithm Algorithm

	// Argon2id parameters.
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32

	// bcrypt work factor.
	BcryptCost int

	MinPasswordBytes int
	MaxPasswordBytes int
}

// DefaultConfig returns Argon2id parameters that keep a single verification
// well under a second on commodity hardware.
func DefaultConfig() Config {
	return Config{
		Algorithm:        AlgorithmArgon2id,
		Memory:           65536,
		Time:             3,
		Parallelism:      2,
		SaltLength:       16,
		KeyLength:        32,
		BcryptCost:       12,
		MinPasswordBytes: DefaultMinPasswordBytes,
		MaxPasswordBytes: DefaultMaxPasswordBytes,
	}
}

// NewHasher builds the [Hasher] named by cfg.Algorithm. An empty algorithm
// selects Argon2id.
func NewHasher(cfg Config) (Hasher, error) {
	switch cfg.Algorithm {
	case "", AlgorithmArgon2id:
		h, err := NewArgon2(cfg)
		if err != nil {
			return nil, err
		}
		return h, nil
	case AlgorithmBcrypt:
		h, err := NewBcrypt(cfg)
		if err != nil {
			return nil, err
		}
		return h, nil
	default:
		return nil, fmt.Errorf("unsupported password algorithm %q", cfg.Algorithm)
	}
}

type lengthPolicy struct {
	min int
	max int
}

func newLengthPolicy(cfg Config) lengthPolicy {
	p := lengthPolicy{min: cfg.MinPasswordBytes, max: cfg.MaxPasswordBytes}
	if p.min <= 0 {
		p.min = DefaultMinPasswordBytes
	}
	if p.max <= 0 {
		p.max = DefaultMaxPasswordBytes
	}
	return p
}

// Password processing uses raw string bytes exactly as provided (no Unicode normalization).
func (p lengthPolicy) checkHash(plaintext string) error {
	if len(plaintext) < p.min {
		return &PolicyError{Reason: fmt.Sprintf("password must be at least %d bytes", p.min)}
	}
	return p.checkVerify(plaintext)
}

func (p lengthPolicy) checkVerify(plaintext string) error {
	if len(plaintext) > p.max {
		return &PolicyError{Reason: fmt.Sprintf("password must be at most %d bytes", p.max)}
	}
	return nil
}
