package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const argon2idName = "argon2id"

// Lower bounds for configured and stored parameters. Stored digests below
// these are treated as malformed, not merely weak.
const (
	argon2MinMemoryKB uint32 = 8 * 1024
	argon2MinTime     uint32 = 1
	argon2MinThreads  uint8  = 1
	argon2MinSaltLen  uint32 = 16
	argon2MinKeyLen   uint32 = 16
)

// PHC segments are unpadded standard base64.
var phcEncoding = base64.RawStdEncoding

// Argon2 hashes passwords with Argon2id and encodes them as PHC strings.
type Argon2 struct {
	memory  uint32
	time    uint32
	threads uint8
	saltLen uint32
	keyLen  uint32
	policy  lengthPolicy
}

// phcDigest is one decoded "$argon2id$v=19$m=..,t=..,p=..$salt$key" string.
type phcDigest struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func (d phcDigest) String() string {
	return fmt.Sprintf("$%s$v=%d$%s$%s$%s",
		argon2idName, argon2.Version,
		d.params(),
		phcEncoding.EncodeToString(d.salt),
		phcEncoding.EncodeToString(d.key),
	)
}

func (d phcDigest) params() string {
	return fmt.Sprintf("m=%d,t=%d,p=%d", d.memory, d.time, d.threads)
}

// NewArgon2 validates the Argon2id parameters in cfg and returns a hasher.
func NewArgon2(cfg Config) (*Argon2, error) {
	switch {
	case cfg.Memory < argon2MinMemoryKB:
		return nil, fmt.Errorf("argon2 memory must be >= %d KB", argon2MinMemoryKB)
	case cfg.Time < argon2MinTime:
		return nil, errors.New("argon2 time must be >= 1")
	case cfg.Parallelism < argon2MinThreads:
		return nil, errors.New("argon2 parallelism must be >= 1")
	case cfg.SaltLength < argon2MinSaltLen:
		return nil, fmt.Errorf("argon2 salt length must be >= %d", argon2MinSaltLen)
	case cfg.KeyLength < argon2MinKeyLen:
		return nil, fmt.Errorf("argon2 key length must be >= %d", argon2MinKeyLen)
	case cfg.MinPasswordBytes < 0 || cfg.MaxPasswordBytes < 0:
		return nil, errors.New("password length bounds must not be negative")
	case cfg.MaxPasswordBytes > 0 && cfg.MinPasswordBytes > cfg.MaxPasswordBytes:
		return nil, errors.New("password min length exceeds max length")
	}

	return &Argon2{
		memory:  cfg.Memory,
		time:    cfg.Time,
		threads: cfg.Parallelism,
		saltLen: cfg.SaltLength,
		keyLen:  cfg.KeyLength,
		policy:  newLengthPolicy(cfg),
	}, nil
}

// Hash derives a key from password with a fresh random salt.
func (a *Argon2) Hash(password string) (string, error) {
	if err := a.policy.checkHash(password); err != nil {
		return "", err
	}

	salt := make([]byte, a.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}

	d := phcDigest{memory: a.memory, time: a.time, threads: a.threads, salt: salt}
	d.key = argon2.IDKey([]byte(password), salt, d.time, d.memory, d.threads, a.keyLen)
	return d.String(), nil
}

// Verify re-derives the key with the parameters stored in digest, so
// digests made under older settings still verify.
func (a *Argon2) Verify(password, digest string) (bool, error) {
	if err := a.policy.checkVerify(password); err != nil {
		return false, err
	}

	d, err := decodePHC(digest)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}

	key := argon2.IDKey([]byte(password), d.salt, d.time, d.memory, d.threads, uint32(len(d.key)))
	return subtle.ConstantTimeCompare(key, d.key) == 1, nil
}

// NeedsUpgrade reports whether digest was made with weaker parameters or a
// different key length than the hasher now uses.
func (a *Argon2) NeedsUpgrade(digest string) (bool, error) {
	d, err := decodePHC(digest)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}

	weaker := d.memory < a.memory || d.time < a.time || d.threads < a.threads
	return weaker || uint32(len(d.key)) != a.keyLen, nil
}

func decodePHC(s string) (phcDigest, error) {
	// "", "argon2id", "v=19", params, salt, key
	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[0] != "" {
		return phcDigest{}, errors.New("not a PHC string")
	}
	if parts[1] != argon2idName {
		return phcDigest{}, fmt.Errorf("unsupported algorithm %q", parts[1])
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return phcDigest{}, fmt.Errorf("unsupported argon2 version %q", parts[2])
	}

	var d phcDigest
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &d.memory, &d.time, &d.threads); err != nil {
		return phcDigest{}, fmt.Errorf("parameters %q: %v", parts[3], err)
	}
	// Sscanf stops early on trailing input; only the canonical form is accepted.
	if d.params() != parts[3] {
		return phcDigest{}, fmt.Errorf("non-canonical parameters %q", parts[3])
	}
	if d.memory < argon2MinMemoryKB || d.time < argon2MinTime || d.threads < argon2MinThreads {
		return phcDigest{}, fmt.Errorf("parameters %q below minimum", parts[3])
	}

	var err error
	if d.salt, err = phcEncoding.DecodeString(parts[4]); err != nil || uint32(len(d.salt)) < argon2MinSaltLen {
		return phcDigest{}, errors.New("bad salt")
	}
	if d.key, err = phcEncoding.DecodeString(parts[5]); err != nil || len(d.key) == 0 {
		return phcDigest{}, errors.New("bad key")
	}

	return d, nil
}
