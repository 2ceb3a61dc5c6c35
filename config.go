package sharedauth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/MrEthical07/sharedauth/internal/rate"
	"github.com/MrEthical07/sharedauth/password"
	"github.com/MrEthical07/sharedauth/session"
)

// Config is the full service configuration. Build it from [DefaultConfig]
// and override fields; [Builder.Build] validates it.
type Config struct {
	Session    SessionConfig
	Credential CredentialConfig
	Password   PasswordConfig
	Security   SecurityConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls the session cookie and its Redis records.
type SessionConfig struct {
	RedisPrefix  string
	TTL          time.Duration
	StoreTimeout time.Duration
	// Secret signs the cookie value. Every process sharing sessions must use
	// the same secret.
	Secret []byte
	Issuer string

	CookieName   string
	CookieDomain string
	CookiePath   string
	SecureCookie bool
	SameSite     http.SameSite
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig selects and tunes the password hasher.
type PasswordConfig struct {
	Algorithm   password.Algorithm
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	BcryptCost  int

	MinPasswordBytes int
	MaxPasswordBytes int
}

/*
====================================
CREDENTIAL CONFIG
====================================
*/

// CredentialConfig bounds calls to the credential database. Each call runs
// detached from the caller's cancellation, so a client that disconnects
// mid-signup or mid-login cannot abort a write halfway.
type CredentialConfig struct {
	Timeout time.Duration
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig controls failed-login throttling. MaxLoginAttempts of zero
// disables it.
type SecurityConfig struct {
	EnableIPThrottle      bool
	MaxLoginAttempts      int
	LoginCooldownDuration time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls in-process counters and the login latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns a configuration suitable for development. Session.Secret
// is left empty and must be supplied.
func DefaultConfig() Config {
	pw := password.DefaultConfig()
	return Config{
		Session: SessionConfig{
			RedisPrefix:  "sess",
			TTL:          24 * time.Hour,
			StoreTimeout: 2 * time.Second,
			Issuer:       "sharedauth",
			CookieName:   session.DefaultCookieName,
			CookiePath:   "/",
			SameSite:     http.SameSiteLaxMode,
		},
		Password: PasswordConfig{
			Algorithm:        pw.Algorithm,
			Memory:           pw.Memory,
			Time:             pw.Time,
			Parallelism:      pw.Parallelism,
			SaltLength:       pw.SaltLength,
			KeyLength:        pw.KeyLength,
			BcryptCost:       pw.BcryptCost,
			MinPasswordBytes: pw.MinPasswordBytes,
			MaxPasswordBytes: pw.MaxPasswordBytes,
		},
		Security: SecurityConfig{
			EnableIPThrottle:      false,
			MaxLoginAttempts:      5,
			LoginCooldownDuration: 15 * time.Minute,
		},
		Credential: CredentialConfig{
			Timeout: 5 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Session.Secret = cloneBytes(cfg.Session.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	// Session
	if strings.TrimSpace(c.Session.RedisPrefix) == "" {
		return errors.New("Session RedisPrefix must not be empty")
	}
	if strings.Contains(c.Session.RedisPrefix, ":") {
		return errors.New("Session RedisPrefix must not contain ':'")
	}
	if c.Session.TTL < time.Second {
		return errors.New("Session TTL must be >= 1s")
	}
	if c.Session.StoreTimeout <= 0 {
		return errors.New("Session StoreTimeout must be > 0")
	}
	if len(c.Session.Secret) < 16 {
		return errors.New("Session Secret must be at least 16 bytes")
	}
	if c.Session.CookieName == "" {
		return errors.New("Session CookieName must not be empty")
	}
	if c.Session.SameSite == http.SameSiteNoneMode && !c.Session.SecureCookie {
		return errors.New("Session SameSite=None requires SecureCookie")
	}

	// Credential
	if c.Credential.Timeout <= 0 {
		return errors.New("Credential Timeout must be > 0")
	}

	// Password
	switch c.Password.Algorithm {
	case password.AlgorithmArgon2id, password.AlgorithmBcrypt:
	default:
		return errors.New("Password Algorithm must be argon2id or bcrypt")
	}
	if c.Password.MinPasswordBytes < 0 || c.Password.MaxPasswordBytes < 0 {
		return errors.New("Password length limits must be >= 0")
	}
	if c.Password.MaxPasswordBytes > 0 && c.Password.MinPasswordBytes > c.Password.MaxPasswordBytes {
		return errors.New("Password MinPasswordBytes must be <= MaxPasswordBytes")
	}

	// Security
	if c.Security.MaxLoginAttempts < 0 {
		return errors.New("Security MaxLoginAttempts must be >= 0")
	}
	if c.Security.MaxLoginAttempts > 0 && c.Security.LoginCooldownDuration <= 0 {
		return errors.New("Security LoginCooldownDuration must be > 0 when throttling is enabled")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}

func (c Config) sessionConfig() session.Config {
	return session.Config{
		TTL:          c.Session.TTL,
		StoreTimeout: c.Session.StoreTimeout,
		Secret:       cloneBytes(c.Session.Secret),
		Issuer:       c.Session.Issuer,
		Cookie: session.CookieOptions{
			Name:     c.Session.CookieName,
			Path:     c.Session.CookiePath,
			Secure:   c.Session.SecureCookie,
			SameSite: c.Session.SameSite,
			Domain:   c.Session.CookieDomain,
		},
	}
}

func (c Config) passwordConfig() password.Config {
	return password.Config{
		Algorithm:        c.Password.Algorithm,
		Memory:           c.Password.Memory,
		Time:             c.Password.Time,
		Parallelism:      c.Password.Parallelism,
		SaltLength:       c.Password.SaltLength,
		KeyLength:        c.Password.KeyLength,
		BcryptCost:       c.Password.BcryptCost,
		MinPasswordBytes: c.Password.MinPasswordBytes,
		MaxPasswordBytes: c.Password.MaxPasswordBytes,
	}
}

func (c Config) rateConfig() rate.Config {
	return rate.Config{
		EnableIPThrottle:      c.Security.EnableIPThrottle,
		MaxLoginAttempts:      c.Security.MaxLoginAttempts,
		LoginCooldownDuration: c.Security.LoginCooldownDuration,
	}
}
