package sharedauth

import (
	"net/http"
	"time"

	"github.com/MrEthical07/sharedauth/password"
)

// SecurityReport summarizes the effective security posture of a built
// Service. It carries no secrets.
type SecurityReport struct {
	SecureCookie       bool
	SameSite           http.SameSite
	CookieDomain       string
	SessionTTL         time.Duration
	StoreTimeout       time.Duration
	Password           PasswordConfigReport
	RateLimitingActive bool
	IPThrottleActive   bool
	AuditEnabled       bool
	MetricsEnabled     bool
}

// PasswordConfigReport lists the cost parameters of the active hasher.
type PasswordConfigReport struct {
	Algorithm   password.Algorithm
	Memory      uint32
	Time        uint32
	Parallelism uint8
	BcryptCost  int
	MinBytes    int
	MaxBytes    int
}

// SecurityReport returns the posture derived from the service config.
func (s *Service) SecurityReport() SecurityReport {
	if s == nil {
		return SecurityReport{}
	}

	cfg := s.config
	rateLimiting := cfg.Security.MaxLoginAttempts > 0 &&
		cfg.Security.LoginCooldownDuration > 0

	report := SecurityReport{
		SecureCookie:       cfg.Session.SecureCookie,
		SameSite:           cfg.Session.SameSite,
		CookieDomain:       cfg.Session.CookieDomain,
		SessionTTL:         cfg.Session.TTL,
		StoreTimeout:       cfg.Session.StoreTimeout,
		RateLimitingActive: rateLimiting,
		IPThrottleActive:   rateLimiting && cfg.Security.EnableIPThrottle,
		AuditEnabled:       cfg.Audit.Enabled,
		MetricsEnabled:     cfg.Metrics.Enabled,
		Password: PasswordConfigReport{
			Algorithm: cfg.Password.Algorithm,
			MinBytes:  cfg.Password.MinPasswordBytes,
			MaxBytes:  cfg.Password.MaxPasswordBytes,
		},
	}

	switch cfg.Password.Algorithm {
	case password.AlgorithmBcrypt:
		report.Password.BcryptCost = cfg.Password.BcryptCost
	default:
		report.Password.Memory = cfg.Password.Memory
		report.Password.Time = cfg.Password.Time
		report.Password.Parallelism = cfg.Password.Parallelism
	}

	return report
}

// Warnings lists settings that are acceptable in development but weak in
// production.
func (r SecurityReport) Warnings() []string {
	var out []string
	if !r.SecureCookie {
		out = append(out, "session cookie is sent over plain http")
	}
	if !r.RateLimitingActive {
		out = append(out, "login throttling is disabled")
	}
	if r.SessionTTL > 7*24*time.Hour {
		out = append(out, "session lifetime exceeds 7 days")
	}
	if r.Password.Algorithm == password.AlgorithmBcrypt && r.Password.BcryptCost < 10 {
		out = append(out, "bcrypt cost below 10")
	}
	return out
}
