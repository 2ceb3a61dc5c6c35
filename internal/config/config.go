// Package config reads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/sharedauth"
	"github.com/MrEthical07/sharedauth/credential"
	"github.com/MrEthical07/sharedauth/password"
	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
)

const devSessionSecret = "dev-only-session-secret-change-me"

// Env holds every environment variable the api and web processes read.
type Env struct {
	AppEnv     string `env:"APP_ENV"     envDefault:"development"`
	Port       int    `env:"PORT"        envDefault:"3000"`
	ServerName string `env:"SERVER_NAME" envDefault:"sharedauth"`

	// TrustedProxies lists CIDRs or addresses whose forwarding headers are
	// honored when deriving the client address.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	DBDriver  string `env:"DB_DRIVER"  envDefault:"postgres"`
	DBHost    string `env:"DB_HOST"    envDefault:"localhost"`
	DBPort    int    `env:"DB_PORT"    envDefault:"5432"`
	DBUser    string `env:"DB_USER"    envDefault:"postgres"`
	DBPass    string `env:"DB_PASS"`
	DBName    string `env:"DB_NAME"    envDefault:"sharedauth"`
	DBSSLMode string `env:"DB_SSLMODE" envDefault:"disable"`
	DBDSN     string `env:"DB_DSN"`
	// DBTimeout bounds each credential query and the postgres connect.
	DBTimeout time.Duration `env:"DB_TIMEOUT" envDefault:"5s"`

	RedisHost     string `env:"REDIS_HOST"     envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT"     envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"       envDefault:"0"`

	SessionSecret     string        `env:"SESSION_SECRET"`
	SessionTTL        time.Duration `env:"SESSION_TTL"         envDefault:"24h"`
	SessionCookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"sid"`
	CookieDomain      string        `env:"COOKIE_DOMAIN"`
	SessionKeyPrefix  string        `env:"SESSION_KEY_PREFIX"  envDefault:"sess"`
	StoreTimeout      time.Duration `env:"STORE_TIMEOUT"       envDefault:"2s"`
	HealthTimeout     time.Duration `env:"HEALTH_TIMEOUT"      envDefault:"2s"`
	HealthInterval    time.Duration `env:"HEALTH_INTERVAL"     envDefault:"30s"`

	PasswordAlgorithm string `env:"PASSWORD_ALGORITHM" envDefault:"argon2id"`
	BcryptCost        int    `env:"BCRYPT_COST"        envDefault:"12"`

	LoginRedirect    string        `env:"LOGIN_REDIRECT"     envDefault:"/home"`
	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginCooldown    time.Duration `env:"LOGIN_COOLDOWN"     envDefault:"15m"`

	LogLevel       string `env:"LOG_LEVEL"       envDefault:"info"`
	LogPretty      bool   `env:"LOG_PRETTY"      envDefault:"false"`
	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	AuditEnabled   bool   `env:"AUDIT_ENABLED"   envDefault:"false"`

	// OTLPMetricsEndpoint enables pushing OpenTelemetry metrics when set.
	OTLPMetricsEndpoint string        `env:"OTEL_METRICS_ENDPOINT"`
	OTLPMetricsInterval time.Duration `env:"OTEL_METRICS_INTERVAL" envDefault:"1m"`
}

// Load parses the environment and checks cross-field rules.
func Load() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	if err := e.Validate(); err != nil {
		return Env{}, err
	}
	return e, nil
}

// Production reports whether APP_ENV is production.
func (e Env) Production() bool {
	return strings.EqualFold(e.AppEnv, "production")
}

// Validate rejects settings that would be unsafe or unusable.
func (e Env) Validate() error {
	if e.Port <= 0 || e.Port > 65535 {
		return fmt.Errorf("PORT %d out of range", e.Port)
	}
	switch e.DBDriver {
	case credential.DriverPostgres, credential.DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q", credential.DriverPostgres, credential.DriverSQLite)
	}
	if e.DBDriver == credential.DriverSQLite && e.DBDSN == "" {
		return errors.New("DB_DSN is required for the sqlite driver")
	}
	if e.Production() && len(e.SessionSecret) < 32 {
		return errors.New("SESSION_SECRET of at least 32 bytes is required in production")
	}
	if e.LoginRedirect != "/home" && e.LoginRedirect != "/profile" {
		return errors.New("LOGIN_REDIRECT must be /home or /profile")
	}
	return nil
}

// Addr is the listen address.
func (e Env) Addr() string {
	return ":" + strconv.Itoa(e.Port)
}

// DatabaseDSN returns DB_DSN when set, otherwise a postgres URL built from
// the DB_* parts.
func (e Env) DatabaseDSN() string {
	if e.DBDSN != "" {
		return e.DBDSN
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(e.DBUser, e.DBPass),
		Host:   net.JoinHostPort(e.DBHost, strconv.Itoa(e.DBPort)),
		Path:   "/" + e.DBName,
	}
	q := url.Values{}
	q.Set("sslmode", e.DBSSLMode)
	q.Set("connect_timeout", strconv.Itoa(connectTimeoutSeconds(e.DBTimeout)))
	u.RawQuery = q.Encode()
	return u.String()
}

// lib/pq takes whole seconds; zero would mean wait forever.
func connectTimeoutSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// RedisOptions returns client options for the shared session store.
func (e Env) RedisOptions() *redis.Options {
	return &redis.Options{
		Addr:         net.JoinHostPort(e.RedisHost, strconv.Itoa(e.RedisPort)),
		Password:     e.RedisPassword,
		DB:           e.RedisDB,
		DialTimeout:  e.StoreTimeout,
		ReadTimeout:  e.StoreTimeout,
		WriteTimeout: e.StoreTimeout,
	}
}

// ServiceConfig maps the environment onto the auth service configuration.
func (e Env) ServiceConfig() sharedauth.Config {
	cfg := sharedauth.DefaultConfig()

	secret := e.SessionSecret
	if secret == "" && !e.Production() {
		secret = devSessionSecret
	}

	cfg.Session.Secret = []byte(secret)
	cfg.Session.TTL = e.SessionTTL
	cfg.Session.StoreTimeout = e.StoreTimeout
	cfg.Session.RedisPrefix = e.SessionKeyPrefix
	cfg.Session.CookieName = e.SessionCookieName
	cfg.Session.CookieDomain = e.CookieDomain
	cfg.Session.SecureCookie = e.Production()

	cfg.Credential.Timeout = e.DBTimeout

	cfg.Password.Algorithm = password.Algorithm(strings.ToLower(e.PasswordAlgorithm))
	cfg.Password.BcryptCost = e.BcryptCost

	cfg.Security.MaxLoginAttempts = e.LoginMaxAttempts
	cfg.Security.LoginCooldownDuration = e.LoginCooldown

	cfg.Metrics.Enabled = e.MetricsEnabled
	cfg.Metrics.EnableLatencyHistograms = e.MetricsEnabled
	cfg.Audit.Enabled = e.AuditEnabled

	return cfg
}
