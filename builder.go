package sharedauth

import (
	"errors"
	"time"

	"github.com/MrEthical07/sharedauth/credential"
	"github.com/MrEthical07/sharedauth/internal/rate"
	"github.com/MrEthical07/sharedauth/password"
	"github.com/MrEthical07/sharedauth/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Builder assembles a [Service]. Each builder may be used once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	users     credential.Store
	hasher    password.Hasher
	auditSink AuditSink
	logger    zerolog.Logger

	built bool
}

// New returns a builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
		logger: zerolog.Nop(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the client shared by sessions and login throttling.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithCredentialStore sets the account store.
func (b *Builder) WithCredentialStore(store credential.Store) *Builder {
	b.users = store
	return b
}

// WithHasher overrides the hasher built from Config.Password.
func (b *Builder) WithHasher(h password.Hasher) *Builder {
	b.hasher = h
	return b
}

// WithAuditSink sets where audit events go when Config.Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the service logger.
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the login latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the service.
func (b *Builder) Build() (*Service, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.users == nil {
		return nil, errors.New("credential store required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger.With().Str("component", "auth").Logger()

	// -------- SESSIONS --------
	manager, err := session.NewManager(
		session.NewStore(b.redis, cfg.Session.RedisPrefix),
		cfg.sessionConfig(),
		b.logger,
	)
	if err != nil {
		return nil, err
	}

	// -------- PASSWORDS --------
	hasher := b.hasher
	if hasher == nil {
		hasher, err = password.NewHasher(cfg.passwordConfig())
		if err != nil {
			return nil, err
		}
	}
	dummy, err := hasher.Hash(timingPlaceholder)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		config:      cfg,
		users:       b.users,
		hasher:      hasher,
		sessions:    manager,
		limiter:     rate.New(b.redis, cfg.rateConfig()),
		metrics:     NewMetrics(cfg.Metrics),
		audit:       newAuditDispatcher(cfg.Audit, b.auditSink),
		logger:      logger,
		dummyDigest: dummy,
		now:         time.Now,
	}

	b.built = true

	return svc, nil
}
