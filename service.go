package sharedauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MrEthical07/sharedauth/credential"
	"github.com/MrEthical07/sharedauth/internal/rate"
	"github.com/MrEthical07/sharedauth/password"
	"github.com/MrEthical07/sharedauth/session"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// timingPlaceholder is hashed once at build time; Login verifies against
// the resulting digest when the email is unknown.
const timingPlaceholder = "timing-equalizer-password"

// Service is the auth service. Build it with [Builder].
type Service struct {
	config   Config
	users    credential.Store
	hasher   password.Hasher
	sessions *session.Manager
	limiter  *rate.Limiter
	metrics  *Metrics
	audit    *auditDispatcher
	logger   zerolog.Logger

	dummyDigest string
	now         func() time.Time
}

// Sessions returns the session manager used by the service, for request
// middleware.
func (s *Service) Sessions() *session.Manager {
	if s == nil {
		return nil
	}
	return s.sessions
}

// Config returns a copy of the validated configuration.
func (s *Service) Config() Config {
	return cloneConfig(s.config)
}

// Signup validates req, hashes the password and inserts the account. A
// concurrent signup for the same email yields exactly one success; the
// others get [ErrConflict].
func (s *Service) Signup(ctx context.Context, req SignupRequest) (PublicUser, error) {
	if s == nil || s.users == nil {
		return PublicUser{}, ErrServiceNotReady
	}

	in, err := validateSignup(req)
	if err != nil {
		s.metrics.Inc(MetricSignupInvalid)
		return PublicUser{}, err
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		var policy *password.PolicyError
		if errors.As(err, &policy) {
			s.metrics.Inc(MetricSignupInvalid)
			return PublicUser{}, validationError(policy.Reason)
		}
		return PublicUser{}, fmt.Errorf("hash password: %w", err)
	}

	dbCtx, cancel := s.credentialContext(ctx)
	id, err := s.users.Create(dbCtx, credential.NewUser{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: digest,
		CreatedAt:    s.clock(),
	})
	cancel()
	if err != nil {
		if errors.Is(err, credential.ErrDuplicateEmail) {
			s.metrics.Inc(MetricSignupDuplicate)
			s.emitAudit(ctx, AuditSignupDuplicate, false, 0, ErrConflict, nil)
			return PublicUser{}, ErrConflict
		}
		return PublicUser{}, s.persistenceError(err)
	}

	dbCtx, cancel = s.credentialContext(ctx)
	u, err := s.users.FindByID(dbCtx, id)
	cancel()
	if err != nil {
		return PublicUser{}, s.persistenceError(err)
	}

	s.metrics.Inc(MetricSignupSuccess)
	s.emitAudit(ctx, AuditSignupSuccess, true, u.ID, nil, nil)

	return publicUser(u), nil
}

// Login checks the credentials, stamps last_login and binds the user to h.
// The returned cookie must be set on the response before the body is
// written. A session that cannot be saved fails the login with [ErrSession].
func (s *Service) Login(ctx context.Context, req LoginRequest, h *session.Handle) (UserSummary, *http.Cookie, error) {
	if s == nil || s.users == nil || s.sessions == nil {
		return UserSummary{}, nil, ErrServiceNotReady
	}
	if h == nil {
		return UserSummary{}, nil, fmt.Errorf("%w: nil session handle", ErrSession)
	}

	start := time.Now()
	defer func() {
		s.metrics.Observe(MetricLoginLatency, time.Since(start))
	}()

	in, err := validateLogin(req)
	if err != nil {
		return UserSummary{}, nil, err
	}

	ip := clientIPFromContext(ctx)

	cacheCtx, cancel := s.cacheContext(ctx)
	err = s.limiter.CheckLogin(cacheCtx, in.Email, ip)
	cancel()
	if err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			s.metrics.Inc(MetricLoginRateLimited)
			s.emitAudit(ctx, AuditLoginRateLimited, false, 0, ErrRateLimited, nil)
			return UserSummary{}, nil, ErrRateLimited
		}
		s.logger.Warn().Err(err).Msg("login throttle unavailable")
	}

	dbCtx, cancel := s.credentialContext(ctx)
	u, err := s.users.FindByEmail(dbCtx, in.Email)
	cancel()
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			_, _ = s.hasher.Verify(in.Password, s.dummyDigest)
			s.loginFailed(ctx, in.Email, ip, 0, "unknown_email")
			return UserSummary{}, nil, ErrInvalidCredentials
		}
		return UserSummary{}, nil, s.persistenceError(err)
	}

	ok, err := s.hasher.Verify(in.Password, u.PasswordHash)
	if err != nil && !errors.Is(err, password.ErrPolicy) {
		s.logger.Error().Err(err).Int64("user_id", u.ID).Msg("stored password digest unreadable")
		return UserSummary{}, nil, s.persistenceError(err)
	}
	if !ok {
		s.loginFailed(ctx, in.Email, ip, u.ID, "password_mismatch")
		return UserSummary{}, nil, ErrInvalidCredentials
	}

	now := s.clock()
	dbCtx, cancel = s.credentialContext(ctx)
	err = s.users.UpdateLastLogin(dbCtx, u.ID, now)
	cancel()
	if err != nil {
		return UserSummary{}, nil, s.persistenceError(err)
	}

	if s.limiter.Enabled() {
		cacheCtx, cancel := s.cacheContext(ctx)
		if err := s.limiter.ResetLogin(cacheCtx, in.Email); err != nil {
			s.logger.Warn().Err(err).Msg("reset login throttle")
		}
		cancel()
	}

	summary := summaryOf(u, now)
	firstSave := h.ID() == ""
	s.sessions.SetUser(h, summary)

	cookie, err := s.sessions.Save(ctx, h)
	if err != nil {
		s.metrics.Inc(MetricSessionSaveFailure)
		s.emitAudit(ctx, AuditSessionSaveFailed, false, u.ID, err, nil)
		s.logger.Error().Err(err).Int64("user_id", u.ID).Msg("save session after login")
		return UserSummary{}, nil, fmt.Errorf("%w: %w", ErrSession, err)
	}

	if firstSave {
		s.metrics.Inc(MetricSessionCreated)
	}
	s.metrics.Inc(MetricLoginSuccess)
	s.emitAudit(ctx, AuditLoginSuccess, true, u.ID, nil, nil)

	return summary, cookie, nil
}

// Logout destroys the session behind h and returns the clearing cookie.
// Logging out an anonymous session succeeds.
func (s *Service) Logout(ctx context.Context, h *session.Handle) (*http.Cookie, error) {
	if s == nil || s.sessions == nil {
		return nil, ErrServiceNotReady
	}
	if h == nil {
		return nil, fmt.Errorf("%w: nil session handle", ErrSession)
	}

	var userID int64
	if u, ok := s.sessions.CurrentUser(h); ok {
		userID = u.ID
	}

	cookie, err := s.sessions.Destroy(ctx, h)
	if err != nil {
		s.metrics.Inc(MetricSessionSaveFailure)
		s.emitAudit(ctx, AuditSessionSaveFailed, false, userID, err, nil)
		return nil, fmt.Errorf("%w: %w", ErrSession, err)
	}

	s.metrics.Inc(MetricLogout)
	s.emitAudit(ctx, AuditLogout, true, userID, nil, nil)

	return cookie, nil
}

// CurrentUser returns the user bound to h. It never touches a store.
func (s *Service) CurrentUser(h *session.Handle) (UserSummary, bool) {
	if s == nil || s.sessions == nil {
		return UserSummary{}, false
	}
	return s.sessions.CurrentUser(h)
}

// ListUsers returns every account ordered by id.
func (s *Service) ListUsers(ctx context.Context) ([]PublicUser, error) {
	if s == nil || s.users == nil {
		return nil, ErrServiceNotReady
	}

	dbCtx, cancel := s.credentialContext(ctx)
	defer cancel()

	users, err := s.users.List(dbCtx)
	if err != nil {
		return nil, s.persistenceError(err)
	}

	out := make([]PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, publicUser(u))
	}
	return out, nil
}

// MetricsSnapshot returns a copy of the service counters.
func (s *Service) MetricsSnapshot() MetricsSnapshot {
	if s == nil {
		return (*Metrics)(nil).Snapshot()
	}
	return s.metrics.Snapshot()
}

// AuditDropped returns how many audit events were dropped on a full queue.
func (s *Service) AuditDropped() uint64 {
	if s == nil {
		return 0
	}
	return s.audit.Dropped()
}

// Close flushes queued audit events. Stores are owned by the caller.
func (s *Service) Close() {
	if s == nil {
		return
	}
	s.audit.Close()
}

func (s *Service) loginFailed(ctx context.Context, email, ip string, userID int64, reason string) {
	s.metrics.Inc(MetricLoginFailure)
	s.emitAudit(ctx, AuditLoginFailure, false, userID, ErrInvalidCredentials, map[string]string{"reason": reason})

	if !s.limiter.Enabled() {
		return
	}
	cacheCtx, cancel := s.cacheContext(ctx)
	defer cancel()
	if err := s.limiter.IncrementLogin(cacheCtx, email, ip); err != nil && !errors.Is(err, rate.ErrRateLimited) {
		s.logger.Warn().Err(err).Msg("record failed login")
	}
}

// credentialContext detaches a credential store call from the caller's
// cancellation and bounds it with Credential.Timeout.
func (s *Service) credentialContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.config.Credential.Timeout)
}

// cacheContext does the same for throttle counters in Redis.
func (s *Service) cacheContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.config.Session.StoreTimeout)
}

func (s *Service) persistenceError(err error) error {
	s.metrics.Inc(MetricPersistenceFailure)
	s.logger.Error().Err(err).Msg("credential store failure")
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}

// clock reads the time once per operation; stored and session timestamps
// share this value.
func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *Service) emitAudit(ctx context.Context, eventType string, success bool, userID int64, err error, metadata map[string]string) {
	if s.audit == nil {
		return
	}

	event := AuditEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		RequestID: RequestIDFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if err != nil {
		event.Error = err.Error()
	}

	s.audit.Emit(ctx, event)
}
