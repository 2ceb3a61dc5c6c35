package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultTTL          = 24 * time.Hour
	defaultStoreTimeout = 2 * time.Second
)

// Config configures a [Manager].
type Config struct {
	TTL          time.Duration
	StoreTimeout time.Duration
	Secret       []byte
	Issuer       string
	Cookie       CookieOptions
}

// Handle is the per-request view of a session. It is created by
// [Manager.Resolve] and must not be shared between requests.
type Handle struct {
	id         string
	previousID string
	state      State
	host       string
	dirty      bool
}

// ID returns the session id, or "" when the session has never been saved.
func (h *Handle) ID() string { return h.id }

// Dirty reports whether the state changed since it was loaded or saved.
func (h *Handle) Dirty() bool { return h.dirty }

// Authenticated reports whether a user is bound to the session.
func (h *Handle) Authenticated() bool { return h != nil && !h.state.Anonymous() }

// ExpiresAt returns the absolute expiry of a saved session.
func (h *Handle) ExpiresAt() time.Time {
	if h.state.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(h.state.ExpiresAt, 0)
}

// Manager resolves, mutates and persists sessions. The process holds no
// session state between requests; everything lives in the [Store].
type Manager struct {
	store  *Store
	codec  *TokenCodec
	cfg    Config
	logger zerolog.Logger
	now    func() time.Time
}

// NewManager validates cfg and builds a manager over store.
func NewManager(store *Store, cfg Config, logger zerolog.Logger) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if cfg.TTL == 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.TTL < time.Second {
		return nil, errors.New("session ttl must be at least 1s")
	}
	if cfg.StoreTimeout == 0 {
		cfg.StoreTimeout = defaultStoreTimeout
	}
	if cfg.StoreTimeout < 0 {
		return nil, errors.New("session store timeout must not be negative")
	}
	cfg.Cookie = cfg.Cookie.normalize()

	codec, err := NewTokenCodec(cfg.Secret, cfg.Issuer)
	if err != nil {
		return nil, err
	}

	return &Manager{
		store:  store,
		codec:  codec,
		cfg:    cfg,
		logger: logger.With().Str("component", "session").Logger(),
		now:    time.Now,
	}, nil
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string { return m.cfg.Cookie.Name }

// TTL returns the configured absolute session lifetime.
func (m *Manager) TTL() time.Duration { return m.cfg.TTL }

// Resolve returns the session bound to r's cookie, or a fresh anonymous
// handle. It never writes to the store and never fails: a missing or forged
// cookie, an unknown or expired id, a corrupt blob and an unreachable store
// all resolve to anonymous.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) *Handle {
	h := &Handle{state: State{Kind: KindAnonymous}, host: r.Host}

	cookie, err := r.Cookie(m.cfg.Cookie.Name)
	if err != nil || cookie.Value == "" {
		return h
	}

	sessionID, err := m.codec.Parse(cookie.Value)
	if err != nil {
		m.logger.Debug().Err(err).Msg("rejected session cookie")
		return h
	}

	storeCtx, cancel := m.storeContext(ctx)
	defer cancel()

	state, err := m.store.Get(storeCtx, sessionID)
	switch {
	case err == nil:
	case errors.Is(err, ErrSessionNotFound):
		return h
	case errors.Is(err, ErrCorruptState):
		m.logger.Warn().Err(err).Msg("discarding undecodable session")
		return h
	default:
		m.logger.Error().Err(err).Msg("session lookup failed")
		return h
	}

	if state.Anonymous() || state.Expired(m.now()) {
		return h
	}

	h.id = sessionID
	h.state = *state
	return h
}

// CurrentUser returns the user bound to h, if any.
func (m *Manager) CurrentUser(h *Handle) (UserSummary, bool) {
	if !h.Authenticated() {
		return UserSummary{}, false
	}
	return *h.state.User, true
}

// SetUser binds user to h and marks it dirty. Binding a different user than
// the one already present rotates the session id on the next save.
func (m *Manager) SetUser(h *Handle, user UserSummary) {
	if h.Authenticated() && h.state.User.ID != user.ID && h.id != "" {
		h.previousID = h.id
		h.id = ""
	}
	h.state.Kind = KindAuthenticated
	h.state.User = &user
	h.dirty = true
}

// Save persists h and returns the cookie to send. A new id and a fresh
// expiry are assigned on first save; later saves keep the original expiry.
// It must be called before any response bytes are written.
func (m *Manager) Save(ctx context.Context, h *Handle) (*http.Cookie, error) {
	if h == nil {
		return nil, errors.New("nil session handle")
	}

	now := m.now()
	if h.id == "" || h.state.ExpiresAt == 0 || h.state.Expired(now) {
		id, err := GenerateID()
		if err != nil {
			return nil, err
		}
		if h.previousID == "" {
			h.previousID = h.id
		}
		h.id = id
		h.state.CreatedAt = now.Unix()
		h.state.ExpiresAt = now.Add(m.cfg.TTL).Unix()
	}
	h.state.SchemaVersion = CurrentSchemaVersion

	expiresAt := time.Unix(h.state.ExpiresAt, 0)
	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return nil, errors.New("session expired during save")
	}

	storeCtx, cancel := m.storeContext(ctx)
	defer cancel()

	var err error
	if h.previousID != "" {
		err = m.store.Replace(storeCtx, h.previousID, h.id, &h.state, remaining)
	} else {
		err = m.store.Save(storeCtx, h.id, &h.state, remaining)
	}
	if err != nil {
		return nil, err
	}

	value, err := m.codec.Sign(h.id, expiresAt)
	if err != nil {
		return nil, err
	}

	h.previousID = ""
	h.dirty = false
	return m.cfg.Cookie.issue(value, expiresAt, remaining, h.host), nil
}

// Destroy deletes the session and returns a cookie that clears it on the
// client. Destroying an anonymous or already-deleted session is not an error.
func (m *Manager) Destroy(ctx context.Context, h *Handle) (*http.Cookie, error) {
	if h == nil {
		return nil, errors.New("nil session handle")
	}

	storeCtx, cancel := m.storeContext(ctx)
	defer cancel()

	for _, id := range []string{h.id, h.previousID} {
		if id == "" {
			continue
		}
		if err := m.store.Delete(storeCtx, id); err != nil {
			return nil, err
		}
	}

	h.id = ""
	h.previousID = ""
	h.state = State{Kind: KindAnonymous}
	h.dirty = false
	return m.cfg.Cookie.clear(h.host), nil
}

// storeContext detaches store calls from client cancellation and bounds
// them with the configured timeout.
func (m *Manager) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), m.cfg.StoreTimeout)
}
