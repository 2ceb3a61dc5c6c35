package sharedauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrEthical07/sharedauth/credential"
	"github.com/MrEthical07/sharedauth/password"
	"github.com/MrEthical07/sharedauth/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	return mr, client
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Session.Secret = testSecret
	cfg.Password.Algorithm = password.AlgorithmBcrypt
	cfg.Password.BcryptCost = 4
	return cfg
}

func newTestService(t testing.TB, mutate func(*Config)) (*Service, *miniredis.Miniredis, *credential.SQLStore, func()) {
	t.Helper()
	return newTestServiceWithSink(t, mutate, nil)
}

func newTestServiceWithSink(t testing.TB, mutate func(*Config), sink AuditSink) (*Service, *miniredis.Miniredis, *credential.SQLStore, func()) {
	t.Helper()

	mr, rdb := newTestRedis(t)

	users, err := credential.Open(context.Background(), credential.DriverSQLite, ":memory:")
	if err != nil {
		mr.Close()
		t.Fatalf("open credential store: %v", err)
	}

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	svc, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithCredentialStore(users).
		WithAuditSink(sink).
		Build()
	if err != nil {
		_ = users.Close()
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	return svc, mr, users, func() {
		svc.Close()
		_ = users.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

// resolve simulates a fresh request carrying cookie, as if served by any
// process sharing the store.
func resolve(svc *Service, cookie *http.Cookie) *session.Handle {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return svc.Sessions().Resolve(req.Context(), req)
}

func signup(t testing.TB, svc *Service, name, email, pass string) PublicUser {
	t.Helper()

	u, err := svc.Signup(context.Background(), SignupRequest{Name: name, Email: email, Password: pass})
	if err != nil {
		t.Fatalf("signup %s: %v", email, err)
	}
	return u
}
