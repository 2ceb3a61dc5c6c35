package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestSetupDisabledWithoutEndpoint(t *testing.T) {
	provider, shutdown, err := Setup(context.Background(), Config{ServiceName: "api"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider != nil {
		t.Fatal("expected no provider without an endpoint")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("noop shutdown should not error: %v", err)
	}
}

func TestSetupRejectsNegativeInterval(t *testing.T) {
	if _, _, err := Setup(context.Background(), Config{Endpoint: "http://127.0.0.1:4318/v1/metrics", Interval: -time.Second}); err == nil {
		t.Fatal("expected negative interval to be rejected")
	}
}

func TestSetupPushesOnShutdown(t *testing.T) {
	var posts atomic.Int32
	var path atomic.Value
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			posts.Add(1)
			path.Store(r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	provider, shutdown, err := Setup(context.Background(), Config{
		ServiceName: "api",
		Endpoint:    collector.URL + "/v1/metrics",
		Interval:    time.Hour,
	})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if provider == nil {
		t.Fatal("expected a provider when an endpoint is set")
	}

	counter, err := provider.Meter("telemetry_test").Int64Counter("logins")
	if err != nil {
		t.Fatalf("counter: %v", err)
	}
	counter.Add(context.Background(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if posts.Load() == 0 {
		t.Fatal("expected the final collection to be pushed")
	}
	if got, _ := path.Load().(string); got != "/v1/metrics" {
		t.Fatalf("pushed to %q, want /v1/metrics", got)
	}
}
