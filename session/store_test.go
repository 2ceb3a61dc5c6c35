package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newSessionStoreTest(t *testing.T) (*Store, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(rdb, "test")
	return store, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestStoreSaveGet(t *testing.T) {
	store, mr, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	state := testState()
	if err := store.Save(ctx, "sid-1", state, time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}

	if ttl := mr.TTL("test:sid-1"); ttl != time.Hour {
		t.Fatalf("expected ttl 1h, got %v", ttl)
	}

	got, err := store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.User == nil || got.User.Email != state.User.Email {
		t.Fatalf("unexpected state %+v", got)
	}
}

func TestStoreGetMissing(t *testing.T) {
	store, _, done := newSessionStoreTest(t)
	defer done()

	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStoreGetExpiredKey(t *testing.T) {
	store, mr, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, "sid-1", testState(), time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, "sid-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after expiry, got %v", err)
	}
}

func TestStoreGetCorrupt(t *testing.T) {
	store, mr, done := newSessionStoreTest(t)
	defer done()

	if err := mr.Set("test:sid-bad", "bad"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.Get(context.Background(), "sid-bad"); !errors.Is(err, ErrCorruptState) {
		t.Fatalf("expected ErrCorruptState, got %v", err)
	}
}

func TestStoreDeleteIdempotent(t *testing.T) {
	store, mr, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, "sid-1", testState(), time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := store.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if mr.Exists("test:sid-1") {
		t.Fatal("expected key to be gone")
	}
}

func TestStoreReplaceRemovesPrevious(t *testing.T) {
	store, mr, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, "old", testState(), time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Replace(ctx, "old", "new", testState(), time.Hour); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if mr.Exists("test:old") {
		t.Fatal("expected previous key to be deleted")
	}
	if !mr.Exists("test:new") {
		t.Fatal("expected new key to exist")
	}
}

func TestStoreUnavailable(t *testing.T) {
	store, mr, done := newSessionStoreTest(t)
	defer done()
	ctx := context.Background()

	mr.Close()

	if err := store.Save(ctx, "sid-1", testState(), time.Hour); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("save: expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := store.Get(ctx, "sid-1"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("get: expected ErrStoreUnavailable, got %v", err)
	}
	if err := store.Delete(ctx, "sid-1"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("delete: expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := store.Ping(ctx); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("ping: expected ErrStoreUnavailable, got %v", err)
	}
}

func TestStoreRejectsNonPositiveTTL(t *testing.T) {
	store, _, done := newSessionStoreTest(t)
	defer done()

	if err := store.Save(context.Background(), "sid-1", testState(), 0); err == nil {
		t.Fatal("expected zero ttl to be rejected")
	}
}
