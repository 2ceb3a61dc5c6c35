package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable wraps every Redis failure other than a missing key.
var ErrStoreUnavailable = errors.New("session store unavailable")

// ErrSessionNotFound is returned by Get when the key does not exist or has expired.
var ErrSessionNotFound = errors.New("session not found")

// Store is a Redis-backed session store. Each session lives under a single
// key holding its encoded [State], with the Redis TTL matching the state's
// remaining lifetime.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a session [Store] backed by the given Redis client.
// prefix sets the Redis key namespace.
func NewStore(redis redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "sess"
	}
	return &Store{redis: redis, prefix: prefix}
}

func (s *Store) key(sessionID string) string {
	return s.prefix + ":" + sessionID
}

// Save writes state under sessionID with the given TTL in a single SET.
//
//	Performance: 1 Redis command.
func (s *Store) Save(ctx context.Context, sessionID string, state *State, ttl time.Duration) error {
	if sessionID == "" {
		return errors.New("empty session id")
	}
	if ttl <= 0 {
		return errors.New("session ttl must be positive")
	}

	data, err := Encode(state)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(sessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Replace writes state under sessionID and deletes previousID in one
// MULTI/EXEC so the old id never outlives the new one.
//
//	Performance: 1 Redis transaction (SET + DEL).
func (s *Store) Replace(ctx context.Context, previousID, sessionID string, state *State, ttl time.Duration) error {
	if sessionID == "" {
		return errors.New("empty session id")
	}
	if ttl <= 0 {
		return errors.New("session ttl must be positive")
	}

	data, err := Encode(state)
	if err != nil {
		return err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(sessionID), data, ttl)
		if previousID != "" && previousID != sessionID {
			pipe.Del(ctx, s.key(previousID))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Get loads and decodes the state for sessionID. A blob that fails to decode
// is returned as [ErrCorruptState].
//
//	Performance: 1 Redis GET.
func (s *Store) Get(ctx context.Context, sessionID string) (*State, error) {
	data, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return Decode(data)
}

// Delete removes sessionID. Deleting a missing key is not an error.
//
//	Performance: 1 Redis DEL.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.redis.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return time.Since(start), nil
}
