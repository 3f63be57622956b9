package login

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"

	redisx "onesocial-server/internal/shared/redis"
)

// StateStore issues and consumes one-time state nonces for the
// authorization redirect. Consumption is lenient at the callback: a
// miss is logged, not fatal, so replayed or stateless callbacks still
// follow the documented completion contract.
type StateStore interface {
	Issue(ctx context.Context) (string, error)
	Consume(ctx context.Context, state string) bool
}

func newState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewStateStore returns the redis-backed store when redis is connected,
// or the in-memory fallback otherwise.
func NewStateStore(rdb *redisx.Client, ttl time.Duration) StateStore {
	if rdb != nil {
		return &redisStateStore{rdb: rdb, ttl: ttl}
	}
	return newMemoryStateStore(ttl)
}

type redisStateStore struct {
	rdb *redisx.Client
	ttl time.Duration
}

func (s *redisStateStore) key(state string) string {
	return "login:state:" + state
}

func (s *redisStateStore) Issue(ctx context.Context) (string, error) {
	state, err := newState()
	if err != nil {
		return "", err
	}

	if err := s.rdb.Set(ctx, s.key(state), "1", s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store state token: %w", err)
	}

	return state, nil
}

func (s *redisStateStore) Consume(ctx context.Context, state string) bool {
	res, err := s.rdb.GetDel(ctx, s.key(state)).Result()
	if err != nil {
		return false
	}
	return res != ""
}

type memoryStateStore struct {
	ttl    time.Duration
	mu     sync.Mutex
	states map[string]time.Time
}

func newMemoryStateStore(ttl time.Duration) *memoryStateStore {
	s := &memoryStateStore{
		ttl:    ttl,
		states: make(map[string]time.Time),
	}
	go s.cleanupLoop()
	return s
}

func (s *memoryStateStore) Issue(ctx context.Context) (string, error) {
	state, err := newState()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.states[state] = time.Now()
	s.mu.Unlock()

	return state, nil
}

func (s *memoryStateStore) Consume(ctx context.Context, state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, ok := s.states[state]
	if !ok {
		return false
	}
	delete(s.states, state)

	return time.Since(created) <= s.ttl
}

func (s *memoryStateStore) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	logger := slog.With("component", "state_store", "operation", "cleanup")

	for range ticker.C {
		s.mu.Lock()
		expired := 0
		for state, created := range s.states {
			if time.Since(created) > s.ttl {
				delete(s.states, state)
				expired++
			}
		}
		remaining := len(s.states)
		s.mu.Unlock()

		if expired > 0 {
			logger.Debug("Cleaned up expired state tokens",
				"expired_count", expired,
				"remaining_count", remaining)
		}
	}
}
