// Package session reads the per-browser-session key/value storage the
// web client keeps (the "userID" item in particular).
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/DurgaPrasad-54/helpline104-feedback/pkg/utils"
	"github.com/go-redis/redis/v8"
)

// UserIDKey is the item a logged-in session stores its user id under.
const UserIDKey = "userID"

var ErrInvalidSession = errors.New("invalid session id")

// Store is session storage scoped to one session.
type Store interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// RedisStore keeps one redis hash per session: <prefix>:<sessionID>.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, prefix, sessionID string, ttl time.Duration) (*RedisStore, error) {
	if !utils.ValidateSessionID(sessionID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSession, sessionID)
	}
	return &RedisStore{
		client: client,
		key:    fmt.Sprintf("%s:%s", prefix, sessionID),
		ttl:    ttl,
	}, nil
}

func (s *RedisStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.HGet(ctx, s.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session item %s: %w", key, err)
	}
	return value, true, nil
}

func (s *RedisStore) SetItem(ctx context.Context, key, value string) error {
	if err := s.client.HSet(ctx, s.key, key, value).Err(); err != nil {
		return fmt.Errorf("failed to write session item %s: %w", key, err)
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, s.key, s.ttl).Err(); err != nil {
			return fmt.Errorf("failed to refresh session ttl: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) RemoveItem(ctx context.Context, key string) error {
	return s.client.HDel(ctx, s.key, key).Err()
}

// MemoryStore is an in-process Store, used when no session backend is
// configured.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]string)}
}

func (s *MemoryStore) GetItem(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.items[key]
	return value, ok, nil
}

func (s *MemoryStore) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

func (s *MemoryStore) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}
