package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
)

// SessionStore records live sessions so that SignOut revokes a token before
// it expires.
type SessionStore interface {
	Save(ctx context.Context, sess *internal.Session) error
	Get(ctx context.Context, token string) (*internal.User, error)
	Delete(ctx context.Context, token string) error
}

type memoryEntry struct {
	user      internal.User
	expiresAt time.Time
}

type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemorySessionStore) Save(ctx context.Context, sess *internal.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = memoryEntry{user: sess.User, expiresAt: sess.ExpiresAt}
	return nil
}

func (s *MemorySessionStore) Get(ctx context.Context, token string) (*internal.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[token]
	if !ok {
		return nil, internal.ErrUnauthorized
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.sessions, token)
		return nil, internal.ErrUnauthorized
	}
	u := e.user
	return &u, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// RedisSessionStore keeps session:<token> = user JSON with the session TTL.
type RedisSessionStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client, now: time.Now}
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

func (s *RedisSessionStore) Save(ctx context.Context, sess *internal.Session) error {
	data, err := json.Marshal(sess.User)
	if err != nil {
		return err
	}
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return internal.ErrUnauthorized
	}
	if err := s.client.Set(ctx, sessionKey(sess.Token), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", internal.ErrAuthUnavailable, err)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, token string) (*internal.User, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, internal.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internal.ErrAuthUnavailable, err)
	}
	var user internal.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("%w: %v", internal.ErrAuthUnavailable, err)
	}
	return nil
}
