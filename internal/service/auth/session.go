package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redisKeySession returns the Redis key for a session.
func redisKeySession(sessionID uuid.UUID) string { return "session:" + sessionID.String() }

// redisKeyAuthCode marks an auth code id as redeemed.
func redisKeyAuthCode(codeID string) string { return "authcode:" + codeID }

// SessionStore tracks live login sessions and redeemed auth codes.
type SessionStore interface {
	Create(ctx context.Context, sessionID, userID uuid.UUID, ttl time.Duration) error
	// Touch extends a live session and returns its user.
	Touch(ctx context.Context, sessionID uuid.UUID, ttl time.Duration) (uuid.UUID, error)
	Exists(ctx context.Context, sessionID uuid.UUID) (bool, error)
	// Delete reports whether the session was still live.
	Delete(ctx context.Context, sessionID uuid.UUID) (bool, error)
	// ClaimCode records codeID as used; it returns false when it already was.
	ClaimCode(ctx context.Context, codeID string, ttl time.Duration) (bool, error)
}

// ---------------------------------------------------------------------------
// Redis
// ---------------------------------------------------------------------------

type redisSessions struct {
	rdb *redis.Client
}

func NewRedisSessions(rdb *redis.Client) SessionStore {
	return &redisSessions{rdb: rdb}
}

func (s *redisSessions) Create(ctx context.Context, sessionID, userID uuid.UUID, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, redisKeySession(sessionID), userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *redisSessions) Touch(ctx context.Context, sessionID uuid.UUID, ttl time.Duration) (uuid.UUID, error) {
	key := redisKeySession(sessionID)
	raw, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrSessionNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("redis get session: %w", err)
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrSessionNotFound
	}
	if err := s.rdb.Expire(ctx, key, ttl).Err(); err != nil {
		return uuid.Nil, fmt.Errorf("redis extend session: %w", err)
	}
	return userID, nil
}

func (s *redisSessions) Exists(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	n, err := s.rdb.Exists(ctx, redisKeySession(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check session: %w", err)
	}
	return n > 0, nil
}

func (s *redisSessions) Delete(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	n, err := s.rdb.Del(ctx, redisKeySession(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return n > 0, nil
}

func (s *redisSessions) ClaimCode(ctx context.Context, codeID string, ttl time.Duration) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, redisKeyAuthCode(codeID), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis claim auth code: %w", err)
	}
	return ok, nil
}

// ---------------------------------------------------------------------------
// Memory
// ---------------------------------------------------------------------------

type memEntry struct {
	value   string
	expires time.Time
}

// MemorySessions keeps sessions in process. It backs tests and single-node
// development runs without Redis.
type MemorySessions struct {
	mu  sync.Mutex
	m   map[string]memEntry
	now func() time.Time
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{m: make(map[string]memEntry), now: time.Now}
}

func (s *MemorySessions) get(key string) (memEntry, bool) {
	e, ok := s.m[key]
	if ok && !s.now().Before(e.expires) {
		delete(s.m, key)
		return memEntry{}, false
	}
	return e, ok
}

func (s *MemorySessions) Create(_ context.Context, sessionID, userID uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[redisKeySession(sessionID)] = memEntry{value: userID.String(), expires: s.now().Add(ttl)}
	return nil
}

func (s *MemorySessions) Touch(_ context.Context, sessionID uuid.UUID, ttl time.Duration) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := redisKeySession(sessionID)
	e, ok := s.get(key)
	if !ok {
		return uuid.Nil, ErrSessionNotFound
	}
	e.expires = s.now().Add(ttl)
	s.m[key] = e
	return uuid.Parse(e.value)
}

func (s *MemorySessions) Exists(_ context.Context, sessionID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.get(redisKeySession(sessionID))
	return ok, nil
}

func (s *MemorySessions) Delete(_ context.Context, sessionID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := redisKeySession(sessionID)
	_, ok := s.get(key)
	delete(s.m, key)
	return ok, nil
}

func (s *MemorySessions) ClaimCode(_ context.Context, codeID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := redisKeyAuthCode(codeID)
	if _, ok := s.get(key); ok {
		return false, nil
	}
	s.m[key] = memEntry{value: "1", expires: s.now().Add(ttl)}
	return true, nil
}
