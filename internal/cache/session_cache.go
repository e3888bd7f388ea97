package cache

import (
	"accioncsat/internal/model"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned for unknown or expired form sessions
var ErrSessionNotFound = errors.New("form session not found")

// SessionCache holds form sessions for the lifetime of a respondent's visit
type SessionCache interface {
	Set(ctx context.Context, session *model.FormSession) error
	Get(ctx context.Context, id string) (*model.FormSession, error)
	Delete(ctx context.Context, id string) error
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a Redis-backed session cache. Entries expire ttl after their last write.
func NewSessionCache(client *redis.Client, ttl time.Duration) SessionCache {
	return &sessionCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *sessionCache) key(id string) string {
	return fmt.Sprintf("form:session:%s", id)
}

func (c *sessionCache) Set(ctx context.Context, session *model.FormSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return c.client.Set(ctx, c.key(session.ID), data, c.ttl).Err()
}

func (c *sessionCache) Get(ctx context.Context, id string) (*model.FormSession, error) {
	data, err := c.client.Get(ctx, c.key(id)).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var session model.FormSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

func (c *sessionCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

type memorySessionCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemorySessionCache keeps sessions in process memory, used when no Redis is configured.
// Sessions are stored encoded so callers never share state with the cache.
func NewMemorySessionCache(ttl time.Duration) SessionCache {
	return &memorySessionCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *memorySessionCache) Set(_ context.Context, session *model.FormSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweep()
	c.entries[session.ID] = memoryEntry{data: data, expiresAt: c.now().Add(c.ttl)}
	return nil
}

func (c *memorySessionCache) Get(_ context.Context, id string) (*model.FormSession, error) {
	c.mu.Lock()
	entry, ok := c.entries[id]
	if ok && c.expired(entry) {
		delete(c.entries, id)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	var session model.FormSession
	if err := json.Unmarshal(entry.data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

func (c *memorySessionCache) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
	return nil
}

func (c *memorySessionCache) expired(e memoryEntry) bool {
	return c.ttl > 0 && c.now().After(e.expiresAt)
}

// sweep drops expired entries; caller holds mu
func (c *memorySessionCache) sweep() {
	for id, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, id)
		}
	}
}

// NewRedisClient parses a redis:// URL and checks the server answers
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}
