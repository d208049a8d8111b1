package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Session is what the login flow leaves behind for the viewer.
type Session struct {
	LoggedIn bool   `json:"logged_in"`
	User     User   `json:"user"`
	From     string `json:"from,omitempty"`
}

type SessionStore interface {
	Get(ctx context.Context, id string) (Session, bool, error)
	Put(ctx context.Context, id string, s Session) error
	Delete(ctx context.Context, id string) error
}

// MemorySessions keeps sessions in process; fine for a single dev instance.
type MemorySessions struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]memSession
	now func() time.Time
}

type memSession struct {
	s       Session
	expires time.Time
}

func NewMemorySessions(ttl time.Duration) *MemorySessions {
	return &MemorySessions{ttl: ttl, m: map[string]memSession{}, now: time.Now}
}

func (m *MemorySessions) Get(_ context.Context, id string) (Session, bool, error) {
	m.mu.RLock()
	e, ok := m.m[id]
	m.mu.RUnlock()
	if !ok || !m.now().Before(e.expires) {
		return Session{}, false, nil
	}
	return e.s, true, nil
}

func (m *MemorySessions) Put(_ context.Context, id string, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m[id] = memSession{s: s, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemorySessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.m, id)
	return nil
}

// RedisSessions shares sessions with the login service through Redis.
// Keys are "<prefix><session id>", values are the JSON encoded Session.
type RedisSessions struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

const DefaultSessionPrefix = "logviewer:session:"

func NewRedisSessions(rdb *redis.Client, ttl time.Duration) *RedisSessions {
	return &RedisSessions{rdb: rdb, prefix: DefaultSessionPrefix, ttl: ttl}
}

func (r *RedisSessions) Get(ctx context.Context, id string) (Session, bool, error) {
	raw, err := r.rdb.Get(ctx, r.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("redis get session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		// a corrupt session is treated as no session
		return Session{}, false, nil
	}
	return s, true, nil
}

func (r *RedisSessions) Put(ctx context.Context, id string, s Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.prefix+id, raw, r.ttl).Err()
}

func (r *RedisSessions) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, r.prefix+id).Err()
}
