// Package lock serialises work per employee. Check-in recording, device
// reset and payroll generation for the same employee all take the same key.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNotAcquired = errors.New("lock not acquired")

// Release frees a held lock. It is safe to call more than once.
type Release func()

type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// EmployeeKey is the lock key guarding one employee's ledger, key slot and
// payroll.
func EmployeeKey(employeeID string) string {
	return "lock:employee:" + employeeID
}

// --- in-process ---

type localEntry struct {
	ch   chan struct{}
	refs int
}

type localLocker struct {
	mu      sync.Mutex
	entries map[string]*localEntry
}

// NewLocal returns a Locker for a single process.
func NewLocal() Locker {
	return &localLocker{entries: make(map[string]*localEntry)}
}

func (l *localLocker) Acquire(ctx context.Context, key string) (Release, error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &localEntry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.unref(key, e)
		})
	}, nil
}

func (l *localLocker) unref(key string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// --- redis ---

// ReleaseScript deletes the key only while it still holds our token.
const ReleaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`

type RedisOption func(*redisLocker)

// WithTTL bounds how long a crashed holder can block others.
func WithTTL(ttl time.Duration) RedisOption {
	return func(l *redisLocker) { l.ttl = ttl }
}

// WithRetryInterval sets the polling interval while the key is held.
func WithRetryInterval(d time.Duration) RedisOption {
	return func(l *redisLocker) { l.retry = d }
}

// WithTokenFunc overrides the owner token generator.
func WithTokenFunc(fn func() string) RedisOption {
	return func(l *redisLocker) { l.newToken = fn }
}

type redisLocker struct {
	rdb      redis.Cmdable
	ttl      time.Duration
	retry    time.Duration
	newToken func() string
}

// NewRedis returns a Locker shared by every API replica.
func NewRedis(rdb redis.Cmdable, opts ...RedisOption) Locker {
	l := &redisLocker{
		rdb:      rdb,
		ttl:      30 * time.Second,
		retry:    50 * time.Millisecond,
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *redisLocker) Acquire(ctx context.Context, key string) (Release, error) {
	token := l.newToken()
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrNotAcquired, ctx.Err())
		case <-time.After(l.retry):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The request context may already be cancelled; release anyway.
			_ = l.rdb.Eval(context.Background(), ReleaseScript, []string{key}, token).Err()
		})
	}, nil
}
