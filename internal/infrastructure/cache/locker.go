package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LocalLocker is the single-instance fallback when Redis is not
// configured. It holds keyed mutexes in process memory; the ttl is
// ignored because a crashed process releases everything anyway.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalLocker creates a new LocalLocker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

// Acquire takes the lock or returns shared.ErrConcurrency when another
// goroutine holds it.
func (l *LocalLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, taken := l.held[key]; taken {
		return nil, shared.ErrConcurrency
	}
	l.held[key] = struct{}{}

	release := func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}
	return release, nil
}

// RedisLocker serializes critical sections across instances with a
// Redis SETNX mutex. Webhook processing acquires one per provider
// payment so concurrent retries cannot double-apply.
type RedisLocker struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisLocker creates a new RedisLocker
func NewRedisLocker(client *redis.Client, keyPrefix string, logger *zap.Logger) *RedisLocker {
	if keyPrefix == "" {
		keyPrefix = "lock:"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{client: client, keyPrefix: keyPrefix, logger: logger}
}

// Acquire takes the lock or returns shared.ErrConcurrency when another
// holder has it. The returned release func deletes the lock only if
// this caller still owns it.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	fullKey := l.keyPrefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock %s: %w", key, err)
	}
	if !ok {
		return nil, shared.ErrConcurrency
	}

	release := func() {
		// Only the owner may release; an expired lock taken over by
		// another holder must not be deleted from here.
		const script = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`
		if err := l.client.Eval(context.Background(), script, []string{fullKey}, token).Err(); err != nil {
			l.logger.Warn("lock release failed", zap.String("key", key), zap.Error(err))
		}
	}
	return release, nil
}
