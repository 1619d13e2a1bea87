package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/quelyos/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Class is a rate budget applied to one kind of traffic
type Class struct {
	Name      string
	PerMinute int
}

// Classes bundles the budgets the HTTP layer needs
type Classes struct {
	ChatAuthenticated Class
	ChatAnonymous     Class
	AdminMutation     Class
	PublicRead        Class
}

// ClassesFromConfig builds the rate classes from HTTP configuration
func ClassesFromConfig(cfg config.HTTPConfig) Classes {
	return Classes{
		ChatAuthenticated: Class{Name: "chat_authenticated", PerMinute: cfg.RateLimitChatAuth},
		ChatAnonymous:     Class{Name: "chat_anonymous", PerMinute: cfg.RateLimitChatAnon},
		AdminMutation:     Class{Name: "admin_mutation", PerMinute: cfg.RateLimitAdminWrite},
		PublicRead:        Class{Name: "public_read", PerMinute: cfg.RateLimitPublicRead},
	}
}

// Result describes one admission decision
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter admits requests against fixed one-minute windows keyed by
// (class, identity-or-ip). Counters live in Redis so budgets hold
// across instances; when Redis is unreachable the limiter falls back
// to an in-process window map, and any store failure degrades to
// allow. Rate limiting protects capacity, it must never become the
// outage.
type Limiter struct {
	client *redis.Client
	local  *localWindows
	logger *zap.Logger
	now    func() time.Time
}

// NewLimiter creates a limiter. client may be nil, which forces the
// in-process fallback.
func NewLimiter(client *redis.Client, logger *zap.Logger) *Limiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{
		client: client,
		local:  newLocalWindows(),
		logger: logger,
		now:    time.Now,
	}
}

// Allow admits or rejects one request for the given class and caller key
func (l *Limiter) Allow(ctx context.Context, class Class, key string) Result {
	if class.PerMinute <= 0 {
		return Result{Allowed: true, Limit: class.PerMinute}
	}

	now := l.now()
	window := now.Unix() / 60
	retryAfter := time.Duration(60-(now.Unix()%60)) * time.Second

	count, err := l.increment(ctx, class, key, window)
	if err != nil {
		l.logger.Warn("rate limit store unavailable, allowing request",
			zap.String("class", class.Name), zap.Error(err))
		return Result{Allowed: true, Limit: class.PerMinute, Remaining: class.PerMinute}
	}

	remaining := class.PerMinute - int(count)
	if remaining < 0 {
		remaining = 0
	}
	if int(count) > class.PerMinute {
		return Result{Allowed: false, Limit: class.PerMinute, Remaining: 0, RetryAfter: retryAfter}
	}
	return Result{Allowed: true, Limit: class.PerMinute, Remaining: remaining}
}

func (l *Limiter) increment(ctx context.Context, class Class, key string, window int64) (int64, error) {
	if l.client == nil {
		return l.local.increment(class.Name, key, window), nil
	}

	redisKey := fmt.Sprintf("ratelimit:%s:%s:%d", class.Name, key, window)
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		// Keep counting locally so a Redis blip does not zero budgets
		return l.local.increment(class.Name, key, window), nil
	}
	return incr.Val(), nil
}

// localWindows is the in-process fallback counter store
type localWindows struct {
	mu      sync.Mutex
	counts  map[string]int64
	current int64
}

func newLocalWindows() *localWindows {
	return &localWindows{counts: make(map[string]int64)}
}

func (w *localWindows) increment(class, key string, window int64) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	// One window of history is enough; drop everything older
	if window != w.current {
		w.counts = make(map[string]int64)
		w.current = window
	}
	k := class + ":" + key
	w.counts[k]++
	return w.counts[k]
}
