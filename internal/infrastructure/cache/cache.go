package cache

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TTL classes per cached surface. Storefront reads tolerate short
// staleness; stock summaries do not.
const (
	TTLProductList   = 300 * time.Second
	TTLProductDetail = 600 * time.Second
	TTLCategory      = 3600 * time.Second
	TTLSiteConfig    = 3600 * time.Second
	TTLSearch        = 180 * time.Second
	TTLStockSummary  = 60 * time.Second
	TTLDashboard     = 300 * time.Second
)

// Service is a read-through cache over Redis. A nil client turns every
// operation into a no-op, and Redis errors are logged and swallowed:
// the cache never takes a request down.
type Service struct {
	client *redis.Client
	logger *zap.Logger
}

// NewService creates a cache service. client may be nil.
func NewService(client *redis.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, logger: logger}
}

// Key builds a cache key from a prefix and query parameters. Parameters
// are sorted so equivalent queries share an entry, and hashed so keys
// stay bounded.
func Key(prefix string, params map[string]string) string {
	if len(params) == 0 {
		return prefix
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
		b.WriteByte('&')
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(b.String()))
	return fmt.Sprintf("%s:%08x", prefix, h.Sum32())
}

// Get returns the cached value and whether it was present
func (s *Service) Get(ctx context.Context, key string) ([]byte, bool) {
	if s.client == nil {
		return nil, false
	}
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return val, true
}

// Set stores a value with a TTL
func (s *Service) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if s.client == nil {
		return
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate removes every key under the given prefix using SCAN+DEL,
// never KEYS
func (s *Service) Invalidate(ctx context.Context, prefix string) {
	if s.client == nil {
		return
	}
	iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			s.del(ctx, keys)
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn("cache invalidation scan failed", zap.String("prefix", prefix), zap.Error(err))
		return
	}
	if len(keys) > 0 {
		s.del(ctx, keys)
	}
}

func (s *Service) del(ctx context.Context, keys []string) {
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("cache delete failed", zap.Int("keys", len(keys)), zap.Error(err))
	}
}
