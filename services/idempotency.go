package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyTTL is how long a request id is remembered
const IdempotencyTTL = 24 * time.Hour

// IdempotencyCache is a fast path in front of the transition_requests table.
// The table stays authoritative; the cache only avoids a transaction for
// replays it has already seen.
type IdempotencyCache interface {
	Lookup(ctx context.Context, requestID string) (orderID uint, fingerprint string, found bool, err error)
	Remember(ctx context.Context, requestID string, orderID uint, fingerprint string) error
}

// RedisIdempotencyCache stores request ids in Redis
type RedisIdempotencyCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisIdempotencyCache connects to addr
func NewRedisIdempotencyCache(addr string) *RedisIdempotencyCache {
	return &RedisIdempotencyCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    IdempotencyTTL,
	}
}

// Ping verifies the connection
func (r *RedisIdempotencyCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func idempotencyKey(requestID string) string {
	return "idem:order:transition:" + requestID
}

// Lookup returns the order and fingerprint remembered for requestID
func (r *RedisIdempotencyCache) Lookup(ctx context.Context, requestID string) (uint, string, bool, error) {
	raw, err := r.client.Get(ctx, idempotencyKey(requestID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, "", false, nil
	}
	if err != nil {
		return 0, "", false, err
	}

	orderID, fingerprint, ok := splitIdempotencyValue(raw)
	if !ok {
		return 0, "", false, fmt.Errorf("malformed idempotency value for %s", requestID)
	}
	return orderID, fingerprint, true, nil
}

// Remember records requestID after its change committed
func (r *RedisIdempotencyCache) Remember(ctx context.Context, requestID string, orderID uint, fingerprint string) error {
	value := fmt.Sprintf("%d|%s", orderID, fingerprint)
	return r.client.Set(ctx, idempotencyKey(requestID), value, r.ttl).Err()
}

// Close releases the client
func (r *RedisIdempotencyCache) Close() error {
	return r.client.Close()
}

func splitIdempotencyValue(raw string) (uint, string, bool) {
	idPart, fingerprint, ok := strings.Cut(raw, "|")
	if !ok {
		return 0, "", false
	}
	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil {
		return 0, "", false
	}
	return uint(id), fingerprint, true
}

// noopIdempotencyCache is used when Redis is not configured
type noopIdempotencyCache struct{}

func (noopIdempotencyCache) Lookup(context.Context, string) (uint, string, bool, error) {
	return 0, "", false, nil
}

func (noopIdempotencyCache) Remember(context.Context, string, uint, string) error { return nil }

var idempotencyCacheInstance IdempotencyCache

// InitIdempotencyCache sets the cache used by order services
func InitIdempotencyCache(cache IdempotencyCache) IdempotencyCache {
	idempotencyCacheInstance = cache
	return idempotencyCacheInstance
}

// GetIdempotencyCache returns the configured cache or a no-op one
func GetIdempotencyCache() IdempotencyCache {
	if idempotencyCacheInstance == nil {
		return noopIdempotencyCache{}
	}
	return idempotencyCacheInstance
}

// SetIdempotencyCache sets the cache (primarily for testing)
func SetIdempotencyCache(cache IdempotencyCache) {
	idempotencyCacheInstance = cache
}
