package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyProcessedEvent   = "bukukas:%s:processed:%s:%s"
	defaultProcessedTTL = 72 * time.Hour
)

// ProcessedCache remembers deliveries that were committed. A hit is a hint:
// callers still confirm a live payment in the store, since a payment may be
// soft-deleted while its marker is alive.
type ProcessedCache interface {
	Seen(ctx context.Context, provider string, invoiceID snowflake.ID, reference string) bool
	MarkProcessed(ctx context.Context, provider string, invoiceID snowflake.ID, reference string)
}

type redisProcessedCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisProcessedCache returns a Redis-backed cache. Redis errors are
// logged and treated as a miss.
func NewRedisProcessedCache(client *redis.Client, ttl time.Duration, log *zap.Logger) ProcessedCache {
	if client == nil {
		return NoopProcessedCache{}
	}
	if ttl <= 0 {
		ttl = defaultProcessedTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &redisProcessedCache{client: client, ttl: ttl, log: log.Named("cache.processed")}
}

func (c *redisProcessedCache) Seen(ctx context.Context, provider string, invoiceID snowflake.ID, reference string) bool {
	key, ok := processedKey(provider, invoiceID, reference)
	if !ok {
		return false
	}
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		c.log.Warn("processed cache lookup failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return n > 0
}

func (c *redisProcessedCache) MarkProcessed(ctx context.Context, provider string, invoiceID snowflake.ID, reference string) {
	key, ok := processedKey(provider, invoiceID, reference)
	if !ok {
		return
	}
	if err := c.client.SetNX(ctx, key, "1", c.ttl).Err(); err != nil {
		c.log.Warn("processed cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func processedKey(provider string, invoiceID snowflake.ID, reference string) (string, bool) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	reference = strings.TrimSpace(reference)
	if provider == "" || invoiceID == 0 || reference == "" {
		return "", false
	}
	return fmt.Sprintf(keyProcessedEvent, provider, invoiceID.String(), reference), true
}

// NoopProcessedCache never reports a hit.
type NoopProcessedCache struct{}

func (NoopProcessedCache) Seen(context.Context, string, snowflake.ID, string) bool { return false }

func (NoopProcessedCache) MarkProcessed(context.Context, string, snowflake.ID, string) {}
