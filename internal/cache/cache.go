// Package cache holds read-through caches for ledger views. Cache failures are
// never fatal: they are logged and treated as misses.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/familybudget/backend/internal/logger"
	"github.com/familybudget/backend/internal/model"
)

const keyPrefix = "ledger"

// Connect parses a redis URL (or bare host:port) and checks the connection.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Client is the subset of *redis.Client the overview cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// generationTTL keeps a user's generation counter alive well past any
// overview TTL.
const generationTTL = 30 * 24 * time.Hour

// RedisOverviewCache caches month overviews per user. Every user has a
// generation counter that is bumped on any ledger write; cache keys embed it,
// so one INCR invalidates all of the user's cached months at once.
//
// Callers store a freshly built overview under the generation GetOverview
// returned, read before the ledger was queried. A write that lands in between
// bumps the counter, so the stale overview goes to a key nobody reads.
type RedisOverviewCache struct {
	client Client
	ttl    time.Duration
}

func NewRedisOverviewCache(client Client, ttl time.Duration) *RedisOverviewCache {
	return &RedisOverviewCache{client: client, ttl: ttl}
}

func generationKey(userID uuid.UUID) string {
	return fmt.Sprintf("%s:gen:%s", keyPrefix, userID)
}

func overviewKey(userID uuid.UUID, generation int64, key model.PeriodKey) string {
	return fmt.Sprintf("%s:overview:%s:%d:%s", keyPrefix, userID, generation, key)
}

func (c *RedisOverviewCache) generation(ctx context.Context, userID uuid.UUID) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// GetOverview returns the cached overview and the generation to store a
// rebuilt one under. The generation is negative when the cache is unusable.
func (c *RedisOverviewCache) GetOverview(ctx context.Context, userID uuid.UUID, key model.PeriodKey) (*model.LedgerOverview, int64, bool) {
	gen, err := c.generation(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Warn("overview cache unavailable", slog.String("error", err.Error()))
		return nil, -1, false
	}

	data, err := c.client.Get(ctx, overviewKey(userID, gen, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.FromContext(ctx).Warn("overview cache read failed", slog.String("error", err.Error()))
		}
		return nil, gen, false
	}

	var overview model.LedgerOverview
	if err := json.Unmarshal(data, &overview); err != nil {
		logger.FromContext(ctx).Warn("overview cache entry corrupt", slog.String("error", err.Error()))
		return nil, gen, false
	}
	return &overview, gen, true
}

func (c *RedisOverviewCache) SetOverview(ctx context.Context, userID uuid.UUID, key model.PeriodKey, generation int64, overview *model.LedgerOverview) {
	if generation < 0 {
		return
	}

	data, err := json.Marshal(overview)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, overviewKey(userID, generation, key), data, c.ttl).Err(); err != nil {
		logger.FromContext(ctx).Warn("overview cache write failed", slog.String("error", err.Error()))
	}
}

func (c *RedisOverviewCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	err := c.client.Incr(ctx, generationKey(userID)).Err()
	if err == nil {
		err = c.client.Expire(ctx, generationKey(userID), generationTTL).Err()
	}
	if err != nil {
		logger.FromContext(ctx).Warn("overview cache invalidation failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// Noop never caches anything.
type Noop struct{}

func (Noop) GetOverview(context.Context, uuid.UUID, model.PeriodKey) (*model.LedgerOverview, int64, bool) {
	return nil, -1, false
}

func (Noop) SetOverview(context.Context, uuid.UUID, model.PeriodKey, int64, *model.LedgerOverview) {}

func (Noop) Invalidate(context.Context, uuid.UUID) {}
