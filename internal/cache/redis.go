package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/travelbooking/config"
	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client   *redis.Client
	tripsTTL time.Duration
}

func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

func NewRedisCache(client *redis.Client, tripsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, tripsTTL: tripsTTL}
}

// GetTrips returns nil without error on a cache miss.
func (c *RedisCache) GetTrips(ctx context.Context, filterKey string) (*domain.TripPage, error) {
	key, err := c.tripsKey(ctx, filterKey)
	if err != nil {
		return nil, err
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var page domain.TripPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *RedisCache) SetTrips(ctx context.Context, filterKey string, page *domain.TripPage) error {
	key, err := c.tripsKey(ctx, filterKey)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.tripsTTL).Err()
}

// InvalidateTrips bumps the listing generation so every cached page goes
// stale at once. Old entries age out on their TTL.
func (c *RedisCache) InvalidateTrips(ctx context.Context) error {
	return c.client.Incr(ctx, tripsVersionKey()).Err()
}

func (c *RedisCache) tripsKey(ctx context.Context, filterKey string) (string, error) {
	version, err := c.client.Get(ctx, tripsVersionKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("cache:trips:v%d:%s", version, filterKey), nil
}

// Allow counts a hit against key in a fixed window. When the limit is
// exceeded it reports how long until the window resets.
func (c *RedisCache) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, time.Duration, error) {
	k := rateLimitKey(key)
	hits, err := c.client.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, err
	}
	if hits == 1 {
		if err := c.client.Expire(ctx, k, window).Err(); err != nil {
			return false, 0, err
		}
	}
	if hits <= limit {
		return true, 0, nil
	}

	ttl, err := c.client.TTL(ctx, k).Result()
	if err != nil {
		return false, 0, err
	}
	if ttl < 0 {
		ttl = window
	}
	return false, ttl, nil
}

func tripsVersionKey() string {
	return "cache:trips:version"
}

func rateLimitKey(key string) string {
	return "ratelimit:" + key
}
