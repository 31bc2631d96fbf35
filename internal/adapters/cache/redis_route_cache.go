package cache

import (
	"context"
	"errors"
	"fmt"
	"pedestrian-nav-service/internal/domain"
	"pedestrian-nav-service/internal/platform/obs"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisRouteKeyPrefix = "route:"

// RedisRouteCache stores routing results in Redis with an expiry.
type RedisRouteCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisRouteCache(client *redis.Client, ttl time.Duration) *RedisRouteCache {
	return &RedisRouteCache{Client: client, TTL: ttl}
}

func (c *RedisRouteCache) GetRoute(ctx context.Context, key string) (_ *domain.Route, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.redis.GetRoute")(&err)

	if c.Client == nil {
		return nil, false, errors.New("route cache: redis client is nil")
	}

	b, err := c.Client.Get(ctx, redisRouteKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: redis get: %w", err)
	}

	route, err := decodeRoute(b)
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: %w", err)
	}
	return route, true, nil
}

func (c *RedisRouteCache) PutRoute(ctx context.Context, key string, route *domain.Route) error {
	if c.Client == nil {
		return errors.New("route cache: redis client is nil")
	}

	if key == "" {
		return errors.New("insert route cache: key must not be empty")
	}

	payload, err := encodeRoute(route)
	if err != nil {
		return fmt.Errorf("insert route cache: %w", err)
	}

	// A zero TTL means no expiry in go-redis.
	if err := c.Client.Set(ctx, redisRouteKeyPrefix+key, payload, c.TTL).Err(); err != nil {
		return fmt.Errorf("insert route cache: redis set: %w", err)
	}
	return nil
}
