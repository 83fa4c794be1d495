package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"route-watch-service/internal/domain"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRouteCache stores traffic-free route responses as JSON values with a
// native Redis TTL.
type RedisRouteCache struct {
	client *redis.Client
	prefix string
}

func NewRedisRouteCache(client *redis.Client, prefix string) *RedisRouteCache {
	if prefix == "" {
		prefix = "routewatch:route:"
	}
	return &RedisRouteCache{client: client, prefix: prefix}
}

// NewRedisRouteCacheFromURL parses a redis:// URL and builds the cache.
func NewRedisRouteCacheFromURL(url string) (*RedisRouteCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis route cache: parse url: %w", err)
	}
	return NewRedisRouteCache(redis.NewClient(opts), ""), nil
}

func (r *RedisRouteCache) Get(ctx context.Context, key string) (domain.RouteResponse, bool, error) {
	if strings.TrimSpace(key) == "" {
		return domain.RouteResponse{}, false, errors.New("get route cache: key must not be empty")
	}

	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.RouteResponse{}, false, nil
	}
	if err != nil {
		return domain.RouteResponse{}, false, fmt.Errorf("get route cache key=%q: %w", key, err)
	}

	var resp domain.RouteResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		return domain.RouteResponse{}, false, fmt.Errorf("get route cache key=%q: decode: %w", key, err)
	}

	return resp, true, nil
}

func (r *RedisRouteCache) Put(ctx context.Context, key string, resp domain.RouteResponse, ttl time.Duration) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("insert route cache: key must not be empty")
	}

	b, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("insert route cache key=%q: encode: %w", key, err)
	}

	if err := r.client.Set(ctx, r.prefix+key, b, ttl).Err(); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}

	return nil
}

func (r *RedisRouteCache) Close() error {
	return r.client.Close()
}
