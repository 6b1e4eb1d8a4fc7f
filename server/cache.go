package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/esimov/jfda"
	"github.com/redis/go-redis/v9"
)

// Cache stores encoded detection results.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to the Redis server at addr. Entries expire after ttl,
// a zero ttl keeps them forever.
func NewRedisCache(addr, password string, db int, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

// Ping checks the connection to the server.
func (r *RedisCache) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	return nil
}

// Get implements Cache.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set implements Cache.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

// Close closes the client.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// cacheKey identifies a detection by the image content, the parameters and the
// number of stages run.
func cacheKey(image []byte, p jfda.Params, stages int) string {
	h := sha256.New()
	h.Write(image)
	fmt.Fprintf(h, "|%v|%g|%g|%d", p.Thresholds, p.MinFaceSize, p.Factor, stages)
	return "jfda:detect:" + hex.EncodeToString(h.Sum(nil))
}
