package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cliptide/backend/internal/telemetry"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a key does not exist
var ErrNotFound = errors.New("cache: key not found")

// RedisClient wraps redis.Client with the small surface the application
// uses. The handle is created at startup and injected where needed.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient creates a Redis client with connection pooling and
// verifies connectivity before returning
func NewRedisClient(host, port, password string) (*RedisClient, error) {
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 5,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// Close closes the Redis connection gracefully
func (rc *RedisClient) Close() error {
	if rc == nil || rc.client == nil {
		return nil
	}
	return rc.client.Close()
}

// Get retrieves a string value; ErrNotFound if the key is absent
func (rc *RedisClient) Get(ctx context.Context, key string) (string, error) {
	ctx, span := telemetry.TraceCacheCall(ctx, "get", map[string]interface{}{"key": key})
	defer span.End()

	val, err := rc.client.Get(ctx, key).Result()
	if err == redis.Nil {
		telemetry.RecordServiceSuccess(span, map[string]interface{}{"cached": false})
		return "", ErrNotFound
	}
	if err != nil {
		telemetry.RecordServiceError(span, err)
		return "", err
	}
	telemetry.RecordServiceSuccess(span, map[string]interface{}{"cached": true})
	return val, nil
}

// SetEx stores a value with an expiration
func (rc *RedisClient) SetEx(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	ctx, span := telemetry.TraceCacheCall(ctx, "set", map[string]interface{}{
		"key":         key,
		"ttl_seconds": int(ttl.Seconds()),
	})
	defer span.End()

	if err := rc.client.Set(ctx, key, value, ttl).Err(); err != nil {
		telemetry.RecordServiceError(span, err)
		return err
	}
	telemetry.RecordServiceSuccess(span, nil)
	return nil
}

// Del deletes one or more keys
func (rc *RedisClient) Del(ctx context.Context, keys ...string) error {
	ctx, span := telemetry.TraceCacheCall(ctx, "delete", map[string]interface{}{
		"key_count": len(keys),
	})
	defer span.End()

	if err := rc.client.Del(ctx, keys...).Err(); err != nil {
		telemetry.RecordServiceError(span, err)
		return err
	}
	telemetry.RecordServiceSuccess(span, nil)
	return nil
}

// GetInt retrieves an integer value; ErrNotFound if the key is absent
func (rc *RedisClient) GetInt(ctx context.Context, key string) (int64, error) {
	val, err := rc.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, ErrNotFound
	}
	return val, err
}

// IncrBy increments a key by a value
func (rc *RedisClient) IncrBy(ctx context.Context, key string, increment int64) (int64, error) {
	return rc.client.IncrBy(ctx, key, increment).Result()
}

// Expire sets an expiration timeout on a key
func (rc *RedisClient) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return rc.client.Expire(ctx, key, ttl).Err()
}

// Ping tests the Redis connection
func (rc *RedisClient) Ping(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}
