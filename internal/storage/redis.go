package storage

import (
	"context"
	"errors"
	"fmt"

	redis "github.com/go-redis/redis/v8"
)

// RedisStore keeps entries as plain Redis strings with no expiry.
type RedisStore struct {
	conn *redis.Client
}

// NewRedisStore connects to the Redis instance at addr, a redis:// URL.
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	opt, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: pinging redis: %v", ErrUnavailable, err)
	}

	return &RedisStore{conn: client}, nil
}

// Write stores a value under key, replacing any previous value.
func (rs *RedisStore) Write(ctx context.Context, key string, value []byte) error {
	if err := rs.conn.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("writing %q to redis: %w", key, err)
	}
	return nil
}

// Read retrieves the value stored under key.
func (rs *RedisStore) Read(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := rs.conn.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %q from redis: %w", key, err)
	}
	return value, true, nil
}

// Clear deletes key. Clearing a missing key is not an error.
func (rs *RedisStore) Clear(ctx context.Context, key string) error {
	if err := rs.conn.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("clearing %q in redis: %w", key, err)
	}
	return nil
}

func (rs *RedisStore) Close() error {
	return rs.conn.Close()
}
