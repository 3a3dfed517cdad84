package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a [RedisCache].
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// Prefix is prepended to every key so several deployments can share one
	// Redis database. Clear only removes keys under this prefix.
	Prefix string

	// Backoff governs retries of transient failures. The zero value uses
	// DefaultBackoff.
	Backoff Backoff
}

// RedisCache stores entries in Redis. Transient network failures are retried
// according to [RedisConfig.Backoff].
type RedisCache struct {
	client  *redis.Client
	prefix  string
	backoff Backoff
}

// NewRedisCache connects to Redis and verifies the connection with PING.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	backoff := cfg.Backoff
	if backoff.Attempts == 0 {
		backoff = DefaultBackoff
	}
	c := &RedisCache{client: client, prefix: cfg.Prefix, backoff: backoff}
	if err := c.do(ctx, func() error { return client.Ping(ctx).Err() }); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect %s: %w", cfg.Addr, err)
	}
	return c, nil
}

// Get retrieves a value. redis.Nil is reported as a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := c.do(ctx, func() error {
		var err error
		data, err = c.client.Get(ctx, c.key(key)).Bytes()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value; a zero ttl keeps it until evicted.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.do(ctx, func() error {
		return c.client.Set(ctx, c.key(key), data, ttl).Err()
	})
}

// Delete removes a value.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.do(ctx, func() error {
		return c.client.Del(ctx, c.key(key)).Err()
	})
}

// Clear deletes every key under the configured prefix. Without a prefix it
// refuses to touch the database.
func (c *RedisCache) Clear(ctx context.Context) (int, error) {
	if c.prefix == "" {
		return 0, errors.New("refusing to clear redis cache without a key prefix")
	}
	count := 0
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", 500).Result()
		if err != nil {
			return count, c.classify(err)
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return count, c.classify(err)
			}
			count += int(n)
		}
		if next == 0 {
			return count, nil
		}
		cursor = next
	}
}

// Close closes the client.
func (c *RedisCache) Close() error { return c.client.Close() }

func (c *RedisCache) key(k string) string { return c.prefix + k }

func (c *RedisCache) do(ctx context.Context, fn func() error) error {
	err := c.backoff.Retry(ctx, func() error { return c.classify(fn()) })
	var re *RetryableError
	if errors.As(err, &re) {
		return fmt.Errorf("%w: %v", ErrNetwork, re.Err)
	}
	return err
}

// classify marks transient connection failures as retryable.
func (c *RedisCache) classify(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}
	if isTransient(err) {
		return Retryable(err)
	}
	return err
}

func isTransient(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

var (
	_ Cache   = (*RedisCache)(nil)
	_ Clearer = (*RedisCache)(nil)
)
