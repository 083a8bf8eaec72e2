package counters

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the counter store with Redis. INCR and ZINCRBY are atomic
// server-side, which is what makes concurrent aggregation lock-free.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed counter store. The client lifecycle is
// managed by the caller.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (int64, bool, error) {
	raw, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("counter get %s: %w", key, err)
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("counter get %s: non-integer value %q", key, raw)
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value int64) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("counter set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("counter incr %s: %w", key, err)
	}
	return n, nil
}

func (s *RedisStore) ZIncrBy(ctx context.Context, key, member string, delta float64) error {
	if err := s.client.ZIncrBy(ctx, key, delta, member).Err(); err != nil {
		return fmt.Errorf("counter zincrby %s %s: %w", key, member, err)
	}
	return nil
}
