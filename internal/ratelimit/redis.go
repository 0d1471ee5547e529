package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "login_attempts:"

// RedisStore keeps counters in Redis so a lockout survives process
// restarts and is shared across instances.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	k := redisKeyPrefix + key

	count, err := s.rdb.Incr(ctx, k).Result()

	if err != nil {
		return 0, 0, err
	}

	// first failure in this window starts the clock; later ones do not
	// slide it
	if count == 1 {
		if err := s.rdb.Expire(ctx, k, window).Err(); err != nil {
			return count, 0, err
		}

		return count, window, nil
	}

	ttl, err := s.rdb.TTL(ctx, k).Result()

	if err != nil {
		return count, 0, err
	}

	return count, ttl, nil
}

func (s *RedisStore) Count(ctx context.Context, key string) (int64, time.Duration, error) {
	k := redisKeyPrefix + key

	count, err := s.rdb.Get(ctx, k).Int64()

	if err == redis.Nil {
		return 0, 0, nil
	}

	if err != nil {
		return 0, 0, err
	}

	ttl, err := s.rdb.TTL(ctx, k).Result()

	if err != nil {
		return count, 0, err
	}

	return count, ttl, nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, redisKeyPrefix+key).Err()
}
