package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps keys as fields of one Redis hash so that several processes
// can share a credential.
type RedisStorage struct {
	rdb redis.UniversalClient
	key string
	ttl time.Duration
}

// NewRedisStorage stores fields under "<prefix>:session". A positive ttl is
// refreshed on every write.
func NewRedisStorage(rdb redis.UniversalClient, prefix string, ttl time.Duration) *RedisStorage {
	prefix = strings.TrimSuffix(prefix, ":")
	if prefix == "" {
		prefix = "blog"
	}
	return &RedisStorage{rdb: rdb, key: prefix + ":session", ttl: ttl}
}

func (r *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	v, err := r.rdb.HGet(ctx, r.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, r.key, key, value)
	if r.ttl > 0 {
		pipe.Expire(ctx, r.key, r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	return r.rdb.HDel(ctx, r.key, key).Err()
}
