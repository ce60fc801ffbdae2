package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKV stores each namespace as one hash, so Clear is a single DEL.
type RedisKV struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisKV(rdb *redis.Client, prefix string) *RedisKV {
	if prefix == "" {
		prefix = "ukonnect"
	}
	return &RedisKV{rdb: rdb, prefix: prefix}
}

func (s *RedisKV) hashKey(namespace string) string {
	return fmt.Sprintf("%s:%s", s.prefix, namespace)
}

func (s *RedisKV) Get(ctx context.Context, namespace, key string) (string, error) {
	v, err := s.rdb.HGet(ctx, s.hashKey(namespace), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (s *RedisKV) Set(ctx context.Context, namespace, key, value string) error {
	return s.rdb.HSet(ctx, s.hashKey(namespace), key, value).Err()
}

// SetMany is a single HSET, which redis applies atomically.
func (s *RedisKV) SetMany(ctx context.Context, namespace string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	pairs := make([]any, 0, 2*len(values))
	for k, v := range values {
		pairs = append(pairs, k, v)
	}
	return s.rdb.HSet(ctx, s.hashKey(namespace), pairs...).Err()
}

func (s *RedisKV) Delete(ctx context.Context, namespace, key string) error {
	return s.rdb.HDel(ctx, s.hashKey(namespace), key).Err()
}

func (s *RedisKV) Clear(ctx context.Context, namespace string) error {
	return s.rdb.Del(ctx, s.hashKey(namespace)).Err()
}

func (s *RedisKV) Close() error { return s.rdb.Close() }
