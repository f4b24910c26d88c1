package store

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Redis keeps the store in one HASH, so several machines can share a signer setup.
type Redis struct {
	rdb *redis.Client
	key string // по умолчанию: "chamber:config"
}

func NewRedis(addr string, db int, username, password, key string) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       db,
		Username: username,
		Password: password,
	})
	return NewRedisClient(rdb, key)
}

func NewRedisClient(rdb *redis.Client, key string) *Redis {
	if key == "" {
		key = "chamber:config"
	}
	return &Redis{rdb: rdb, key: key}
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	k, err := NormalizeKey(key)
	if err != nil {
		return "", err
	}
	v, err := r.rdb.HGet(ctx, r.key, k).Result()
	if err == redis.Nil {
		return "", notFound(k)
	}
	return v, err
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	k, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	return r.rdb.HSet(ctx, r.key, k, value).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	k, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	n, err := r.rdb.HDel(ctx, r.key, k).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(k)
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context) error {
	return r.rdb.Del(ctx, r.key).Err()
}

func (r *Redis) All(ctx context.Context) (map[string]string, error) {
	return r.rdb.HGetAll(ctx, r.key).Result()
}

func (r *Redis) Close() error { return r.rdb.Close() }
