package assetdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces the hashes written by a Redis store.
const DefaultRedisPrefix = "assetgraph"

// Redis is a Store shared through a Redis server, so several checkouts of a
// project can agree on fingerprints and package names.
type Redis struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects to the server at url and verifies it is reachable.
func OpenRedis(ctx context.Context, url, prefix string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedis(client, prefix), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) fingerprintKey() string { return r.prefix + ":fingerprints" }
func (r *Redis) packageKey() string     { return r.prefix + ":packages" }

func (r *Redis) Fingerprint(ctx context.Context, path string) (string, bool, error) {
	d, err := r.client.HGet(ctx, r.fingerprintKey(), path).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return d, true, nil
}

func (r *Redis) SetFingerprint(ctx context.Context, path, digest string) error {
	return r.client.HSet(ctx, r.fingerprintKey(), path, digest).Err()
}

func (r *Redis) SetPackageName(ctx context.Context, path, name string) error {
	return r.client.HSet(ctx, r.packageKey(), path, name).Err()
}

func (r *Redis) PackageNames(ctx context.Context) (map[string]string, error) {
	return r.client.HGetAll(ctx, r.packageKey()).Result()
}

func (r *Redis) ClearPackageNames(ctx context.Context) error {
	return r.client.Del(ctx, r.packageKey()).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
