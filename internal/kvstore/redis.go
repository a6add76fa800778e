// AngelaMos | 2026
// redis.go

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelamos/voltgear/internal/config"
	"github.com/angelamos/voltgear/internal/core"
)

// RedisBackend stores each document as a plain redis string. Keys get a
// configurable prefix so the storefront can share an instance.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

func NewRedisBackend(
	ctx context.Context,
	cfg config.StoreConfig,
) (*RedisBackend, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse store redis url: %w", err)
	}

	opts.PoolTimeout = 30 * time.Second
	opts.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping store redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix != "" {
		prefix += ":"
	}

	return &RedisBackend{client: client, prefix: prefix}, nil
}

func (b *RedisBackend) Load(ctx context.Context, key string) ([]byte, error) {
	doc, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load %q: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", key, err)
	}

	return doc, nil
}

func (b *RedisBackend) Store(ctx context.Context, key string, doc []byte) error {
	if err := b.client.Set(ctx, b.prefix+key, doc, 0).Err(); err != nil {
		return fmt.Errorf("store %q: %w", key, err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, b.prefix+key).Err(); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (b *RedisBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	iter := b.client.Scan(ctx, 0, b.prefix+prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), b.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list keys %q: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := b.client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("store redis ping failed: %w", err)
	}

	return nil
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}

var _ Backend = (*RedisBackend)(nil)
