package repository

import (
	"context"
	"errors"
	"fmt"

	"leet2git/internal/common"

	"github.com/redis/go-redis/v9"
)

type redisTier struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisTier stores every key under prefix so Clear never touches foreign
// keys in a shared database.
func NewRedisTier(rdb *redis.Client, prefix string) KVTier {
	return &redisTier{rdb: rdb, prefix: prefix}
}

func (t *redisTier) key(k string) string {
	return t.prefix + k
}

func (t *redisTier) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := t.rdb.Get(ctx, t.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("redisTier.Get %s: %w", key, err)
	}
	return v, nil
}

func (t *redisTier) Set(ctx context.Context, key string, value []byte) error {
	if err := t.rdb.Set(ctx, t.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redisTier.Set %s: %w", key, err)
	}
	return nil
}

func (t *redisTier) Delete(ctx context.Context, key string) error {
	if err := t.rdb.Del(ctx, t.key(key)).Err(); err != nil {
		return fmt.Errorf("redisTier.Delete %s: %w", key, err)
	}
	return nil
}

func (t *redisTier) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := t.rdb.Scan(ctx, 0, t.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redisTier.scan: %w", err)
	}
	return keys, nil
}

func (t *redisTier) Clear(ctx context.Context) error {
	keys, err := t.scanKeys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := t.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redisTier.Clear: %w", err)
	}
	return nil
}

func (t *redisTier) BytesInUse(ctx context.Context) (int64, error) {
	keys, err := t.scanKeys(ctx)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, k := range keys {
		size, err := t.rdb.StrLen(ctx, k).Result()
		if err != nil {
			return 0, fmt.Errorf("redisTier.BytesInUse: %w", err)
		}
		n += int64(len(k)-len(t.prefix)) + size
	}
	return n, nil
}
