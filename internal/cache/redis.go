package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shopwave/storefront/internal/models"
)

const (
	baseTTL   = 15 * time.Minute
	maxJitter = 5 * time.Minute

	// versionTTL outlives any cart entry and any in-flight load.
	versionTTL = 24 * time.Hour
)

type RedisCache struct {
	client  redis.UniversalClient
	baseTTL time.Duration
}

func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: baseTTL,
	}
}

func (r *RedisCache) Get(ctx context.Context, userID string) (*models.Cart, error) {
	data, err := r.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return &cart, nil
}

// Version returns the user's invalidation counter. A user that was never
// invalidated is at version 0.
func (r *RedisCache) Version(ctx context.Context, userID string) (int64, error) {
	v, err := readVersion(ctx, r.client, userID)
	if err != nil {
		return 0, fmt.Errorf("redis get version failed: %w", err)
	}
	return v, nil
}

// SetIfVersion stores the cart with a jittered TTL, but only while the
// user's version still equals version. The check and the write run in one
// WATCH/MULTI transaction.
func (r *RedisCache) SetIfVersion(ctx context.Context, userID string, version int64, cart *models.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	ttl := r.baseTTL + rand.N(maxJitter)

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := readVersion(ctx, tx, userID)
		if err != nil {
			return err
		}
		if cur != version {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(userID), data, ttl)
			return nil
		})
		return err
	}, versionKey(userID))

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStale), errors.Is(err, redis.TxFailedErr):
		return ErrStale
	default:
		return fmt.Errorf("redis set failed: %w", err)
	}
}

// Invalidate bumps the user's version and drops the cached cart atomically.
// Loads that started before the bump can no longer be stored.
func (r *RedisCache) Invalidate(ctx context.Context, userID string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(userID))
		pipe.Expire(ctx, versionKey(userID), versionTTL)
		pipe.Del(ctx, cacheKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func readVersion(ctx context.Context, c stringGetter, userID string) (int64, error) {
	v, err := c.Get(ctx, versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func cacheKey(userID string) string {
	return "cart:" + userID
}

func versionKey(userID string) string {
	return "cart:" + userID + ":version"
}
