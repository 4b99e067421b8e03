// Package cache provides a read-through Redis cache for cart aggregates.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/orderkaro/orderkaro/internal/domain/cart"
)

// ErrCacheMiss is returned when no cached cart exists for the user.
var ErrCacheMiss = errors.New("cache miss")

// baseTTL is the cached cart lifetime before jitter.
const baseTTL = 15 * time.Minute

// CartCache stores cart snapshots keyed by user.
type CartCache interface {
	Get(ctx context.Context, userID string) (*cart.Cart, error)
	Set(ctx context.Context, c *cart.Cart) error
	Delete(ctx context.Context, userID string) error
}

// RedisCache implements CartCache on a Redis client. TTLs carry a random
// jitter so a burst of carts cached together does not expire together.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func cartKey(userID string) string {
	return "cart:" + userID
}

func (r *RedisCache) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	raw, err := r.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading cached cart: %w", err)
	}
	c := &cart.Cart{}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("decoding cached cart: %w", err)
	}
	return c, nil
}

func (r *RedisCache) Set(ctx context.Context, c *cart.Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}
	ttl := baseTTL + time.Duration(rand.Intn(60))*time.Second
	if err := r.client.Set(ctx, cartKey(c.UserID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("caching cart: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("invalidating cached cart: %w", err)
	}
	return nil
}
