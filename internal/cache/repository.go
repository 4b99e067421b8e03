package cache

import (
	"context"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/orderkaro/orderkaro/internal/domain/cart"
)

// invalidateTimeout bounds cache invalidation after a mutation so a slow
// Redis cannot stall checkout writes.
const invalidateTimeout = time.Second

var _ cart.Repository = (*CachedRepository)(nil)

// CachedRepository decorates a cart.Repository with a read-through cache.
// Reads collapse concurrent misses for one user into a single store load;
// mutations write through and invalidate. Cache failures degrade to the
// underlying store and are logged, never surfaced.
type CachedRepository struct {
	inner cart.Repository
	cache CartCache
	group singleflight.Group
}

func NewCachedRepository(inner cart.Repository, cache CartCache) *CachedRepository {
	return &CachedRepository{inner: inner, cache: cache}
}

func (r *CachedRepository) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	if c, err := r.cache.Get(ctx, userID); err == nil {
		return c, nil
	}

	v, err, _ := r.group.Do(userID, func() (any, error) {
		c, err := r.inner.Get(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := r.cache.Set(ctx, c); err != nil {
			zctx.From(ctx).Warn("Cart cache set failed", zap.Error(err))
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*cart.Cart).Clone(), nil
}

func (r *CachedRepository) Mutate(ctx context.Context, userID string, fn func(*cart.Cart) error) (*cart.Cart, error) {
	c, err := r.inner.Mutate(ctx, userID, fn)
	if err != nil {
		return nil, err
	}

	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()
	if err := r.cache.Delete(dctx, userID); err != nil {
		zctx.From(ctx).Warn("Cart cache invalidation failed", zap.Error(err))
	}
	return c, nil
}
