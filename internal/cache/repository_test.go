package cache

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderkaro/orderkaro/internal/domain/cart"
)

// --- Mock implementations ---

type fakeCache struct {
	mu      sync.Mutex
	carts   map[string]*cart.Cart
	sets    int
	deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{carts: map[string]*cart.Cart{}}
}

func (f *fakeCache) Get(_ context.Context, userID string) (*cart.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[userID]
	if !ok {
		return nil, ErrCacheMiss
	}
	return c.Clone(), nil
}

func (f *fakeCache) Set(_ context.Context, c *cart.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.carts[c.UserID] = c.Clone()
	f.sets++
	return nil
}

func (f *fakeCache) Delete(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, userID)
	f.deletes++
	return nil
}

type countingRepo struct {
	mu    sync.Mutex
	carts map[string]*cart.Cart
	gets  int
}

func newCountingRepo() *countingRepo {
	return &countingRepo{carts: map[string]*cart.Cart{}}
}

func (r *countingRepo) Get(_ context.Context, userID string) (*cart.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	c, ok := r.carts[userID]
	if !ok {
		return &cart.Cart{UserID: userID}, nil
	}
	return c.Clone(), nil
}

func (r *countingRepo) Mutate(_ context.Context, userID string, fn func(*cart.Cart) error) (*cart.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		c = &cart.Cart{UserID: userID}
	}
	work := c.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	r.carts[userID] = work
	return work.Clone(), nil
}

// --- Tests ---

func TestGet_MissPopulatesCache(t *testing.T) {
	inner := newCountingRepo()
	inner.carts["u1"] = &cart.Cart{UserID: "u1", Items: []cart.Item{{ID: "i1", ProductID: "p1", Quantity: 2}}}
	fc := newFakeCache()
	repo := NewCachedRepository(inner, fc)
	ctx := context.Background()

	c, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)
	assert.Equal(t, 1, inner.gets)
	assert.Equal(t, 1, fc.sets)

	_, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.gets, "a warm cache must not hit the store")
}

func TestMutate_Invalidates(t *testing.T) {
	inner := newCountingRepo()
	fc := newFakeCache()
	repo := NewCachedRepository(inner, fc)
	ctx := context.Background()

	_, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 1, fc.sets)

	c, err := repo.Mutate(ctx, "u1", func(c *cart.Cart) error {
		c.Items = append(c.Items, cart.Item{ID: "i1", ProductID: "p1", Quantity: 3})
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)
	assert.Equal(t, 1, fc.deletes)

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, got.Items, 1, "reads after a mutation must not serve the stale snapshot")
}

func TestGet_ConcurrentMissesCollapse(t *testing.T) {
	inner := newCountingRepo()
	inner.carts["u1"] = &cart.Cart{UserID: "u1", Items: []cart.Item{{ID: "i1", ProductID: "p1", Quantity: 1}}}
	repo := NewCachedRepository(inner, newFakeCache())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := repo.Get(context.Background(), "u1")
			assert.NoError(t, err)
			assert.Len(t, c.Items, 1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, inner.gets, 2, "concurrent misses should collapse into at most a couple of loads")
}
