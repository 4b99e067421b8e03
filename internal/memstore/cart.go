package memstore

import (
	"context"
	"sync"

	"github.com/orderkaro/orderkaro/internal/domain/cart"
)

// CartStore keeps one cart per user.
type CartStore struct {
	mu    sync.RWMutex
	carts map[string]*cart.Cart
	locks *keyedMutex
}

func NewCartStore() *CartStore {
	return &CartStore{
		carts: make(map[string]*cart.Cart),
		locks: newKeyedMutex(),
	}
}

func (s *CartStore) Get(_ context.Context, userID string) (*cart.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[userID]
	if !ok {
		return &cart.Cart{UserID: userID}, nil
	}
	return c.Clone(), nil
}

func (s *CartStore) Mutate(_ context.Context, userID string, fn func(*cart.Cart) error) (*cart.Cart, error) {
	lock := s.locks.lock(userID)
	defer lock.Unlock()

	s.mu.RLock()
	stored, ok := s.carts[userID]
	s.mu.RUnlock()

	var c *cart.Cart
	if ok {
		c = stored.Clone()
	} else {
		c = &cart.Cart{UserID: userID}
	}
	if err := fn(c); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.carts[userID] = c
	s.mu.Unlock()
	return c.Clone(), nil
}
