package memstore

import (
	"context"
	"sync"

	"github.com/orderkaro/orderkaro/internal/domain/order"
)

// OrderStore keeps orders per user in creation order.
type OrderStore struct {
	mu     sync.RWMutex
	byUser map[string][]*order.Order
	locks  *keyedMutex
}

func NewOrderStore() *OrderStore {
	return &OrderStore{
		byUser: make(map[string][]*order.Order),
		locks:  newKeyedMutex(),
	}
}

func (s *OrderStore) Create(_ context.Context, o *order.Order) error {
	lock := s.locks.lock(o.UserID)
	defer lock.Unlock()

	cp := cloneOrder(o)
	s.mu.Lock()
	s.byUser[o.UserID] = append(s.byUser[o.UserID], cp)
	s.mu.Unlock()
	return nil
}

func (s *OrderStore) ListByUser(_ context.Context, userID string) ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.byUser[userID]
	out := make([]order.Order, 0, len(stored))
	for _, o := range stored {
		out = append(out, *cloneOrder(o))
	}
	return out, nil
}

func (s *OrderStore) Get(_ context.Context, userID, orderID string) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.byUser[userID] {
		if o.ID == orderID {
			return cloneOrder(o), nil
		}
	}
	return nil, order.ErrNotFound
}

func (s *OrderStore) Mutate(_ context.Context, userID, orderID string, fn func(*order.Order) error) (*order.Order, error) {
	lock := s.locks.lock(userID)
	defer lock.Unlock()

	s.mu.RLock()
	var stored *order.Order
	for _, o := range s.byUser[userID] {
		if o.ID == orderID {
			stored = o
			break
		}
	}
	s.mu.RUnlock()
	if stored == nil {
		return nil, order.ErrNotFound
	}

	work := cloneOrder(stored)
	if err := fn(work); err != nil {
		return nil, err
	}

	s.mu.Lock()
	*stored = *cloneOrder(work)
	s.mu.Unlock()
	return cloneOrder(work), nil
}

func cloneOrder(o *order.Order) *order.Order {
	cp := *o
	cp.Lines = make([]order.Line, len(o.Lines))
	copy(cp.Lines, o.Lines)
	return &cp
}
