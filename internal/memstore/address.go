package memstore

import (
	"context"
	"sync"

	"github.com/orderkaro/orderkaro/internal/domain/address"
)

// AddressStore keeps each user's address book in insertion order.
type AddressStore struct {
	mu    sync.RWMutex
	books map[string][]address.Address
	locks *keyedMutex
}

func NewAddressStore() *AddressStore {
	return &AddressStore{
		books: make(map[string][]address.Address),
		locks: newKeyedMutex(),
	}
}

func (s *AddressStore) ListByUser(_ context.Context, userID string) ([]address.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	book := s.books[userID]
	out := make([]address.Address, len(book))
	copy(out, book)
	return out, nil
}

func (s *AddressStore) Mutate(_ context.Context, userID string, fn func([]address.Address) ([]address.Address, error)) ([]address.Address, error) {
	lock := s.locks.lock(userID)
	defer lock.Unlock()

	s.mu.RLock()
	book := s.books[userID]
	work := make([]address.Address, len(book))
	copy(work, book)
	s.mu.RUnlock()

	next, err := fn(work)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.books[userID] = next
	s.mu.Unlock()

	out := make([]address.Address, len(next))
	copy(out, next)
	return out, nil
}
