package memstore

import (
	"context"
	"sync"

	"github.com/orderkaro/orderkaro/internal/domain/user"
)

// UserStore keeps accounts keyed by id and email.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]*user.User
	byEmail map[string]*user.User
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]*user.User),
		byEmail: make(map[string]*user.User),
	}
}

func (s *UserStore) Create(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[u.Email]; ok {
		return user.ErrExists
	}
	cp := *u
	s.byID[u.ID] = &cp
	s.byEmail[u.Email] = &cp
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *UserStore) Update(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.byID[u.ID]
	if !ok {
		return user.ErrNotFound
	}
	cp := *u
	if old.Email != cp.Email {
		delete(s.byEmail, old.Email)
	}
	s.byID[cp.ID] = &cp
	s.byEmail[cp.Email] = &cp
	return nil
}
