package memstore

import (
	"context"
	"sync"

	"github.com/orderkaro/orderkaro/internal/domain/catalog"
)

// CatalogStore keeps products and categories in memory. Products preserve
// seed order, which drives the "newest" sort.
type CatalogStore struct {
	mu         sync.RWMutex
	products   []catalog.Product
	byID       map[string]int
	categories []catalog.Category
	catByID    map[string]int
}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		byID:    make(map[string]int),
		catByID: make(map[string]int),
	}
}

// Seed replaces the store contents.
func (s *CatalogStore) Seed(products []catalog.Product, categories []catalog.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = make([]catalog.Product, len(products))
	copy(s.products, products)
	s.byID = make(map[string]int, len(products))
	for i, p := range s.products {
		s.byID[p.ID] = i
	}
	s.categories = make([]catalog.Category, len(categories))
	copy(s.categories, categories)
	s.catByID = make(map[string]int, len(categories))
	for i, c := range s.categories {
		s.catByID[c.ID] = i
	}
}

func (s *CatalogStore) List(_ context.Context, filter catalog.ListFilter) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.Filter(s.products, filter), nil
}

func (s *CatalogStore) GetByID(_ context.Context, id string) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	p := s.products[i]
	return &p, nil
}

func (s *CatalogStore) GetByIDs(_ context.Context, ids []string) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if i, ok := s.byID[id]; ok {
			out = append(out, s.products[i])
		}
	}
	return out, nil
}

func (s *CatalogStore) ListFeatured(_ context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []catalog.Product
	for _, p := range s.products {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out, nil
}

// DecrementStock reserves stock for every line or none. Validation happens
// under the write lock so concurrent orders cannot oversell. Lines repeating
// a product are validated against their summed quantity.
func (s *CatalogStore) DecrementStock(_ context.Context, lines []catalog.StockLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := make(map[string]int, len(lines))
	for _, l := range lines {
		if _, ok := s.byID[l.ProductID]; !ok {
			return catalog.ErrNotFound
		}
		wanted[l.ProductID] += l.Quantity
	}
	for id, qty := range wanted {
		if stock := s.products[s.byID[id]].Stock; stock < qty {
			return &catalog.OutOfStockError{ProductID: id, Available: stock}
		}
	}
	for id, qty := range wanted {
		s.products[s.byID[id]].Stock -= qty
	}
	return nil
}

func (s *CatalogStore) ListCategories(_ context.Context) ([]catalog.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

func (s *CatalogStore) GetCategory(_ context.Context, id string) (*catalog.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.catByID[id]
	if !ok {
		return nil, catalog.ErrCategoryNotFound
	}
	c := s.categories[i]
	return &c, nil
}
