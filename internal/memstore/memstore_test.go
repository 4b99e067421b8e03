package memstore

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderkaro/orderkaro/internal/domain/cart"
	"github.com/orderkaro/orderkaro/internal/domain/catalog"
	"github.com/orderkaro/orderkaro/internal/domain/order"
)

// --- Helpers ---

func seededCatalog(t *testing.T) *CatalogStore {
	t.Helper()
	s := NewCatalogStore()
	sale := decimal.NewFromInt(99)
	s.Seed([]catalog.Product{
		{ID: "p1", Name: "Fresh Organic Apples", Price: decimal.NewFromInt(120), SalePrice: &sale, Stock: 50, CategoryID: "fruits-vegetables", Featured: true},
		{ID: "p2", Name: "Whole Wheat Bread", Price: decimal.NewFromInt(45), Stock: 30, CategoryID: "bakery"},
		{ID: "p3", Name: "Farm Fresh Milk", Price: decimal.NewFromInt(60), Stock: 20, CategoryID: "dairy-eggs"},
	}, []catalog.Category{
		{ID: "fruits-vegetables", Name: "Fruits & Vegetables"},
		{ID: "bakery", Name: "Bakery"},
		{ID: "dairy-eggs", Name: "Dairy & Eggs"},
	})
	return s
}

// --- Tests ---

func TestCatalogStore_Lookups(t *testing.T) {
	s := seededCatalog(t)
	ctx := context.Background()

	all, err := s.List(ctx, catalog.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	p, err := s.GetByID(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, "Whole Wheat Bread", p.Name)

	_, err = s.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	got, err := s.GetByIDs(ctx, []string{"p3", "missing", "p1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p3", got[0].ID)
	assert.Equal(t, "p1", got[1].ID)

	featured, err := s.ListFeatured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, "p1", featured[0].ID)
}

func TestCatalogStore_Categories(t *testing.T) {
	s := seededCatalog(t)
	ctx := context.Background()

	cats, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 3)

	c, err := s.GetCategory(ctx, "bakery")
	require.NoError(t, err)
	assert.Equal(t, "Bakery", c.Name)

	_, err = s.GetCategory(ctx, "missing")
	assert.ErrorIs(t, err, catalog.ErrCategoryNotFound)
}

func TestCatalogStore_DecrementStockAllOrNothing(t *testing.T) {
	s := seededCatalog(t)
	ctx := context.Background()

	err := s.DecrementStock(ctx, []catalog.StockLine{
		{ProductID: "p1", Quantity: 10},
		{ProductID: "p3", Quantity: 25},
	})
	var oos *catalog.OutOfStockError
	require.ErrorAs(t, err, &oos)
	assert.Equal(t, "p3", oos.ProductID)
	assert.Equal(t, 20, oos.Available)

	p, err := s.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 50, p.Stock, "a failed batch must not touch any line")

	require.NoError(t, s.DecrementStock(ctx, []catalog.StockLine{
		{ProductID: "p1", Quantity: 10},
		{ProductID: "p3", Quantity: 20},
	}))
	p, err = s.GetByID(ctx, "p3")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
}

func TestCatalogStore_DecrementStockSumsRepeatedLines(t *testing.T) {
	s := NewCatalogStore()
	s.Seed([]catalog.Product{{ID: "p1", Name: "Bananas", Price: decimal.NewFromInt(50), Stock: 3}}, nil)
	ctx := context.Background()

	err := s.DecrementStock(ctx, []catalog.StockLine{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p1", Quantity: 2},
	})
	var oos *catalog.OutOfStockError
	require.ErrorAs(t, err, &oos)
	assert.Equal(t, "p1", oos.ProductID)
	assert.Equal(t, 3, oos.Available)

	p, err := s.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock, "a rejected batch must not touch stock")

	require.NoError(t, s.DecrementStock(ctx, []catalog.StockLine{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p1", Quantity: 1},
	}))
	p, err = s.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
}

func TestCatalogStore_ConcurrentDecrementNeverOversells(t *testing.T) {
	s := NewCatalogStore()
	s.Seed([]catalog.Product{{ID: "p1", Name: "Bananas", Price: decimal.NewFromInt(50), Stock: 10}}, nil)

	var wg sync.WaitGroup
	sold := make(chan int, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.DecrementStock(context.Background(), []catalog.StockLine{{ProductID: "p1", Quantity: 1}}); err == nil {
				sold <- 1
			}
		}()
	}
	wg.Wait()
	close(sold)

	total := 0
	for n := range sold {
		total += n
	}
	assert.Equal(t, 10, total)
	p, err := s.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
}

func TestCartStore_GetSynthesizesEmptyCart(t *testing.T) {
	s := NewCartStore()

	c, err := s.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID)
	assert.Empty(t, c.Items)
}

func TestCartStore_MutateFailureDoesNotPersist(t *testing.T) {
	s := NewCartStore()
	ctx := context.Background()

	_, err := s.Mutate(ctx, "u1", func(c *cart.Cart) error {
		c.Items = append(c.Items, cart.Item{ID: "i1", ProductID: "p1", Quantity: 1})
		return nil
	})
	require.NoError(t, err)

	_, err = s.Mutate(ctx, "u1", func(c *cart.Cart) error {
		c.Items = nil
		return cart.ErrInvalidQuantity
	})
	require.Error(t, err)

	c, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, c.Items, 1, "aborted mutations must leave the cart untouched")
}

func TestCartStore_ConcurrentMutationsAccumulate(t *testing.T) {
	s := NewCartStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Mutate(context.Background(), "u1", func(c *cart.Cart) error {
				if len(c.Items) == 0 {
					c.Items = []cart.Item{{ID: "i1", ProductID: "p1", Quantity: 1}}
					return nil
				}
				c.Items[0].Quantity++
				return nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	c, err := s.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 50, c.Items[0].Quantity)
}

func TestOrderStore_ScopeAndMutate(t *testing.T) {
	s := NewOrderStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &order.Order{ID: "o1", UserID: "u1", Status: order.StatusPending}))
	require.NoError(t, s.Create(ctx, &order.Order{ID: "o2", UserID: "u2", Status: order.StatusPending}))

	_, err := s.Get(ctx, "u1", "o2")
	assert.ErrorIs(t, err, order.ErrNotFound)

	got, err := s.Mutate(ctx, "u1", "o1", func(o *order.Order) error {
		o.Status = order.StatusCancelled
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, got.Status)

	stored, err := s.Get(ctx, "u1", "o1")
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, stored.Status)

	listed, err := s.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "o1", listed[0].ID)
}
