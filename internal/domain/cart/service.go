package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderkaro/orderkaro/internal/domain/catalog"
)

// Service implements the cart aggregate operations: add accumulates per
// product, updates replace or remove lines, and every mutation returns the
// resulting cart view with derived totals.
type Service struct {
	carts    Repository
	products catalog.Repository
	now      func() time.Time
}

// NewService creates a cart Service backed by the given repositories.
func NewService(carts Repository, products catalog.Repository) *Service {
	return &Service{carts: carts, products: products, now: time.Now}
}

// Get returns the user's cart view. A user without a stored cart gets an
// empty view, never an error.
func (s *Service) Get(ctx context.Context, userID string) (*View, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	return s.view(ctx, c)
}

// AddItem adds quantity of the product to the user's cart. If a line for the
// product already exists its quantity accumulates; otherwise a new line is
// appended with a fresh line id. The accumulated quantity may not exceed the
// product's stock.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) (*View, error) {
	if productID == "" || quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %s", productID)
	}

	c, err := s.carts.Mutate(ctx, userID, func(c *Cart) error {
		for i := range c.Items {
			if c.Items[i].ProductID == productID {
				next := c.Items[i].Quantity + quantity
				if next > p.Stock {
					return &catalog.OutOfStockError{ProductID: productID, Available: p.Stock}
				}
				c.Items[i].Quantity = next
				return nil
			}
		}
		if quantity > p.Stock {
			return &catalog.OutOfStockError{ProductID: productID, Available: p.Stock}
		}
		c.Items = append(c.Items, Item{
			ID:        uuid.New().String(),
			ProductID: productID,
			Quantity:  quantity,
			AddedAt:   s.now(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero or
// less removes the line. Returns ErrItemNotFound when the line is absent.
func (s *Service) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*View, error) {
	c, err := s.carts.Mutate(ctx, userID, func(c *Cart) error {
		idx := -1
		for i := range c.Items {
			if c.Items[i].ID == itemID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return ErrItemNotFound
		}

		if quantity <= 0 {
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			return nil
		}

		p, err := s.products.GetByID(ctx, c.Items[idx].ProductID)
		if err != nil {
			return errors.Wrapf(err, "get product %s", c.Items[idx].ProductID)
		}
		if quantity > p.Stock {
			return &catalog.OutOfStockError{ProductID: p.ID, Available: p.Stock}
		}
		c.Items[idx].Quantity = quantity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// RemoveItem removes a line from the cart. Removal is idempotent: a missing
// line is not an error.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) (*View, error) {
	c, err := s.carts.Mutate(ctx, userID, func(c *Cart) error {
		kept := c.Items[:0]
		for _, it := range c.Items {
			if it.ID != itemID {
				kept = append(kept, it)
			}
		}
		c.Items = kept
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// Clear replaces the cart with an empty one.
func (s *Service) Clear(ctx context.Context, userID string) (*View, error) {
	c, err := s.carts.Mutate(ctx, userID, func(c *Cart) error {
		c.Items = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// view derives totals from current effective prices. Totals are recomputed on
// every read, never stored.
func (s *Service) view(ctx context.Context, c *Cart) (*View, error) {
	v := &View{Items: c.Items, TotalAmount: decimal.Zero}
	if v.Items == nil {
		v.Items = []Item{}
	}
	if len(c.Items) == 0 {
		return v, nil
	}

	ids := make([]string, len(c.Items))
	for i, it := range c.Items {
		ids[i] = it.ProductID
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get cart products")
	}
	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, it := range c.Items {
		v.TotalItems += it.Quantity
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, errors.Wrapf(catalog.ErrNotFound, "cart references product %s", it.ProductID)
		}
		line := p.EffectivePrice().Mul(decimal.NewFromInt(int64(it.Quantity)))
		v.TotalAmount = v.TotalAmount.Add(line)
	}
	return v, nil
}
