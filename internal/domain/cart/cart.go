package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrItemNotFound is returned when a cart line does not exist.
var ErrItemNotFound = errors.New("cart item not found")

// ErrInvalidQuantity is returned when an add request carries a non-positive
// quantity or no product reference.
var ErrInvalidQuantity = errors.New("product id and a positive quantity are required")

// Item is a single cart line. At most one line exists per (user, product)
// pair; adding the same product again accumulates into the existing line.
type Item struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// Cart is the stored per-user aggregate. Totals are never stored; they are
// derived against current catalog prices when the cart is viewed.
type Cart struct {
	UserID string `json:"user_id"`
	Items  []Item `json:"items"`
}

// Clone returns a deep copy so callers can mutate without aliasing the
// stored slice.
func (c *Cart) Clone() *Cart {
	out := &Cart{UserID: c.UserID, Items: make([]Item, len(c.Items))}
	copy(out.Items, c.Items)
	return out
}

// View is a cart snapshot with derived totals, returned by every cart
// operation.
type View struct {
	Items       []Item
	TotalItems  int
	TotalAmount decimal.Decimal
}

// Repository defines persistence for cart aggregates. A user without a
// stored cart is not an error: Get synthesizes an empty cart for them.
//
// Mutate loads the user's cart (synthesizing an empty one when absent), runs
// fn on it, and persists the result, all under per-user mutual exclusion so
// concurrent mutations of one user's cart serialize. fn returning an error
// aborts the mutation without persisting.
type Repository interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	Mutate(ctx context.Context, userID string, fn func(*Cart) error) (*Cart, error)
}
