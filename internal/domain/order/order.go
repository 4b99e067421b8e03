package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/orderkaro/orderkaro/internal/domain/address"
)

// Status is the order lifecycle state.
//
//	pending → processing → shipped → delivered
//	pending → cancelled
//	processing → cancelled
//
// delivered and cancelled are terminal.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Cancellable reports whether an order in this status may still be cancelled.
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusProcessing
}

// Terminal reports whether the status has no outgoing transitions.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// ErrMissingFields is returned when a create request omits its items, its
// shipping address, or its payment method.
var ErrMissingFields = errors.New("items, shipping address, and payment method are required")

// ErrNotFound covers both unknown order ids and orders owned by another
// user, so existence is never leaked across users.
var ErrNotFound = errors.New("order not found")

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidTransitionError indicates a rejected status change.
type InvalidTransitionError struct {
	OrderID string
	From    Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %s cannot be cancelled from status %q", e.OrderID, e.From)
}

// Line is an order line with the unit price captured at creation time. It is
// a snapshot, not a live reference: later catalog price changes never touch
// historical orders.
type Line struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
}

// Order is a placed customer order. TotalAmount is computed once at creation
// from the captured line prices and is immutable afterwards.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Lines           []Line          `json:"items"`
	ShippingAddress address.Address `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	Status          Status          `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Repository defines persistence for orders. Reads are scoped to the owning
// user; a foreign order behaves as absent. Mutate loads the order under
// per-user mutual exclusion, runs fn, and persists the result.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	Get(ctx context.Context, userID, orderID string) (*Order, error)
	Mutate(ctx context.Context, userID, orderID string, fn func(*Order) error) (*Order, error)
}
