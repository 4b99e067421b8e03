package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderkaro/orderkaro/internal/domain/address"
	"github.com/orderkaro/orderkaro/internal/domain/catalog"
)

// RequestLine is one requested order line. Unit prices are never taken from
// the client; they are captured from the catalog at creation time.
type RequestLine struct {
	ProductID string
	Quantity  int
}

// CreateRequest holds the input for placing an order.
type CreateRequest struct {
	Lines           []RequestLine
	ShippingAddress address.Address
	PaymentMethod   string
}

// Service encapsulates order placement and cancellation.
type Service struct {
	products catalog.Repository
	orders   Repository
	now      func() time.Time
}

// NewService creates an order Service with the required dependencies.
func NewService(products catalog.Repository, orders Repository) *Service {
	return &Service{products: products, orders: orders, now: time.Now}
}

// Create validates the request, captures each line's unit price from the
// catalog (sale price preferred), atomically decrements stock, computes the
// immutable total, and persists the order with status pending.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*Order, error) {
	if len(req.Lines) == 0 || req.PaymentMethod == "" || emptyAddress(req.ShippingAddress) {
		return nil, ErrMissingFields
	}

	ids := make([]string, len(req.Lines))
	for i, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: line.ProductID}
		}
		ids[i] = line.ProductID
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	byID := make(map[string]catalog.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	// Capture unit prices and build the stock reservation in one pass.
	lines := make([]Line, len(req.Lines))
	stock := make([]catalog.StockLine, len(req.Lines))
	total := decimal.Zero
	for i, line := range req.Lines {
		p, ok := byID[line.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: line.ProductID}
		}
		unit := p.EffectivePrice()
		lines[i] = Line{ProductID: line.ProductID, Quantity: line.Quantity, UnitPrice: unit}
		stock[i] = catalog.StockLine{ProductID: line.ProductID, Quantity: line.Quantity}
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	// All-or-nothing stock decrement; a shortfall surfaces as *OutOfStockError.
	if err := s.products.DecrementStock(ctx, stock); err != nil {
		return nil, err
	}

	now := s.now()
	o := &Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Lines:           lines,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Status:          StatusPending,
		TotalAmount:     total,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// ListForUser returns the user's orders in insertion order.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	out, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	if out == nil {
		out = []Order{}
	}
	return out, nil
}

// Get returns the order, scoped to the requesting user. Orders belonging to
// another user are reported as not found.
func (s *Service) Get(ctx context.Context, userID, orderID string) (*Order, error) {
	o, err := s.orders.Get(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get order")
	}
	return o, nil
}

// Cancel transitions the order to cancelled. Only pending and processing
// orders may be cancelled; anything else is a rejected transition that
// leaves the order untouched.
func (s *Service) Cancel(ctx context.Context, userID, orderID string) (*Order, error) {
	o, err := s.orders.Mutate(ctx, userID, orderID, func(o *Order) error {
		if !o.Status.Cancellable() {
			return &InvalidTransitionError{OrderID: o.ID, From: o.Status}
		}
		o.Status = StatusCancelled
		o.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func emptyAddress(a address.Address) bool {
	return a.AddressLine1 == "" && a.City == "" && a.PostalCode == ""
}
