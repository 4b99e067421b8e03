package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orderkaro/orderkaro/internal/domain/address"
	"github.com/orderkaro/orderkaro/internal/domain/order"
)

const (
	orderColumns = `id, user_id, items, shipping_address, payment_method, status,
		total_amount, created_at, updated_at`

	insertOrderSQL = `INSERT INTO orders
		(id, user_id, items, shipping_address, payment_method, status, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 ORDER BY position`

	getOrderSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 AND id = $2`

	getOrderForUpdateSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 AND id = $2 FOR UPDATE`

	updateOrderSQL = `UPDATE orders SET status = $3, updated_at = $4
		WHERE user_id = $1 AND id = $2`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Lines and
// the shipping address are immutable snapshots stored as JSONB.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create stores a new order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	lines, addr, err := encodeOrder(o)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, insertOrderSQL,
		o.ID, o.UserID, lines, addr, o.PaymentMethod, string(o.Status),
		o.TotalAmount, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("storing order %q: %w", o.ID, err)
	}
	return nil
}

// ListByUser returns the user's orders in creation order.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// Get returns an order scoped to the given user. An order owned by another
// user is reported as absent.
func (r *OrderRepository) Get(ctx context.Context, userID, orderID string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, userID, orderID)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", orderID, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", orderID, err)
	}
	return &o, nil
}

// Mutate runs fn on the order under a row lock and persists the resulting
// status and timestamp. Only status transitions mutate a stored order.
func (r *OrderRepository) Mutate(ctx context.Context, userID, orderID string, fn func(*order.Order) error) (*order.Order, error) {
	var out *order.Order
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, getOrderForUpdateSQL, userID, orderID)
		if err != nil {
			return fmt.Errorf("locking order %q: %w", orderID, err)
		}
		o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return order.ErrNotFound
			}
			return fmt.Errorf("locking order %q: %w", orderID, err)
		}

		if err := fn(&o); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, updateOrderSQL, userID, orderID, string(o.Status), o.UpdatedAt); err != nil {
			return fmt.Errorf("updating order %q: %w", orderID, err)
		}
		out = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func encodeOrder(o *order.Order) (lines, addr []byte, err error) {
	lines, err = json.Marshal(o.Lines)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding order lines: %w", err)
	}
	addr, err = json.Marshal(o.ShippingAddress)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding shipping address: %w", err)
	}
	return lines, addr, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o      order.Order
		lines  []byte
		addr   []byte
		status string
	)
	err := row.Scan(
		&o.ID, &o.UserID, &lines, &addr, &o.PaymentMethod, &status,
		&o.TotalAmount, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}
	o.Status = order.Status(status)
	if err := json.Unmarshal(lines, &o.Lines); err != nil {
		return o, fmt.Errorf("decoding order lines: %w", err)
	}
	var shipping address.Address
	if err := json.Unmarshal(addr, &shipping); err != nil {
		return o, fmt.Errorf("decoding shipping address: %w", err)
	}
	o.ShippingAddress = shipping
	return o, nil
}
