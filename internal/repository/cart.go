package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orderkaro/orderkaro/internal/domain/cart"
)

const (
	getCartSQL = `SELECT items FROM carts WHERE user_id = $1`

	getCartForUpdateSQL = `SELECT items FROM carts WHERE user_id = $1 FOR UPDATE`

	upsertCartSQL = `INSERT INTO carts (user_id, items, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET items = EXCLUDED.items, updated_at = now()`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL. Cart lines
// are stored as a JSONB document per user.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Get returns the user's cart, or an empty one when none is stored.
func (r *CartRepository) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, getCartSQL, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return &cart.Cart{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting cart for %q: %w", userID, err)
	}
	return decodeCart(userID, raw)
}

// Mutate runs fn on the user's cart inside a transaction. The row lock on
// the cart serializes concurrent mutations for one user.
func (r *CartRepository) Mutate(ctx context.Context, userID string, fn func(*cart.Cart) error) (*cart.Cart, error) {
	var out *cart.Cart
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		c := &cart.Cart{UserID: userID}
		var raw []byte
		err := tx.QueryRow(ctx, getCartForUpdateSQL, userID).Scan(&raw)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			// First mutation for this user, start from an empty cart.
		case err != nil:
			return fmt.Errorf("locking cart for %q: %w", userID, err)
		default:
			if c, err = decodeCart(userID, raw); err != nil {
				return err
			}
		}

		if err := fn(c); err != nil {
			return err
		}

		encoded, err := json.Marshal(c.Items)
		if err != nil {
			return fmt.Errorf("encoding cart for %q: %w", userID, err)
		}
		if _, err := tx.Exec(ctx, upsertCartSQL, userID, encoded); err != nil {
			return fmt.Errorf("storing cart for %q: %w", userID, err)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodeCart(userID string, raw []byte) (*cart.Cart, error) {
	c := &cart.Cart{UserID: userID}
	if len(raw) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(raw, &c.Items); err != nil {
		return nil, fmt.Errorf("decoding cart for %q: %w", userID, err)
	}
	return c, nil
}
