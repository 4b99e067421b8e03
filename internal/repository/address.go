package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orderkaro/orderkaro/internal/domain/address"
)

const (
	addressColumns = `id, user_id, name, full_name, phone, address_line1, address_line2,
		city, state, postal_code, country, is_default`

	listAddressesSQL = `SELECT ` + addressColumns + ` FROM addresses
		WHERE user_id = $1 ORDER BY position`

	lockAddressesSQL = `SELECT ` + addressColumns + ` FROM addresses
		WHERE user_id = $1 ORDER BY position FOR UPDATE`

	deleteAddressesSQL = `DELETE FROM addresses WHERE user_id = $1`

	insertAddressSQL = `INSERT INTO addresses
		(id, user_id, name, full_name, phone, address_line1, address_line2,
		 city, state, postal_code, country, is_default, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
)

var _ address.Repository = (*AddressRepository)(nil)

// AddressRepository implements address.Repository backed by PostgreSQL.
type AddressRepository struct {
	pool *pgxpool.Pool
}

// NewAddressRepository returns an AddressRepository that uses the given pool.
func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

// ListByUser returns the user's address book in insertion order.
func (r *AddressRepository) ListByUser(ctx context.Context, userID string) ([]address.Address, error) {
	rows, err := r.pool.Query(ctx, listAddressesSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing addresses for %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanAddress)
}

// Mutate replaces the user's address book with the slice fn returns. Row
// locks on the existing book serialize concurrent writers, and the rewrite
// keeps positions dense so insertion order survives deletes.
func (r *AddressRepository) Mutate(ctx context.Context, userID string, fn func([]address.Address) ([]address.Address, error)) ([]address.Address, error) {
	var out []address.Address
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, lockAddressesSQL, userID)
		if err != nil {
			return fmt.Errorf("locking addresses for %q: %w", userID, err)
		}
		book, err := pgx.CollectRows(rows, scanAddress)
		if err != nil {
			return fmt.Errorf("scanning addresses for %q: %w", userID, err)
		}

		next, err := fn(book)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, deleteAddressesSQL, userID); err != nil {
			return fmt.Errorf("clearing addresses for %q: %w", userID, err)
		}
		for i, a := range next {
			_, err := tx.Exec(ctx, insertAddressSQL,
				a.ID, userID, a.Name, a.FullName, a.Phone, a.AddressLine1, a.AddressLine2,
				a.City, a.State, a.PostalCode, a.Country, a.IsDefault, i,
			)
			if err != nil {
				return fmt.Errorf("storing address %q: %w", a.ID, err)
			}
		}
		out = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanAddress(row pgx.CollectableRow) (address.Address, error) {
	var a address.Address
	err := row.Scan(
		&a.ID, &a.UserID, &a.Name, &a.FullName, &a.Phone, &a.AddressLine1,
		&a.AddressLine2, &a.City, &a.State, &a.PostalCode, &a.Country, &a.IsDefault,
	)
	return a, err
}
