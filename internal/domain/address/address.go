package address

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when an address does not exist for the user.
var ErrNotFound = errors.New("address not found")

// ErrMissingFields is returned when a create request omits any required
// field (name, full name, phone, address line 1, city, state, postal code).
var ErrMissingFields = errors.New("required address fields are missing")

// DefaultCountry is applied when a request does not name a country.
const DefaultCountry = "India"

// Address is a shipping address in a user's address book. Exactly one address
// per user carries IsDefault whenever the user has at least one address.
type Address struct {
	ID           string `json:"id"`
	UserID       string `json:"-"`
	Name         string `json:"name"`
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	IsDefault    bool   `json:"is_default"`
}

// Fields carries a partial address for create and update requests. Nil
// pointers mean "leave unchanged" on update and "absent" on create.
type Fields struct {
	Name         *string
	FullName     *string
	Phone        *string
	AddressLine1 *string
	AddressLine2 *string
	City         *string
	State        *string
	PostalCode   *string
	Country      *string
	IsDefault    *bool
}

// Repository defines persistence for a user's address collection.
//
// Mutate loads the user's addresses in stable insertion order, runs fn, and
// persists the returned slice atomically under per-user mutual exclusion, so
// the single-default invariant cannot be broken by concurrent writers.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]Address, error)
	Mutate(ctx context.Context, userID string, fn func([]Address) ([]Address, error)) ([]Address, error)
}
