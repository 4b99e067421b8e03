package address

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Service enforces the address book rules: required-field validation, the
// single-default invariant on add and update, and default promotion on
// delete.
type Service struct {
	addresses Repository
}

// NewService creates an address Service backed by the given repository.
func NewService(addresses Repository) *Service {
	return &Service{addresses: addresses}
}

// List returns the user's addresses in insertion order, empty if none.
func (s *Service) List(ctx context.Context, userID string) ([]Address, error) {
	out, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list addresses")
	}
	if out == nil {
		out = []Address{}
	}
	return out, nil
}

// Add appends a new address. The first address for a user, or one explicitly
// requested as default, becomes the default and demotes every sibling.
func (s *Service) Add(ctx context.Context, userID string, f Fields) (*Address, error) {
	addr := Address{
		ID:           uuid.New().String(),
		UserID:       userID,
		Name:         deref(f.Name),
		FullName:     deref(f.FullName),
		Phone:        deref(f.Phone),
		AddressLine1: deref(f.AddressLine1),
		AddressLine2: deref(f.AddressLine2),
		City:         deref(f.City),
		State:        deref(f.State),
		PostalCode:   deref(f.PostalCode),
		Country:      deref(f.Country),
		IsDefault:    f.IsDefault != nil && *f.IsDefault,
	}
	if addr.Country == "" {
		addr.Country = DefaultCountry
	}
	if addr.Name == "" || addr.FullName == "" || addr.Phone == "" ||
		addr.AddressLine1 == "" || addr.City == "" || addr.State == "" || addr.PostalCode == "" {
		return nil, ErrMissingFields
	}

	var created Address
	_, err := s.addresses.Mutate(ctx, userID, func(existing []Address) ([]Address, error) {
		if addr.IsDefault || len(existing) == 0 {
			for i := range existing {
				existing[i].IsDefault = false
			}
			addr.IsDefault = true
		}
		created = addr
		return append(existing, addr), nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "add address")
	}
	return &created, nil
}

// Update merges non-nil fields onto the stored address. The id is immutable.
// Setting IsDefault demotes every sibling.
func (s *Service) Update(ctx context.Context, userID, addressID string, f Fields) (*Address, error) {
	var updated Address
	_, err := s.addresses.Mutate(ctx, userID, func(existing []Address) ([]Address, error) {
		idx := -1
		for i := range existing {
			if existing[i].ID == addressID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, ErrNotFound
		}

		a := &existing[idx]
		merge(&a.Name, f.Name)
		merge(&a.FullName, f.FullName)
		merge(&a.Phone, f.Phone)
		merge(&a.AddressLine1, f.AddressLine1)
		merge(&a.AddressLine2, f.AddressLine2)
		merge(&a.City, f.City)
		merge(&a.State, f.State)
		merge(&a.PostalCode, f.PostalCode)
		merge(&a.Country, f.Country)
		if f.IsDefault != nil {
			a.IsDefault = *f.IsDefault
		}

		if a.IsDefault {
			for i := range existing {
				if i != idx {
					existing[i].IsDefault = false
				}
			}
		}
		updated = *a
		return existing, nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "update address")
	}
	return &updated, nil
}

// Delete removes the address. When the default address is deleted and others
// remain, the first remaining address (stable order) is promoted to default.
func (s *Service) Delete(ctx context.Context, userID, addressID string) error {
	_, err := s.addresses.Mutate(ctx, userID, func(existing []Address) ([]Address, error) {
		idx := -1
		for i := range existing {
			if existing[i].ID == addressID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, ErrNotFound
		}

		wasDefault := existing[idx].IsDefault
		remaining := append(existing[:idx], existing[idx+1:]...)
		if wasDefault && len(remaining) > 0 {
			remaining[0].IsDefault = true
		}
		return remaining, nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return errors.Wrap(err, "delete address")
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func merge(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
