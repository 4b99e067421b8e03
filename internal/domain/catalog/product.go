package catalog

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// ErrCategoryNotFound is returned when a requested category does not exist.
var ErrCategoryNotFound = errors.New("category not found")

// OutOfStockError indicates a requested quantity exceeds the available stock
// for a product.
type OutOfStockError struct {
	ProductID string
	Available int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("product %s is out of stock (%d available)", e.ProductID, e.Available)
}

// Product represents a catalog item available for purchase. Prices are in
// whole currency units (INR). SalePrice, when set, must be lower than Price.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	SalePrice   *decimal.Decimal
	ImageURL    string
	Unit        string
	Stock       int
	CategoryID  string
	Featured    bool
	Rating      float64
	Reviews     int
	Nutrition   map[string]string
}

// OnSale reports whether the product has an active sale price.
func (p Product) OnSale() bool {
	return p.SalePrice != nil && p.SalePrice.IsPositive() && p.SalePrice.LessThan(p.Price)
}

// EffectivePrice returns the price a buyer pays: the sale price when one is
// active, the regular price otherwise.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.OnSale() {
		return *p.SalePrice
	}
	return p.Price
}

// Category is static reference data grouping products.
type Category struct {
	ID   string
	Name string
	Icon string
}

// StockLine names a product and the quantity to reserve from its stock.
type StockLine struct {
	ProductID string
	Quantity  int
}

// Repository defines read and stock operations for the product catalog.
// DecrementStock must be atomic across all lines: either every line's stock
// is reduced or none is, and a shortfall is reported as *OutOfStockError.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	ListFeatured(ctx context.Context) ([]Product, error)
	DecrementStock(ctx context.Context, lines []StockLine) error

	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
}
