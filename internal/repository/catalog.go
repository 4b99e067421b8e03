package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orderkaro/orderkaro/internal/domain/catalog"
)

const (
	productColumns = `id, name, description, price, sale_price, image_url, unit, stock,
		category_id, featured, rating, reviews, nutrition`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	listFeaturedSQL = `SELECT ` + productColumns + ` FROM products WHERE featured ORDER BY position`

	decrementStockSQL = `UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2`

	getStockSQL = `SELECT stock FROM products WHERE id = $1`

	listCategoriesSQL = `SELECT id, name, icon FROM categories ORDER BY position`

	getCategorySQL = `SELECT id, name, icon FROM categories WHERE id = $1`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// List returns products matching the filter, sorted as requested.
func (r *CatalogRepository) List(ctx context.Context, filter catalog.ListFilter) ([]catalog.Product, error) {
	query := listProductsSQL
	var args []any

	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		query += fmt.Sprintf(" WHERE category_id = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		clause := "WHERE"
		if len(args) > 1 {
			clause = "AND"
		}
		query += fmt.Sprintf(" %s (name ILIKE $%d OR description ILIKE $%d)", clause, len(args), len(args))
	}

	switch filter.Sort {
	case catalog.SortPriceAsc:
		query += " ORDER BY COALESCE(sale_price, price), position"
	case catalog.SortPriceDesc:
		query += " ORDER BY COALESCE(sale_price, price) DESC, position"
	case catalog.SortNewest:
		query += " ORDER BY position DESC"
	default:
		query += " ORDER BY position"
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *CatalogRepository) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *CatalogRepository) GetByIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// ListFeatured returns products flagged for the featured rail.
func (r *CatalogRepository) ListFeatured(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listFeaturedSQL)
	if err != nil {
		return nil, fmt.Errorf("listing featured products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// DecrementStock reserves stock for every line inside one transaction. The
// guarded UPDATE matches zero rows on a shortfall, which rolls the whole
// batch back and reports the remaining stock.
func (r *CatalogRepository) DecrementStock(ctx context.Context, lines []catalog.StockLine) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, l := range lines {
			tag, err := tx.Exec(ctx, decrementStockSQL, l.ProductID, l.Quantity)
			if err != nil {
				return fmt.Errorf("decrementing stock for %q: %w", l.ProductID, err)
			}
			if tag.RowsAffected() == 0 {
				var available int
				if err := tx.QueryRow(ctx, getStockSQL, l.ProductID).Scan(&available); err != nil {
					if errors.Is(err, pgx.ErrNoRows) {
						return catalog.ErrNotFound
					}
					return fmt.Errorf("checking stock for %q: %w", l.ProductID, err)
				}
				return &catalog.OutOfStockError{ProductID: l.ProductID, Available: available}
			}
		}
		return nil
	})
}

// ListCategories returns all categories in display order.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, scanCategory)
}

// GetCategory returns a single category by its identifier.
func (r *CatalogRepository) GetCategory(ctx context.Context, id string) (*catalog.Category, error) {
	rows, err := r.pool.Query(ctx, getCategorySQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting category %q: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("getting category %q: %w", id, err)
	}
	return &c, nil
}

// escapeLike quotes LIKE metacharacters so search text matches literally,
// the same plain substring semantics the in-memory store has.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.SalePrice, &p.ImageURL,
		&p.Unit, &p.Stock, &p.CategoryID, &p.Featured, &p.Rating, &p.Reviews,
		&p.Nutrition,
	)
	return p, err
}

func scanCategory(row pgx.CollectableRow) (catalog.Category, error) {
	var c catalog.Category
	err := row.Scan(&c.ID, &c.Name, &c.Icon)
	return c, err
}
