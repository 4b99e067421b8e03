// Package db provides the embedded database schema and seed catalog.
package db

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/orderkaro/orderkaro/internal/domain/catalog"
)

// Schema contains the DDL statements for all application tables.
//
//go:embed migrations/001_schema.sql
var Schema string

//go:embed seed/catalog.json
var seedCatalog []byte

type seedProduct struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price"`
	SalePrice   *decimal.Decimal  `json:"sale_price"`
	ImageURL    string            `json:"image_url"`
	Unit        string            `json:"unit"`
	Stock       int               `json:"stock"`
	CategoryID  string            `json:"category_id"`
	Featured    bool              `json:"featured"`
	Rating      float64           `json:"rating"`
	Reviews     int               `json:"reviews"`
	Nutrition   map[string]string `json:"nutrition"`
}

type seedCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type seedFile struct {
	Categories []seedCategory `json:"categories"`
	Products   []seedProduct  `json:"products"`
}

// SeedCatalog decodes the embedded catalog into domain types, preserving
// file order.
func SeedCatalog() ([]catalog.Product, []catalog.Category, error) {
	var f seedFile
	if err := json.Unmarshal(seedCatalog, &f); err != nil {
		return nil, nil, fmt.Errorf("decoding seed catalog: %w", err)
	}

	products := make([]catalog.Product, 0, len(f.Products))
	for _, p := range f.Products {
		products = append(products, catalog.Product{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			SalePrice:   p.SalePrice,
			ImageURL:    p.ImageURL,
			Unit:        p.Unit,
			Stock:       p.Stock,
			CategoryID:  p.CategoryID,
			Featured:    p.Featured,
			Rating:      p.Rating,
			Reviews:     p.Reviews,
			Nutrition:   p.Nutrition,
		})
	}
	categories := make([]catalog.Category, 0, len(f.Categories))
	for _, c := range f.Categories {
		categories = append(categories, catalog.Category{ID: c.ID, Name: c.Name, Icon: c.Icon})
	}
	return products, categories, nil
}
