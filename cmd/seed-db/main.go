// Command seed-db loads the catalog and a development user into PostgreSQL.
// The catalog comes from a JSON file (plain or gzip-compressed); when no file
// is given, the embedded catalog is used.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/orderkaro/orderkaro/db"
	"github.com/orderkaro/orderkaro/internal/domain/catalog"
	"github.com/orderkaro/orderkaro/internal/repository"
)

const (
	upsertCategorySQL = `INSERT INTO categories (id, name, icon)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, icon = EXCLUDED.icon`

	upsertProductSQL = `INSERT INTO products
		(id, name, description, price, sale_price, image_url, unit, stock, category_id, featured, rating, reviews, nutrition)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description,
			price = EXCLUDED.price, sale_price = EXCLUDED.sale_price,
			image_url = EXCLUDED.image_url, unit = EXCLUDED.unit,
			stock = EXCLUDED.stock, category_id = EXCLUDED.category_id,
			featured = EXCLUDED.featured, rating = EXCLUDED.rating,
			reviews = EXCLUDED.reviews, nutrition = EXCLUDED.nutrition`

	upsertUserSQL = `INSERT INTO users (id, name, email, phone, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (email) DO NOTHING`
)

type catalogFile struct {
	Categories []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Icon string `json:"icon"`
	} `json:"categories"`
	Products []struct {
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
	} `json:"products"`
}

func main() {
	var (
		databaseURL string
		catalogPath string
		devUser     bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogPath, "catalog-file", "", "path to catalog JSON file, .gz supported (embedded catalog when empty)")
	flag.BoolVar(&devUser, "dev-user", false, "seed a development user (test@example.com / password123)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogPath, devUser); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogPath string, devUser bool) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	products, categories, err := loadCatalog(catalogPath)
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}

	if err := seedCatalog(ctx, pool, products, categories); err != nil {
		return errors.Wrap(err, "seed catalog")
	}

	if devUser {
		if err := seedDevUser(ctx, pool); err != nil {
			return errors.Wrap(err, "seed dev user")
		}
	}

	return nil
}

func loadCatalog(path string) ([]catalog.Product, []catalog.Category, error) {
	if path == "" {
		slog.Info("using embedded catalog")
		return db.SeedCatalog()
	}

	slog.Info("reading catalog file", slog.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open catalog file")
	}
	defer f.Close() //nolint:errcheck

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open gzip reader")
		}
		defer gz.Close() //nolint:errcheck
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read catalog file")
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, nil, errors.Wrap(err, "parse catalog JSON")
	}

	products := make([]catalog.Product, 0, len(file.Products))
	for _, p := range file.Products {
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
	categories := make([]catalog.Category, 0, len(file.Categories))
	for _, c := range file.Categories {
		categories = append(categories, catalog.Category{ID: c.ID, Name: c.Name, Icon: c.Icon})
	}
	return products, categories, nil
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool, products []catalog.Product, categories []catalog.Category) error {
	slog.Info("upserting categories", slog.Int("count", len(categories)))

	for _, c := range categories {
		if _, err := pool.Exec(ctx, upsertCategorySQL, c.ID, c.Name, c.Icon); err != nil {
			return errors.Wrapf(err, "upsert category %s", c.ID)
		}
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		nutrition, err := json.Marshal(p.Nutrition)
		if err != nil {
			return errors.Wrapf(err, "encode nutrition for %s", p.ID)
		}
		if _, err := pool.Exec(ctx, upsertProductSQL,
			p.ID, p.Name, p.Description, p.Price, p.SalePrice, p.ImageURL,
			p.Unit, p.Stock, p.CategoryID, p.Featured, p.Rating, p.Reviews, nutrition,
		); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedDevUser(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding development user", slog.String("email", "test@example.com"))

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	_, err = pool.Exec(ctx, upsertUserSQL,
		uuid.NewString(), "Test User", "test@example.com", "9876543210",
		string(hash), time.Now().UTC(),
	)
	if err != nil {
		return errors.Wrap(err, "upsert dev user")
	}
	return nil
}
