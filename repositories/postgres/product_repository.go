package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/hackerwear/storefront/models"
	"github.com/hackerwear/storefront/repositories"
	"go.uber.org/zap"
)

const productColumns = `id, title, slug, description, img, category, color, size, price, stock_qty, extras, created_at`

// ProductRepository implements the repositories.ProductRepository interface
type ProductRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *DB, logger *zap.Logger) repositories.ProductRepository {
	return &ProductRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new product variant
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	extras := product.Extras
	if len(extras) == 0 {
		extras = []byte(`{}`)
	}

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		product.ID,
		product.Title,
		product.Slug,
		product.Description,
		product.Img,
		product.Category,
		product.Color,
		product.Size,
		product.Price,
		product.StockQty,
		extras,
		product.CreatedAt,
	)
	if err != nil {
		return translateError("create product", err)
	}

	r.logger.Debug("product created", zap.String("id", product.ID.String()), zap.String("slug", product.Slug))
	return nil
}

// GetBySlug retrieves a product by slug
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`

	executor := GetExecutor(ctx, r.db)
	product, err := scanProduct(executor.QueryRowContext(ctx, query, slug))
	if err != nil {
		return nil, translateError("get product by slug", err)
	}
	return product, nil
}

// Find retrieves products matching every non-empty filter field
func (r *ProductRepository) Find(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	var (
		conditions []string
		args       []interface{}
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("category", filter.Category)
	add("title", filter.Title)
	add("slug", filter.Slug)

	query := `SELECT ` + productColumns + ` FROM products`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at, id`

	return r.list(ctx, "find products", query, args...)
}

// ListInStock retrieves products that still have units, optionally by category
func (r *ProductRepository) ListInStock(ctx context.Context, category string) ([]*models.Product, error) {
	if category == "" {
		query := `SELECT ` + productColumns + ` FROM products WHERE stock_qty > 0 ORDER BY created_at, id`
		return r.list(ctx, "list in-stock products", query)
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE stock_qty > 0 AND category = $1 ORDER BY created_at, id`
	return r.list(ctx, "list in-stock products", query, category)
}

func (r *ProductRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]*models.Product, error) {
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(op, err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, translateError(op, err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, translateError(op, err)
	}

	return products, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	product := &models.Product{}
	var extras []byte
	err := row.Scan(
		&product.ID,
		&product.Title,
		&product.Slug,
		&product.Description,
		&product.Img,
		&product.Category,
		&product.Color,
		&product.Size,
		&product.Price,
		&product.StockQty,
		&extras,
		&product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	product.Extras = extras
	return product, nil
}
