package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/hackerwear/storefront/models"
	"github.com/hackerwear/storefront/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var productRowColumns = []string{
	"id", "title", "slug", "description", "img", "category",
	"color", "size", "price", "stock_qty", "extras", "created_at",
}

func TestProductRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db, zap.NewNop())
	now := time.Now().UTC()
	product := &models.Product{
		ID:        uuid.New(),
		Title:     "Hacker Hoodie",
		Slug:      "hacker-hoodie-black-m",
		Category:  "hoodies",
		Color:     "black",
		Size:      "M",
		Price:     1499,
		StockQty:  3,
		CreatedAt: now,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO products")).
		WithArgs(product.ID, product.Title, product.Slug, "", "", "hoodies", "black", "M", 1499.0, 3, []byte(`{}`), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), product))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetBySlug(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProductRepository(db, zap.NewNop())
		id := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE slug = $1")).
			WithArgs("tee-red-s").
			WillReturnRows(sqlmock.NewRows(productRowColumns).
				AddRow(id.String(), "Tee", "tee-red-s", "cotton", "tee.png", "tshirts", "red", "S", 499.0, 10, []byte(`{"fit":"slim"}`), time.Now()))

		product, err := repo.GetBySlug(ctx, "tee-red-s")
		require.NoError(t, err)
		assert.Equal(t, id, product.ID)
		assert.Equal(t, "cotton", product.Description)
		assert.Equal(t, 10, product.StockQty)
		assert.JSONEq(t, `{"fit":"slim"}`, string(product.Extras))
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProductRepository(db, zap.NewNop())

		mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE slug = $1")).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(productRowColumns))

		_, err := repo.GetBySlug(ctx, "missing")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestProductRepository_Find(t *testing.T) {
	tests := []struct {
		name   string
		filter models.ProductFilter
		query  string
		args   []driver.Value
	}{
		{
			name:   "no filter",
			filter: models.ProductFilter{},
			query:  "SELECT " + productColumns + " FROM products ORDER BY created_at, id",
		},
		{
			name:   "category and slug",
			filter: models.ProductFilter{Category: "hoodies", Slug: "h-1"},
			query:  "FROM products WHERE category = $1 AND slug = $2 ORDER BY created_at, id",
			args:   []driver.Value{"hoodies", "h-1"},
		},
		{
			name:   "title only",
			filter: models.ProductFilter{Title: "Tee"},
			query:  "FROM products WHERE title = $1 ORDER BY",
			args:   []driver.Value{"Tee"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewProductRepository(db, zap.NewNop())

			exp := mock.ExpectQuery(regexp.QuoteMeta(tt.query))
			if len(tt.args) > 0 {
				exp = exp.WithArgs(tt.args...)
			}
			exp.WillReturnRows(sqlmock.NewRows(productRowColumns).
				AddRow(uuid.NewString(), "Tee", "tee-red-s", "", "", "tshirts", "red", "S", 499.0, 1, []byte(`{}`), time.Now()))

			products, err := repo.Find(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Len(t, products, 1)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProductRepository_ListInStock(t *testing.T) {
	ctx := context.Background()

	t.Run("all categories", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProductRepository(db, zap.NewNop())

		mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE stock_qty > 0 ORDER BY created_at, id")).
			WillReturnRows(sqlmock.NewRows(productRowColumns))

		products, err := repo.ListInStock(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, products)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("single category", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProductRepository(db, zap.NewNop())

		mock.ExpectQuery(regexp.QuoteMeta("WHERE stock_qty > 0 AND category = $1")).
			WithArgs("hoodies").
			WillReturnRows(sqlmock.NewRows(productRowColumns).
				AddRow(uuid.NewString(), "Hoodie", "hoodie-black-m", "", "", "hoodies", "black", "M", 1499.0, 2, []byte(`{}`), time.Now()).
				AddRow(uuid.NewString(), "Hoodie", "hoodie-grey-l", "", "", "hoodies", "grey", "L", 1499.0, 5, []byte(`{}`), time.Now()))

		products, err := repo.ListInStock(ctx, "hoodies")
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "grey", products[1].Color)
	})

	t.Run("query failure", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewProductRepository(db, zap.NewNop())

		mock.ExpectQuery(regexp.QuoteMeta("FROM products")).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.ListInStock(ctx, "")
		var pErr *repositories.PersistenceError
		assert.ErrorAs(t, err, &pErr)
	})
}
