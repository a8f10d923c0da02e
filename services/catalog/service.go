// Package catalog builds the storefront product listing.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hackerwear/storefront/models"
	"github.com/hackerwear/storefront/repositories"
	"github.com/hackerwear/storefront/services"
	"go.uber.org/zap"
)

const maxCategoryLength = 64

// Service serves catalog reads and bulk imports
type Service struct {
	products repositories.ProductRepository
	txMgr    repositories.TransactionManager
	logger   *zap.Logger
}

// NewService creates a new catalog service
func NewService(products repositories.ProductRepository, txMgr repositories.TransactionManager, logger *zap.Logger) *Service {
	return &Service{
		products: products,
		txMgr:    txMgr,
		logger:   logger,
	}
}

// ListGrouped returns in-stock products keyed by title. category narrows the
// listing when non-empty.
func (s *Service) ListGrouped(ctx context.Context, category string) (map[string]*models.GroupedProduct, error) {
	if len(category) > maxCategoryLength {
		return nil, services.ErrInvalidCategory
	}

	products, err := s.products.ListInStock(ctx, category)
	if err != nil {
		return nil, services.WrapInternal("failed to list products", err)
	}

	grouped := Group(products)
	s.logger.Debug("catalog listed",
		zap.String("category", category),
		zap.Int("variants", len(products)),
		zap.Int("titles", len(grouped)))

	return grouped, nil
}

// Import inserts variants in a single transaction. Either every variant is
// stored or none is. Missing IDs and creation times are filled in.
func (s *Service) Import(ctx context.Context, products []*models.Product) (int, error) {
	now := time.Now().UTC()
	for i, p := range products {
		if err := validateVariant(p); err != nil {
			return 0, services.NewDomainError(services.ErrorTypeValidation, err.Error(), nil).
				WithDetail("index", i)
		}
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
	}

	err := services.WithTransaction(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) error {
		for _, p := range products {
			if err := s.products.Create(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return 0, services.NewDomainError(services.ErrorTypeConflict, "slug already exists", err)
		}
		return 0, services.WrapInternal("failed to import products", err)
	}

	s.logger.Info("catalog imported", zap.Int("variants", len(products)))
	return len(products), nil
}

func validateVariant(p *models.Product) error {
	switch {
	case p == nil:
		return errors.New("product is empty")
	case p.Title == "":
		return errors.New("title is required")
	case p.Slug == "":
		return fmt.Errorf("slug is required for %q", p.Title)
	case p.Price < 0:
		return fmt.Errorf("price of %q is negative", p.Slug)
	case p.StockQty < 0:
		return fmt.Errorf("stock of %q is negative", p.Slug)
	}
	return nil
}

// Group folds variants sharing a title into one entry. The first variant seen
// supplies slug, description, image, category, price and quantity; later
// variants only add colors and sizes not already listed. Out-of-stock
// variants are skipped.
func Group(products []*models.Product) map[string]*models.GroupedProduct {
	grouped := make(map[string]*models.GroupedProduct)

	for _, p := range products {
		if !p.InStock() {
			continue
		}

		entry, ok := grouped[p.Title]
		if !ok {
			grouped[p.Title] = &models.GroupedProduct{
				Title:        p.Title,
				Slug:         p.Slug,
				Description:  p.Description,
				Img:          p.Img,
				Category:     p.Category,
				Color:        []string{p.Color},
				Size:         []string{p.Size},
				Price:        p.Price,
				AvailableQty: p.StockQty,
			}
			continue
		}

		entry.Color = appendUnique(entry.Color, p.Color)
		entry.Size = appendUnique(entry.Size, p.Size)
	}

	return grouped
}

func appendUnique(values []string, v string) []string {
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}
