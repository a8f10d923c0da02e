package handlers

import (
	"context"
	"net/http"

	"github.com/hackerwear/storefront/models"
	"github.com/hackerwear/storefront/utils"
	"go.uber.org/zap"
)

// Author is reported by the index route
const Author = "Sugat Bagde"

// Banner is the body of GET /
type Banner struct {
	Author string `json:"Author"`
}

// ProductsResponse wraps the grouped catalog
type ProductsResponse struct {
	Products map[string]*models.GroupedProduct `json:"products"`
}

// IndexHandler serves the API banner
func IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteJSON(w, http.StatusOK, Banner{Author: Author})
	}
}

// NotFoundHandler answers unknown routes
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	}
}

// MethodNotAllowedHandler answers known routes called with the wrong method
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	}
}

// CatalogService lists the grouped catalog
type CatalogService interface {
	ListGrouped(ctx context.Context, category string) (map[string]*models.GroupedProduct, error)
}

// CatalogHandler handles product listing requests
type CatalogHandler struct {
	catalog CatalogService
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// HandleGetProducts handles GET /getproducts[?category=...]
func (h *CatalogHandler) HandleGetProducts(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.catalog.ListGrouped(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, ProductsResponse{Products: grouped}); err != nil {
		h.logger.Error("failed to write products response", zap.Error(err))
	}
}
