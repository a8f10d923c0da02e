package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Product is a single sellable variant (one color and size of a title)
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Slug        string          `json:"slug" db:"slug"`
	Description string          `json:"desc" db:"description"`
	Img         string          `json:"img" db:"img"`
	Category    string          `json:"category" db:"category"`
	Color       string          `json:"color" db:"color"`
	Size        string          `json:"size" db:"size"`
	Price       float64         `json:"price" db:"price"`
	StockQty    int             `json:"stock_qty" db:"stock_qty"`
	Extras      json.RawMessage `json:"extras,omitempty" db:"extras"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// InStock reports whether any units remain
func (p *Product) InStock() bool {
	return p.StockQty > 0
}

// GroupedProduct is the catalog view of all in-stock variants sharing a title
type GroupedProduct struct {
	Title        string   `json:"title"`
	Slug         string   `json:"slug"`
	Description  string   `json:"desc"`
	Img          string   `json:"img"`
	Category     string   `json:"category"`
	Color        []string `json:"color"`
	Size         []string `json:"size"`
	Price        float64  `json:"price"`
	AvailableQty int      `json:"availableQty"`
}

// ProductFilter narrows catalog queries. Empty fields match everything.
type ProductFilter struct {
	Category string
	Title    string
	Slug     string
}
