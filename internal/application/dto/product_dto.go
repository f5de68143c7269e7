package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest body para POST /api/stock/products.
type CreateProductRequest struct {
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	ReorderLevel decimal.Decimal `json:"reorder_level,omitempty"`
}

// ProductResponse referencia de catálogo registrada en el núcleo de stock.
type ProductResponse struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	CreatedAt    time.Time       `json:"created_at"`
}
