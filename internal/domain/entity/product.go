package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product referencia de catálogo mínima que el núcleo de stock necesita para validar
// movimientos ("producto conocido"). El catálogo completo vive fuera de este módulo.
type Product struct {
	ID           string
	SKU          string // código único
	Name         string
	ReorderLevel decimal.Decimal // punto de reorden por defecto para el snapshot
	CreatedAt    time.Time
}
