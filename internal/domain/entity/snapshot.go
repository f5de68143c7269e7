package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot estado actual materializado de un producto: cantidad y costo promedio
// ponderado derivados del libro de movimientos. Invariantes: Quantity >= 0,
// AvgCost >= 0, Version estrictamente creciente en cada escritura.
// Se crea perezosamente con el primer movimiento y nunca se borra.
type Snapshot struct {
	ProductID    string
	Quantity     decimal.Decimal
	AvgCost      decimal.Decimal // costo promedio ponderado; solo cambia en entradas
	ReorderLevel decimal.Decimal
	UpdatedAt    time.Time
	Version      int64 // token de concurrencia optimista
}

// BelowReorder indica si la cantidad actual está en o por debajo del punto de reorden.
func (s Snapshot) BelowReorder() bool {
	return s.ReorderLevel.GreaterThan(decimal.Zero) && s.Quantity.LessThanOrEqual(s.ReorderLevel)
}
