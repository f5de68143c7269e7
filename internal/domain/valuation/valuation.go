// Package valuation implementa el motor de valoración de stock: funciones puras
// que derivan el nuevo par (cantidad, costo promedio) de un snapshot ante un movimiento.
package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
)

// CurrencyPrecision decimales de la moneda; los costos se redondean a esta precisión
// con redondeo bancario (half-to-even).
const CurrencyPrecision = 2

// AverageCost calcula el costo promedio ponderado tras una entrada.
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Si la cantidad resultante no es positiva, el costo entrante manda.
func AverageCost(qty0, cost0, qty1, cost1 decimal.Decimal) decimal.Decimal {
	sum := qty0.Add(qty1)
	if sum.LessThanOrEqual(decimal.Zero) {
		return cost1.RoundBank(CurrencyPrecision)
	}
	num := qty0.Mul(cost0).Add(qty1.Mul(cost1))
	return num.Div(sum).RoundBank(CurrencyPrecision)
}

// ApplyInbound aplica una entrada (cantidad > 0, costo unitario >= 0): suma cantidad
// y recalcula el costo promedio ponderado.
func ApplyInbound(s entity.Snapshot, qty, unitCost decimal.Decimal) (entity.Snapshot, error) {
	if !qty.GreaterThan(decimal.Zero) || unitCost.LessThan(decimal.Zero) {
		return s, domain.ErrInvalidInput
	}
	s.AvgCost = AverageCost(s.Quantity, s.AvgCost, qty, unitCost)
	s.Quantity = s.Quantity.Add(qty)
	return s, nil
}

// ApplyOutbound aplica una salida (cantidad > 0): exige stock suficiente, resta
// cantidad y deja el costo promedio intacto.
func ApplyOutbound(s entity.Snapshot, qty decimal.Decimal) (entity.Snapshot, error) {
	if !qty.GreaterThan(decimal.Zero) {
		return s, domain.ErrInvalidInput
	}
	if s.Quantity.LessThan(qty) {
		return s, domain.ErrInsufficientStock
	}
	s.Quantity = s.Quantity.Sub(qty)
	return s, nil
}

// ApplyAdjustment aplica un ajuste con delta firmado. Delta negativo se comporta como
// salida; delta positivo solo suma cantidad y conserva el costo promedio (un ajuste
// razonado no trae precio de compra asociado).
func ApplyAdjustment(s entity.Snapshot, delta decimal.Decimal) (entity.Snapshot, error) {
	if delta.IsZero() {
		return s, domain.ErrInvalidInput
	}
	if delta.LessThan(decimal.Zero) {
		return ApplyOutbound(s, delta.Neg())
	}
	s.Quantity = s.Quantity.Add(delta)
	return s, nil
}

// Apply despacha una línea según la categoría de su transacción usando la tabla de
// signos por categoría. Única vía de mutación de un snapshot.
func Apply(s entity.Snapshot, category entity.MovementType, line entity.TransactionLine) (entity.Snapshot, error) {
	switch category.Sign() {
	case +1:
		return ApplyInbound(s, line.Quantity, line.UnitCost)
	case -1:
		return ApplyOutbound(s, line.Quantity)
	default:
		return ApplyAdjustment(s, line.SignedQuantity(category))
	}
}

// Fold reconstruye el estado esperado de un producto plegando sus líneas históricas
// desde el estado vacío. Lo usa el auditor de conciliación y el re-sync explícito.
// Un fold nunca debería fallar sobre un libro consistente; una salida que dejaría la
// cantidad negativa se reporta como error en vez de aplicarse.
func Fold(productID string, movements []Movement) (entity.Snapshot, error) {
	s := entity.Snapshot{ProductID: productID, Quantity: decimal.Zero, AvgCost: decimal.Zero}
	for _, m := range movements {
		line := entity.TransactionLine{
			ProductID: productID,
			Quantity:  m.Quantity.Abs(),
			Direction: sign(m.Quantity),
			UnitCost:  m.UnitCost,
		}
		next, err := Apply(s, m.Category, line)
		if err != nil {
			return s, err
		}
		s = next
	}
	return s, nil
}

// Movement línea histórica con cantidad ya firmada, tal como la entrega el libro.
type Movement struct {
	Category entity.MovementType
	Quantity decimal.Decimal // firmada
	UnitCost decimal.Decimal
}

func sign(d decimal.Decimal) int {
	if d.LessThan(decimal.Zero) {
		return -1
	}
	return +1
}
