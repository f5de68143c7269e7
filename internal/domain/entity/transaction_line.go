package entity

import "github.com/shopspring/decimal"

// TransactionLine línea de una transacción de stock. La cantidad se almacena siempre
// positiva (magnitud); el signo efectivo lo define la categoría de la transacción y,
// solo para ADJUSTMENT, el campo Direction.
type TransactionLine struct {
	TransactionID string
	ProductID     string
	Quantity      decimal.Decimal  // magnitud, siempre > 0
	Direction     int              // +1 / -1; significativo solo en ADJUSTMENT
	UnitCost      decimal.Decimal  // costo unitario; significativo solo en entradas
	Reason        AdjustmentReason // obligatorio solo en ADJUSTMENT
}

// EffectiveSign resuelve el signo de la línea para la categoría dada usando la
// tabla de signos por categoría.
func (l TransactionLine) EffectiveSign(category MovementType) int {
	if s := category.Sign(); s != 0 {
		return s
	}
	return l.Direction
}

// SignedQuantity devuelve la cantidad con signo, lista para el fold del libro.
func (l TransactionLine) SignedQuantity(category MovementType) decimal.Decimal {
	if l.EffectiveSign(category) < 0 {
		return l.Quantity.Neg()
	}
	return l.Quantity
}
