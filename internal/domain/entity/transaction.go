package entity

import "time"

// MovementType categoriza una transacción de stock (conjunto cerrado).
type MovementType string

const (
	MovementImport      MovementType = "IMPORT"       // entrada por compra/recepción
	MovementSale        MovementType = "SALE"         // salida por venta
	MovementReturn      MovementType = "RETURN"       // entrada por devolución de cliente
	MovementAdjustment  MovementType = "ADJUSTMENT"   // ajuste manual con razón
	MovementTransferIn  MovementType = "TRANSFER_IN"  // entrada por traslado
	MovementTransferOut MovementType = "TRANSFER_OUT" // salida por traslado
)

// movementSigns mapea cada categoría a su convención de signo sobre la cantidad.
// +1 entrada, -1 salida, 0 = el signo lo aporta Direction en la línea (solo ADJUSTMENT).
// Tabla única y cerrada: agregar una categoría sin registrarla aquí rompe el test de exhaustividad.
var movementSigns = map[MovementType]int{
	MovementImport:      +1,
	MovementSale:        -1,
	MovementReturn:      +1,
	MovementAdjustment:  0,
	MovementTransferIn:  +1,
	MovementTransferOut: -1,
}

// MovementTypes lista todas las categorías válidas (para validación y tests).
func MovementTypes() []MovementType {
	return []MovementType{
		MovementImport, MovementSale, MovementReturn,
		MovementAdjustment, MovementTransferIn, MovementTransferOut,
	}
}

// Valid indica si la categoría pertenece al conjunto cerrado.
func (t MovementType) Valid() bool {
	_, ok := movementSigns[t]
	return ok
}

// Sign devuelve la convención de signo de la categoría (0 para ADJUSTMENT).
func (t MovementType) Sign() int {
	return movementSigns[t]
}

// Inbound indica si la categoría incrementa stock y por tanto sus líneas llevan costo unitario.
func (t MovementType) Inbound() bool {
	return movementSigns[t] > 0
}

// TransactionStatus estado del ciclo de vida de una transacción.
// PENDING -> COMPLETED (normal), PENDING -> CANCELLED (rechazada antes del commit, nunca
// llega al libro), COMPLETED -> REVERSED (anulada por una transacción compensatoria).
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusCancelled TransactionStatus = "CANCELLED"
	StatusReversed  TransactionStatus = "REVERSED"
)

// HistoryBearing indica si la transacción cuenta para el fold del libro.
// Una transacción REVERSED sigue contando: su efecto lo anula la compensatoria pareada.
func (s TransactionStatus) HistoryBearing() bool {
	return s == StatusCompleted || s == StatusReversed
}

// RefType categoriza el documento de negocio que originó la transacción (conjunto cerrado).
type RefType string

const (
	RefPurchaseOrder RefType = "PURCHASE_ORDER"
	RefSalesOrder    RefType = "SALES_ORDER"
	RefReturnNote    RefType = "RETURN_NOTE"
	RefManual        RefType = "MANUAL"
	RefReversal      RefType = "REVERSAL" // RefID apunta a la transacción original
)

// Valid indica si el tipo de referencia pertenece al conjunto cerrado.
func (r RefType) Valid() bool {
	switch r {
	case RefPurchaseOrder, RefSalesOrder, RefReturnNote, RefManual, RefReversal:
		return true
	}
	return false
}

// StockTransaction cabecera de una transacción de stock. Inmutable una vez COMPLETED;
// la única mutación permitida después es el paso de estado COMPLETED -> REVERSED.
type StockTransaction struct {
	ID         string
	SequenceNo string // consecutivo legible, único y monótono no decreciente
	Category   MovementType
	RefType    RefType
	RefID      string
	Status     TransactionStatus
	Notes      string
	CreatedAt  time.Time
	CreatedBy  string
}
