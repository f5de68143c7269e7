package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/stock-ledger/internal/domain/entity"
)

// MovementRecord línea histórica proyectada con su cabecera, lista para fold y listados.
// Quantity viene ya firmada según la tabla de signos por categoría.
type MovementRecord struct {
	TransactionID string
	SequenceNo    string
	Category      entity.MovementType
	Status        entity.TransactionStatus
	ProductID     string
	Quantity      decimal.Decimal // firmada
	UnitCost      decimal.Decimal
	Reason        entity.AdjustmentReason
	CreatedAt     time.Time
}

// TransactionRepository define el puerto de persistencia del libro de transacciones.
// El libro es de solo-append: no existe Update ni Delete de cabeceras ni líneas; la
// única mutación permitida es MarkReversed (COMPLETED -> REVERSED).
type TransactionRepository interface {
	CreateHeader(ctx context.Context, tx *entity.StockTransaction) error
	CreateLine(ctx context.Context, line *entity.TransactionLine) error

	// NextSequence genera el siguiente consecutivo, único y monótono no decreciente.
	NextSequence(ctx context.Context) (string, error)

	GetByID(ctx context.Context, id string) (*entity.StockTransaction, error)
	LinesByTransaction(ctx context.Context, id string) ([]*entity.TransactionLine, error)

	// MarkReversed cambia el estado de una transacción COMPLETED a REVERSED.
	MarkReversed(ctx context.Context, id string) error

	// HistoryByProduct devuelve las líneas históricas (COMPLETED y REVERSED) de un
	// producto en orden de commit, para el fold de conciliación.
	HistoryByProduct(ctx context.Context, productID string) ([]MovementRecord, error)

	// ListByProduct lista movimientos de un producto en un rango de fechas, más
	// recientes primero. limit <= 0 significa sin tope; offset <= 0 desde el inicio.
	ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]MovementRecord, error)

	Count(ctx context.Context) (int64, error)
}
