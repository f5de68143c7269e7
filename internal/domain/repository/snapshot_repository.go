package repository

import (
	"context"

	"github.com/invorya/stock-ledger/internal/domain/entity"
)

// SnapshotRepository define el puerto para el snapshot materializado por producto.
// Toda escritura pasa por UpdateVersioned bajo la sección de actualización del
// producto (GetForUpdate); no existe vía de escritura que salte el control de versión.
type SnapshotRepository interface {
	// Get devuelve el snapshot del producto o nil si nunca ha tenido movimientos.
	Get(ctx context.Context, productID string) (*entity.Snapshot, error)

	// GetForUpdate adquiere la sección de actualización del producto con espera
	// acotada (domain.ErrLockTimeout si se agota) y devuelve el snapshot actual,
	// materializando uno en cero si el producto aún no tiene registro.
	// Solo tiene sentido dentro de un TxRunner; el lock se libera al terminar la tx.
	GetForUpdate(ctx context.Context, productID string) (*entity.Snapshot, error)

	// UpdateVersioned escribe el snapshot solo si la versión almacenada coincide con
	// expectedVersion (domain.ErrConflict si no); incrementa el token de versión.
	UpdateVersioned(ctx context.Context, snap *entity.Snapshot, expectedVersion int64) error

	List(ctx context.Context) ([]*entity.Snapshot, error)

	// ListBelowReorder devuelve los snapshots en o por debajo de su punto de reorden.
	ListBelowReorder(ctx context.Context) ([]*entity.Snapshot, error)
}
