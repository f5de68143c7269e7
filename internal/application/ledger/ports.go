package ledger

import (
	"context"

	"github.com/invorya/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una unidad atómica de la tienda, pasando
// repositorios atados a esa unidad. Garantiza el todo-o-nada del libro: o se
// actualizan todos los snapshots afectados y se persiste la transacción, o nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		txRepo repository.TransactionRepository,
		snapRepo repository.SnapshotRepository,
		productRepo repository.ProductRepository,
	) error) error
}
