package memory

import (
	"context"
	"time"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo adaptador del libro en memoria. Las escrituras van al staging de
// la tx; las lecturas ven el estado comprometido.
type TransactionRepo struct {
	store *Store
	tx    *memTx
}

// NewTransactionRepository construye el adaptador de solo-lectura (fuera de tx).
func NewTransactionRepository(store *Store) *TransactionRepo {
	return &TransactionRepo{store: store}
}

// CreateHeader agrega la cabecera al staging de la unidad atómica.
func (r *TransactionRepo) CreateHeader(_ context.Context, tx *entity.StockTransaction) error {
	if r.tx == nil {
		return domain.ErrInvalidInput
	}
	r.tx.headers = append(r.tx.headers, *tx)
	return nil
}

// CreateLine agrega una línea al staging.
func (r *TransactionRepo) CreateLine(_ context.Context, line *entity.TransactionLine) error {
	if r.tx == nil {
		return domain.ErrInvalidInput
	}
	r.tx.lines[line.TransactionID] = append(r.tx.lines[line.TransactionID], *line)
	return nil
}

// NextSequence genera el siguiente consecutivo. El contador avanza aunque la unidad
// termine descartada: los huecos son válidos, la monotonía y unicidad no se negocian.
func (r *TransactionRepo) NextSequence(_ context.Context) (string, error) {
	return r.store.nextSequence(), nil
}

// GetByID devuelve la cabecera comprometida o nil.
func (r *TransactionRepo) GetByID(_ context.Context, id string) (*entity.StockTransaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	h, ok := r.store.headers[id]
	if !ok {
		return nil, nil
	}
	out := h
	return &out, nil
}

// LinesByTransaction devuelve las líneas comprometidas de una transacción.
func (r *TransactionRepo) LinesByTransaction(_ context.Context, id string) ([]*entity.TransactionLine, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	stored := r.store.lines[id]
	out := make([]*entity.TransactionLine, 0, len(stored))
	for _, l := range stored {
		line := l
		out = append(out, &line)
	}
	return out, nil
}

// MarkReversed programa el paso COMPLETED -> REVERSED para el commit.
func (r *TransactionRepo) MarkReversed(_ context.Context, id string) error {
	if r.tx == nil {
		return domain.ErrInvalidInput
	}
	r.store.mu.RLock()
	h, ok := r.store.headers[id]
	r.store.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound
	}
	if h.Status != entity.StatusCompleted {
		return domain.ErrConflict
	}
	r.tx.reversed = append(r.tx.reversed, id)
	return nil
}

// HistoryByProduct devuelve las líneas históricas del producto en orden de commit,
// con la cantidad ya firmada, listas para el fold de conciliación.
func (r *TransactionRepo) HistoryByProduct(_ context.Context, productID string) ([]repository.MovementRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.historyLocked(productID), nil
}

func (r *TransactionRepo) historyLocked(productID string) []repository.MovementRecord {
	var out []repository.MovementRecord
	for _, txID := range r.store.commitOrder {
		h := r.store.headers[txID]
		if !h.Status.HistoryBearing() {
			continue
		}
		for _, l := range r.store.lines[txID] {
			if l.ProductID != productID {
				continue
			}
			out = append(out, repository.MovementRecord{
				TransactionID: h.ID,
				SequenceNo:    h.SequenceNo,
				Category:      h.Category,
				Status:        h.Status,
				ProductID:     l.ProductID,
				Quantity:      l.SignedQuantity(h.Category),
				UnitCost:      l.UnitCost,
				Reason:        l.Reason,
				CreatedAt:     h.CreatedAt,
			})
		}
	}
	return out
}

// ListByProduct lista movimientos del producto en un rango de fechas, más recientes
// primero (paginado).
func (r *TransactionRepo) ListByProduct(_ context.Context, productID string, from, to *time.Time, limit, offset int) ([]repository.MovementRecord, error) {
	r.store.mu.RLock()
	history := r.historyLocked(productID)
	r.store.mu.RUnlock()

	var filtered []repository.MovementRecord
	for _, m := range history {
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		filtered = append(filtered, m)
	}
	// orden de commit invertido: lo más reciente primero
	for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	}
	if offset >= len(filtered) {
		return nil, nil
	}
	filtered = filtered[offset:]
	if limit > 0 && limit < len(filtered) {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

// Count devuelve el total de transacciones comprometidas.
func (r *TransactionRepo) Count(_ context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.store.headers)), nil
}
