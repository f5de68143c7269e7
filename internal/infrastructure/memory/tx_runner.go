package memory

import (
	"context"

	"github.com/invorya/stock-ledger/internal/application/ledger"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
)

var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks como unidad atómica sobre la tienda en memoria:
// las escrituras quedan en un área de staging y se aplican todas en el commit o
// se descartan si el callback falla. Los locks de producto adquiridos durante el
// callback se liberan al terminar, pase lo que pase.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre la tienda.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn con repos atados a la unidad y hace commit o descarta.
func (r *TxRunner) Run(ctx context.Context, fn func(
	txRepo repository.TransactionRepository,
	snapRepo repository.SnapshotRepository,
	productRepo repository.ProductRepository,
) error) error {
	tx := newMemTx(r.store)
	defer tx.releaseLocks()

	err := fn(
		&TransactionRepo{store: r.store, tx: tx},
		&SnapshotRepo{store: r.store, tx: tx},
		&ProductRepo{store: r.store},
	)
	if err != nil {
		return err
	}
	tx.commit()
	return nil
}

// memTx área de staging de una unidad atómica en curso.
type memTx struct {
	store    *Store
	releases []func()
	snaps    map[string]entity.Snapshot
	headers  []entity.StockTransaction
	lines    map[string][]entity.TransactionLine
	reversed []string
}

func newMemTx(store *Store) *memTx {
	return &memTx{
		store: store,
		snaps: make(map[string]entity.Snapshot),
		lines: make(map[string][]entity.TransactionLine),
	}
}

// commit aplica el staging completo bajo el lock global de la tienda.
func (tx *memTx) commit() {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, snap := range tx.snaps {
		s.snapshots[id] = snap
	}
	for _, h := range tx.headers {
		s.headers[h.ID] = h
		s.commitOrder = append(s.commitOrder, h.ID)
	}
	for id, ls := range tx.lines {
		s.lines[id] = append(s.lines[id], ls...)
	}
	for _, id := range tx.reversed {
		h := s.headers[id]
		h.Status = entity.StatusReversed
		s.headers[id] = h
	}
}

// releaseLocks libera las secciones de producto en orden inverso de adquisición.
func (tx *memTx) releaseLocks() {
	for i := len(tx.releases) - 1; i >= 0; i-- {
		tx.releases[i]()
	}
	tx.releases = nil
}
