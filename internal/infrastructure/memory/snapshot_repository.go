package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
)

var _ repository.SnapshotRepository = (*SnapshotRepo)(nil)

// SnapshotRepo adaptador de snapshots en memoria. Con tx nil solo sirve lecturas
// planas; GetForUpdate y UpdateVersioned exigen estar dentro de un TxRunner.
type SnapshotRepo struct {
	store *Store
	tx    *memTx
}

// NewSnapshotRepository construye el adaptador de solo-lectura (fuera de tx).
func NewSnapshotRepository(store *Store) *SnapshotRepo {
	return &SnapshotRepo{store: store}
}

// Get devuelve el snapshot del producto o nil si nunca ha tenido movimientos.
func (r *SnapshotRepo) Get(_ context.Context, productID string) (*entity.Snapshot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	snap, ok := r.store.snapshots[productID]
	if !ok {
		return nil, nil
	}
	out := snap
	return &out, nil
}

// GetForUpdate adquiere la sección del producto (espera acotada) y devuelve el
// snapshot vigente, o uno en cero con versión 0 si el producto aún no tiene registro.
func (r *SnapshotRepo) GetForUpdate(ctx context.Context, productID string) (*entity.Snapshot, error) {
	if r.tx == nil {
		return nil, domain.ErrInvalidInput
	}
	release, err := r.store.lockProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	r.tx.releases = append(r.tx.releases, release)

	if staged, ok := r.tx.snaps[productID]; ok {
		out := staged
		return &out, nil
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if snap, ok := r.store.snapshots[productID]; ok {
		out := snap
		return &out, nil
	}
	return &entity.Snapshot{
		ProductID: productID,
		Quantity:  decimal.Zero,
		AvgCost:   decimal.Zero,
		UpdatedAt: time.Now(),
		Version:   0,
	}, nil
}

// UpdateVersioned escribe en staging solo si la versión vigente coincide con
// expectedVersion; incrementa el token en el snapshot entregado.
func (r *SnapshotRepo) UpdateVersioned(_ context.Context, snap *entity.Snapshot, expectedVersion int64) error {
	if r.tx == nil {
		return domain.ErrInvalidInput
	}
	current := int64(0)
	if staged, ok := r.tx.snaps[snap.ProductID]; ok {
		current = staged.Version
	} else {
		r.store.mu.RLock()
		if committed, ok := r.store.snapshots[snap.ProductID]; ok {
			current = committed.Version
		}
		r.store.mu.RUnlock()
	}
	if current != expectedVersion {
		return domain.ErrConflict
	}
	snap.Version = expectedVersion + 1
	r.tx.snaps[snap.ProductID] = *snap
	return nil
}

// List devuelve todos los snapshots ordenados por producto.
func (r *SnapshotRepo) List(_ context.Context) ([]*entity.Snapshot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*entity.Snapshot, 0, len(r.store.snapshots))
	for _, snap := range r.store.snapshots {
		s := snap
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// ListBelowReorder devuelve los snapshots en o por debajo de su punto de reorden.
func (r *SnapshotRepo) ListBelowReorder(ctx context.Context) ([]*entity.Snapshot, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, s := range all {
		if s.BelowReorder() {
			out = append(out, s)
		}
	}
	return out, nil
}
