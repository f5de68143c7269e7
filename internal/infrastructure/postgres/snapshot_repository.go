package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
)

var _ repository.SnapshotRepository = (*SnapshotRepo)(nil)

// SnapshotRepo implementación de SnapshotRepository sobre PostgreSQL (pool o tx).
type SnapshotRepo struct {
	q Querier
}

// NewSnapshotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSnapshotRepository(q Querier) *SnapshotRepo {
	return &SnapshotRepo{q: q}
}

const snapshotColumns = "product_id, quantity, avg_cost, reorder_level, updated_at, version"

// Get obtiene el snapshot del producto; nil si nunca ha tenido movimientos.
func (r *SnapshotRepo) Get(ctx context.Context, productID string) (*entity.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM stock_snapshots WHERE product_id = $1`
	var s entity.Snapshot
	err := r.q.QueryRow(ctx, query, productID).Scan(
		&s.ProductID, &s.Quantity, &s.AvgCost, &s.ReorderLevel, &s.UpdatedAt, &s.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return &s, nil
}

// GetForUpdate materializa la fila en cero si no existe y la bloquea (FOR UPDATE).
// El lock_timeout de la transacción acota la espera; agotarlo sale como
// domain.ErrLockTimeout para que el caso de uso reintente.
func (r *SnapshotRepo) GetForUpdate(ctx context.Context, productID string) (*entity.Snapshot, error) {
	insert := `
		INSERT INTO stock_snapshots (product_id, quantity, avg_cost, reorder_level, updated_at, version)
		VALUES ($1, 0, 0, 0, now(), 0)
		ON CONFLICT (product_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, productID); err != nil {
		if isLockNotAvailable(err) {
			return nil, fmt.Errorf("producto %s: %w", productID, domain.ErrLockTimeout)
		}
		return nil, fmt.Errorf("materialize snapshot: %w", err)
	}

	query := `SELECT ` + snapshotColumns + ` FROM stock_snapshots WHERE product_id = $1 FOR UPDATE`
	var s entity.Snapshot
	err := r.q.QueryRow(ctx, query, productID).Scan(
		&s.ProductID, &s.Quantity, &s.AvgCost, &s.ReorderLevel, &s.UpdatedAt, &s.Version,
	)
	if err != nil {
		if isLockNotAvailable(err) {
			return nil, fmt.Errorf("producto %s: %w", productID, domain.ErrLockTimeout)
		}
		return nil, fmt.Errorf("get snapshot for update: %w", err)
	}
	return &s, nil
}

// UpdateVersioned escribe el snapshot solo si la versión almacenada coincide
// (concurrencia optimista); cero filas afectadas es conflicto de versión.
func (r *SnapshotRepo) UpdateVersioned(ctx context.Context, snap *entity.Snapshot, expectedVersion int64) error {
	query := `
		UPDATE stock_snapshots
		SET quantity = $2, avg_cost = $3, reorder_level = $4, updated_at = $5, version = $6
		WHERE product_id = $1 AND version = $7`
	newVersion := expectedVersion + 1
	tag, err := r.q.Exec(ctx, query,
		snap.ProductID, snap.Quantity, snap.AvgCost, snap.ReorderLevel, snap.UpdatedAt,
		newVersion, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	snap.Version = newVersion
	return nil
}

// List devuelve todos los snapshots ordenados por producto.
func (r *SnapshotRepo) List(ctx context.Context) ([]*entity.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM stock_snapshots ORDER BY product_id`
	return r.list(ctx, query)
}

// ListBelowReorder devuelve los snapshots en o por debajo de su punto de reorden.
func (r *SnapshotRepo) ListBelowReorder(ctx context.Context) ([]*entity.Snapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM stock_snapshots
		WHERE reorder_level > 0 AND quantity <= reorder_level
		ORDER BY (reorder_level - quantity) DESC`
	return r.list(ctx, query)
}

func (r *SnapshotRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Snapshot, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()
	var out []*entity.Snapshot
	for rows.Next() {
		var s entity.Snapshot
		if err := rows.Scan(&s.ProductID, &s.Quantity, &s.AvgCost, &s.ReorderLevel, &s.UpdatedAt, &s.Version); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
