// Package memory implementa la tienda en memoria: misma semántica que el adaptador
// PostgreSQL (secciones por producto con espera acotada, token de versión, commit
// todo-o-nada) respaldando tests y el modo de desarrollo sin base de datos.
package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
)

const defaultLockTimeout = 2 * time.Second

// Store estado compartido. Las escrituras del libro y de snapshots solo entran vía
// el TxRunner; las lecturas planas van directo bajo RLock.
type Store struct {
	mu          sync.RWMutex
	products    map[string]entity.Product
	skus        map[string]string // SKU -> productID, unicidad
	snapshots   map[string]entity.Snapshot
	headers     map[string]entity.StockTransaction
	lines       map[string][]entity.TransactionLine // por transacción
	commitOrder []string                            // IDs de transacción en orden de commit
	seq         atomic.Int64
	locks       sync.Map // productID -> chan struct{} (mutex con espera acotada)
	lockTimeout time.Duration
}

// NewStore construye la tienda. lockTimeout acota la espera por la sección de un
// producto; cero aplica el valor por defecto.
func NewStore(lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = defaultLockTimeout
	}
	return &Store{
		products:    make(map[string]entity.Product),
		skus:        make(map[string]string),
		snapshots:   make(map[string]entity.Snapshot),
		headers:     make(map[string]entity.StockTransaction),
		lines:       make(map[string][]entity.TransactionLine),
		lockTimeout: lockTimeout,
	}
}

// SeedSnapshot escribe un snapshot saltando el libro. Existe únicamente para
// herramientas de migración y para inyectar deriva en tests de conciliación; el
// núcleo nunca lo invoca.
func (s *Store) SeedSnapshot(snap entity.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.ProductID] = snap
}

// lockProduct adquiere la sección de actualización del producto. Espera acotada:
// domain.ErrLockTimeout si el presupuesto se agota antes de obtenerla.
func (s *Store) lockProduct(ctx context.Context, productID string) (release func(), err error) {
	chAny, _ := s.locks.LoadOrStore(productID, make(chan struct{}, 1))
	ch := chAny.(chan struct{})

	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-timer.C:
		return nil, fmt.Errorf("producto %s: %w", productID, domain.ErrLockTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Store) nextSequence() string {
	return fmt.Sprintf("TRX-%09d", s.seq.Add(1))
}
