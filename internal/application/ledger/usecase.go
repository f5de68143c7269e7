package ledger

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
	"github.com/invorya/stock-ledger/internal/domain/valuation"
	"github.com/invorya/stock-ledger/pkg/logger"
)

// Options parámetros de reintento del camino de commit.
type Options struct {
	MaxAttempts  int           // intentos totales ante conflicto de versión o lock-timeout
	RetryBackoff time.Duration // espera base entre intentos
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 25 * time.Millisecond
	}
	return o
}

// UseCase registra transacciones de stock de forma transaccional: valida líneas,
// adquiere las secciones por producto en orden ascendente de ID, aplica el motor de
// valoración y persiste cabecera y líneas como una sola unidad atómica.
type UseCase struct {
	runner       TxRunner
	products     repository.ProductRepository
	snapshots    repository.SnapshotRepository
	transactions repository.TransactionRepository
	log          *logger.Logger
	opts         Options
}

// NewUseCase construye el caso de uso del libro de stock.
func NewUseCase(
	runner TxRunner,
	products repository.ProductRepository,
	snapshots repository.SnapshotRepository,
	transactions repository.TransactionRepository,
	log *logger.Logger,
	opts Options,
) *UseCase {
	return &UseCase{
		runner:       runner,
		products:     products,
		snapshots:    snapshots,
		transactions: transactions,
		log:          log,
		opts:         opts.withDefaults(),
	}
}

// LineInput línea entrante de una transacción.
// Quantity es magnitud (> 0); Direction solo aplica en ADJUSTMENT (+1/-1).
// UnitCost es obligatorio en categorías de entrada; Reason en ADJUSTMENT.
type LineInput struct {
	ProductID string
	Quantity  decimal.Decimal
	Direction int
	UnitCost  *decimal.Decimal
	Reason    entity.AdjustmentReason
}

// TransactionInput entrada para SubmitTransaction.
type TransactionInput struct {
	Category  entity.MovementType
	RefType   entity.RefType
	RefID     string
	Notes     string
	CreatedBy string
	Lines     []LineInput
}

// SubmitTransaction valida la entrada y la lleva al libro como transacción COMPLETED.
// Una entrada rechazada (PENDING -> CANCELLED) nunca toca el libro ni los snapshots.
// Conflictos de versión y lock-timeouts se reintentan un número acotado de veces.
func (uc *UseCase) SubmitTransaction(ctx context.Context, in TransactionInput) (string, error) {
	header, lines, err := uc.buildTransaction(in)
	if err != nil {
		return "", err
	}

	err = uc.commitWithRetry(ctx, "submit_transaction", func(
		txRepo repository.TransactionRepository,
		snapRepo repository.SnapshotRepository,
		productRepo repository.ProductRepository,
	) error {
		return applyTransaction(ctx, txRepo, snapRepo, productRepo, header, lines)
	})
	if err != nil {
		return "", err
	}

	uc.log.Info().
		Str("transaction_id", header.ID).
		Str("sequence_no", header.SequenceNo).
		Str("category", string(header.Category)).
		Int("lines", len(lines)).
		Msg("transacción de stock registrada")
	return header.ID, nil
}

// buildTransaction valida la entrada y construye cabecera y líneas normalizadas,
// ordenadas por producto ascendente (orden global de adquisición de secciones).
func (uc *UseCase) buildTransaction(in TransactionInput) (*entity.StockTransaction, []entity.TransactionLine, error) {
	if !in.Category.Valid() || len(in.Lines) == 0 {
		return nil, nil, domain.ErrInvalidInput
	}
	refType := in.RefType
	if refType == "" {
		refType = entity.RefManual
	}
	if !refType.Valid() {
		return nil, nil, domain.ErrInvalidInput
	}

	seen := make(map[string]struct{}, len(in.Lines))
	lines := make([]entity.TransactionLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		if l.ProductID == "" || !l.Quantity.GreaterThan(decimal.Zero) {
			return nil, nil, domain.ErrInvalidInput
		}
		if _, dup := seen[l.ProductID]; dup {
			// cada línea debe tocar un producto distinto
			return nil, nil, domain.ErrInvalidInput
		}
		seen[l.ProductID] = struct{}{}

		line := entity.TransactionLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitCost:  decimal.Zero,
		}
		switch {
		case in.Category == entity.MovementAdjustment:
			if (l.Direction != +1 && l.Direction != -1) || !l.Reason.Valid() {
				return nil, nil, domain.ErrInvalidInput
			}
			line.Direction = l.Direction
			line.Reason = l.Reason
		case in.Category.Inbound():
			if l.UnitCost == nil || l.UnitCost.LessThan(decimal.Zero) {
				return nil, nil, domain.ErrInvalidInput
			}
			line.Direction = +1
			line.UnitCost = *l.UnitCost
		default:
			line.Direction = -1
		}
		lines = append(lines, line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	header := &entity.StockTransaction{
		ID:        uuid.New().String(),
		Category:  in.Category,
		RefType:   refType,
		RefID:     in.RefID,
		Status:    entity.StatusPending,
		Notes:     in.Notes,
		CreatedAt: time.Now(),
		CreatedBy: in.CreatedBy,
	}
	return header, lines, nil
}

// applyTransaction ejecuta el commit dentro de la unidad atómica: verifica productos,
// recorre las líneas en el orden ya establecido adquiriendo cada sección de producto,
// pasa cada snapshot por el motor de valoración y persiste cabecera y líneas.
func applyTransaction(
	ctx context.Context,
	txRepo repository.TransactionRepository,
	snapRepo repository.SnapshotRepository,
	productRepo repository.ProductRepository,
	header *entity.StockTransaction,
	lines []entity.TransactionLine,
) error {
	products := make(map[string]*entity.Product, len(lines))
	for _, l := range lines {
		p, err := productRepo.GetByID(ctx, l.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrInvalidInput
		}
		products[l.ProductID] = p
	}

	now := header.CreatedAt
	for _, l := range lines {
		snap, err := snapRepo.GetForUpdate(ctx, l.ProductID)
		if err != nil {
			return err
		}
		if snap.Version == 0 {
			// primer movimiento del producto: el snapshot hereda su punto de reorden
			snap.ReorderLevel = products[l.ProductID].ReorderLevel
		}
		next, err := valuation.Apply(*snap, header.Category, l)
		if err != nil {
			return err
		}
		next.UpdatedAt = now
		if err := snapRepo.UpdateVersioned(ctx, &next, snap.Version); err != nil {
			return err
		}
	}

	seq, err := txRepo.NextSequence(ctx)
	if err != nil {
		return err
	}
	header.SequenceNo = seq
	header.Status = entity.StatusCompleted
	if err := txRepo.CreateHeader(ctx, header); err != nil {
		return err
	}
	for i := range lines {
		lines[i].TransactionID = header.ID
		if err := txRepo.CreateLine(ctx, &lines[i]); err != nil {
			return err
		}
	}
	return nil
}

// commitWithRetry ejecuta fn en el TxRunner reintentando solo ante conflicto de
// versión o lock-timeout, con espera creciente y tope de intentos. Cualquier otro
// error se propaga de inmediato.
func (uc *UseCase) commitWithRetry(ctx context.Context, op string, fn func(
	repository.TransactionRepository,
	repository.SnapshotRepository,
	repository.ProductRepository,
) error) error {
	var err error
	for attempt := 1; attempt <= uc.opts.MaxAttempts; attempt++ {
		err = uc.runner.Run(ctx, fn)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrConflict) && !errors.Is(err, domain.ErrLockTimeout) {
			return err
		}
		if attempt < uc.opts.MaxAttempts {
			uc.log.Warn().
				Str("op", op).
				Int("attempt", attempt).
				Err(err).
				Msg("commit en contención, reintentando")
			select {
			case <-time.After(uc.opts.RetryBackoff * time.Duration(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return err
}

// GetSnapshot devuelve el snapshot actual de un producto.
// domain.ErrNotFound si el producto nunca ha tenido movimientos.
func (uc *UseCase) GetSnapshot(ctx context.Context, productID string) (*entity.Snapshot, error) {
	snap, err := uc.snapshots.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, domain.ErrNotFound
	}
	return snap, nil
}

// ListMovements lista el historial de movimientos de un producto (paginado).
func (uc *UseCase) ListMovements(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]repository.MovementRecord, error) {
	return uc.transactions.ListByProduct(ctx, productID, from, to, limit, offset)
}

// LowStock devuelve los productos en o por debajo de su punto de reorden.
func (uc *UseCase) LowStock(ctx context.Context) ([]*entity.Snapshot, error) {
	return uc.snapshots.ListBelowReorder(ctx)
}
