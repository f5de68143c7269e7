// Package audit implementa el auditor de conciliación: recomputa el estado esperado
// de cada producto plegando el libro y lo compara con el snapshot vivo.
package audit

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/invorya/stock-ledger/internal/application/dto"
	"github.com/invorya/stock-ledger/internal/application/ledger"
	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
	"github.com/invorya/stock-ledger/internal/domain/valuation"
	"github.com/invorya/stock-ledger/pkg/logger"
)

// UseCase pasada de conciliación de solo lectura más el re-sync explícito por producto.
type UseCase struct {
	products     repository.ProductRepository
	snapshots    repository.SnapshotRepository
	transactions repository.TransactionRepository
	runner       ledger.TxRunner
	log          *logger.Logger
}

// NewUseCase construye el auditor.
func NewUseCase(
	products repository.ProductRepository,
	snapshots repository.SnapshotRepository,
	transactions repository.TransactionRepository,
	runner ledger.TxRunner,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		products:     products,
		snapshots:    snapshots,
		transactions: transactions,
		runner:       runner,
		log:          log,
	}
}

// Report recorre snapshots y libro sin tomar recursos exclusivos y produce el
// diagnóstico. Lee a la consistencia de una lectura plana: mutaciones concurrentes
// durante el barrido pueden producir un falso desajuste transitorio que una nueva
// corrida resuelve. Nunca escribe una corrección.
func (uc *UseCase) Report(ctx context.Context) (*dto.ReconciliationReportDTO, error) {
	totalProducts, err := uc.products.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalTx, err := uc.transactions.Count(ctx)
	if err != nil {
		return nil, err
	}
	snaps, err := uc.snapshots.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &dto.ReconciliationReportDTO{
		TotalProducts:       totalProducts,
		WithStockRecord:     len(snaps),
		WithoutStockRecord:  totalProducts - int64(len(snaps)),
		TotalTransactions:   totalTx,
		TotalInventoryValue: decimal.Zero,
		GeneratedAt:         time.Now(),
	}
	if report.WithoutStockRecord < 0 {
		report.WithoutStockRecord = 0
	}

	for _, snap := range snaps {
		report.TotalInventoryValue = report.TotalInventoryValue.Add(snap.Quantity.Mul(snap.AvgCost))

		if snap.AvgCost.IsZero() && snap.Quantity.GreaterThan(decimal.Zero) {
			// entrada registrada sin costo: señal de datos de compra incompletos
			report.ZeroCostWithQuantity++
		}

		expected, err := uc.expectedState(ctx, snap.ProductID)
		if err != nil {
			return nil, err
		}
		if !expected.Quantity.Equal(snap.Quantity) {
			report.QuantityMismatches++
			report.MismatchedProducts = append(report.MismatchedProducts, snap.ProductID)
			uc.log.Warn().
				Str("product_id", snap.ProductID).
				Str("snapshot_qty", snap.Quantity.String()).
				Str("ledger_qty", expected.Quantity.String()).
				Msg("desajuste de conciliación")
		}
	}
	return report, nil
}

// expectedState pliega el historial COMPLETED/REVERSED del producto desde cero.
func (uc *UseCase) expectedState(ctx context.Context, productID string) (entity.Snapshot, error) {
	history, err := uc.transactions.HistoryByProduct(ctx, productID)
	if err != nil {
		return entity.Snapshot{}, err
	}
	return valuation.Fold(productID, toValuationMovements(history))
}

// ResyncSnapshot reconstruye el snapshot de un producto desde el libro y lo escribe
// bajo la disciplina de versión. Es la corrección explícita que debe disparar un
// operador tras un hallazgo del reporte; el reporte jamás lo invoca por sí mismo.
func (uc *UseCase) ResyncSnapshot(ctx context.Context, productID string) (*entity.Snapshot, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	var result entity.Snapshot
	err := uc.runner.Run(ctx, func(
		txRepo repository.TransactionRepository,
		snapRepo repository.SnapshotRepository,
		productRepo repository.ProductRepository,
	) error {
		ok, err := productRepo.Exists(ctx, productID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotFound
		}
		snap, err := snapRepo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		history, err := txRepo.HistoryByProduct(ctx, productID)
		if err != nil {
			return err
		}
		expected, err := valuation.Fold(productID, toValuationMovements(history))
		if err != nil {
			return err
		}
		expected.ReorderLevel = snap.ReorderLevel
		expected.UpdatedAt = time.Now()
		if err := snapRepo.UpdateVersioned(ctx, &expected, snap.Version); err != nil {
			return err
		}
		result = expected
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("product_id", productID).
		Str("quantity", result.Quantity.String()).
		Msg("snapshot re-sincronizado desde el libro")
	return &result, nil
}

func toValuationMovements(history []repository.MovementRecord) []valuation.Movement {
	out := make([]valuation.Movement, 0, len(history))
	for _, m := range history {
		out = append(out, valuation.Movement{
			Category: m.Category,
			Quantity: m.Quantity,
			UnitCost: m.UnitCost,
		})
	}
	return out
}
