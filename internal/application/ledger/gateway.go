package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
	"github.com/invorya/stock-ledger/internal/domain/valuation"
)

// AdjustStock registra un ajuste razonado: delta firmado distinto de cero con una
// razón del conjunto aceptado externamente. Pasa por el mismo camino de append del
// libro que cualquier otro movimiento y devuelve el snapshot resultante.
func (uc *UseCase) AdjustStock(
	ctx context.Context,
	productID string,
	delta decimal.Decimal,
	reason entity.AdjustmentReason,
	notes, actor string,
) (*entity.Snapshot, error) {
	if productID == "" || delta.IsZero() || !reason.Requestable() {
		return nil, domain.ErrInvalidInput
	}
	return uc.submitAdjustment(ctx, productID, delta, reason, notes, actor)
}

// SetStock fija el stock de un producto en una cantidad absoluta. El delta
// (objetivo - cantidad actual) se calcula dentro de la unidad atómica, con la
// sección del producto ya adquirida: un movimiento concurrente que comprometa
// antes queda reflejado en la lectura y el objetivo se alcanza igual. Todo cambio
// de cantidad deja su línea ADJUSTMENT en el libro; no existe vía de escritura
// directa al snapshot que salte el libro.
func (uc *UseCase) SetStock(ctx context.Context, productID string, target decimal.Decimal, actor string) (*entity.Snapshot, error) {
	if productID == "" || target.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	overrideID := uuid.New().String()

	var result entity.Snapshot
	err := uc.commitWithRetry(ctx, "set_stock", func(
		txRepo repository.TransactionRepository,
		snapRepo repository.SnapshotRepository,
		productRepo repository.ProductRepository,
	) error {
		product, err := productRepo.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrInvalidInput
		}

		snap, err := snapRepo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if snap.Version == 0 {
			snap.ReorderLevel = product.ReorderLevel
		}

		delta := target.Sub(snap.Quantity)
		if delta.IsZero() {
			// ya está en el objetivo: no hay cambio de cantidad ni línea
			result = *snap
			return nil
		}

		direction := +1
		qty := delta
		if delta.LessThan(decimal.Zero) {
			direction = -1
			qty = delta.Neg()
		}
		line := entity.TransactionLine{
			TransactionID: overrideID,
			ProductID:     productID,
			Quantity:      qty,
			Direction:     direction,
			UnitCost:      decimal.Zero,
			Reason:        entity.ReasonManualOverride,
		}

		now := time.Now()
		next, err := valuation.Apply(*snap, entity.MovementAdjustment, line)
		if err != nil {
			return err
		}
		next.UpdatedAt = now
		if err := snapRepo.UpdateVersioned(ctx, &next, snap.Version); err != nil {
			return err
		}

		seq, err := txRepo.NextSequence(ctx)
		if err != nil {
			return err
		}
		header := &entity.StockTransaction{
			ID:         overrideID,
			SequenceNo: seq,
			Category:   entity.MovementAdjustment,
			RefType:    entity.RefManual,
			Status:     entity.StatusCompleted,
			CreatedAt:  now,
			CreatedBy:  actor,
		}
		if err := txRepo.CreateHeader(ctx, header); err != nil {
			return err
		}
		if err := txRepo.CreateLine(ctx, &line); err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("product_id", productID).
		Str("target", target.String()).
		Str("quantity", result.Quantity.String()).
		Msg("stock fijado por override")
	return &result, nil
}

// submitAdjustment arma la transacción ADJUSTMENT de una línea y la registra.
func (uc *UseCase) submitAdjustment(
	ctx context.Context,
	productID string,
	delta decimal.Decimal,
	reason entity.AdjustmentReason,
	notes, actor string,
) (*entity.Snapshot, error) {
	direction := +1
	qty := delta
	if delta.LessThan(decimal.Zero) {
		direction = -1
		qty = delta.Neg()
	}
	in := TransactionInput{
		Category:  entity.MovementAdjustment,
		RefType:   entity.RefManual,
		Notes:     notes,
		CreatedBy: actor,
		Lines: []LineInput{{
			ProductID: productID,
			Quantity:  qty,
			Direction: direction,
			Reason:    reason,
		}},
	}
	if _, err := uc.SubmitTransaction(ctx, in); err != nil {
		return nil, err
	}
	return uc.GetSnapshot(ctx, productID)
}
