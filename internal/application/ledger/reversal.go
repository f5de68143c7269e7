package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
)

// ReverseTransaction anula el efecto de una transacción COMPLETED creando la
// transacción compensatoria pareada (cantidades iguales y opuestas, referenciando la
// original) y marcando la original como REVERSED, todo en una sola unidad atómica.
// El libro nunca se corrige mutando: la original permanece en el historial y su
// efecto lo cancela la compensatoria.
func (uc *UseCase) ReverseTransaction(ctx context.Context, transactionID, actor string) (string, error) {
	if transactionID == "" {
		return "", domain.ErrInvalidInput
	}
	compID := uuid.New().String()

	err := uc.commitWithRetry(ctx, "reverse_transaction", func(
		txRepo repository.TransactionRepository,
		snapRepo repository.SnapshotRepository,
		productRepo repository.ProductRepository,
	) error {
		orig, err := txRepo.GetByID(ctx, transactionID)
		if err != nil {
			return err
		}
		if orig == nil {
			return domain.ErrNotFound
		}
		switch orig.Status {
		case entity.StatusReversed:
			return domain.ErrAlreadyReversed
		case entity.StatusCompleted:
			// único estado reversible
		default:
			return domain.ErrInvalidInput
		}

		origLines, err := txRepo.LinesByTransaction(ctx, transactionID)
		if err != nil {
			return err
		}
		lines := make([]entity.TransactionLine, 0, len(origLines))
		for _, l := range origLines {
			lines = append(lines, entity.TransactionLine{
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				Direction: -l.EffectiveSign(orig.Category),
				UnitCost:  decimal.Zero,
				Reason:    entity.ReasonReversal,
			})
		}
		sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

		header := &entity.StockTransaction{
			ID:        compID,
			Category:  entity.MovementAdjustment,
			RefType:   entity.RefReversal,
			RefID:     orig.ID,
			Status:    entity.StatusPending,
			Notes:     "reversa de " + orig.SequenceNo,
			CreatedAt: time.Now(),
			CreatedBy: actor,
		}
		if err := applyTransaction(ctx, txRepo, snapRepo, productRepo, header, lines); err != nil {
			return err
		}
		return txRepo.MarkReversed(ctx, orig.ID)
	})
	if err != nil {
		return "", err
	}

	uc.log.Info().
		Str("original_id", transactionID).
		Str("compensating_id", compID).
		Msg("transacción revertida")
	return compID, nil
}
