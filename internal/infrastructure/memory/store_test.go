package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
	"github.com/invorya/stock-ledger/internal/infrastructure/memory"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// Disciplina de versión
// ──────────────────────────────────────────────────────────────────────────────

// TestUpdateVersioned_VersionObsoleta: escribir con una versión esperada que ya
// no es la vigente falla con ErrConflict y no deja rastro comprometido.
func TestUpdateVersioned_VersionObsoleta(t *testing.T) {
	store := memory.NewStore(0)
	runner := memory.NewTxRunner(store)

	store.SeedSnapshot(entity.Snapshot{
		ProductID: "p1",
		Quantity:  dec("10"),
		AvgCost:   dec("5.00"),
		Version:   5,
	})

	err := runner.Run(context.Background(), func(
		_ repository.TransactionRepository,
		snapRepo repository.SnapshotRepository,
		_ repository.ProductRepository,
	) error {
		snap, err := snapRepo.GetForUpdate(context.Background(), "p1")
		require.NoError(t, err)
		require.Equal(t, int64(5), snap.Version)

		snap.Quantity = dec("99")
		return snapRepo.UpdateVersioned(context.Background(), snap, 4) // versión vieja
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	snapRepo := memory.NewSnapshotRepository(store)
	snap, err := snapRepo.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, dec("10").Equal(snap.Quantity), "la escritura en conflicto se descarta")
	assert.Equal(t, int64(5), snap.Version)
}

func TestUpdateVersioned_IncrementaElToken(t *testing.T) {
	store := memory.NewStore(0)
	runner := memory.NewTxRunner(store)

	err := runner.Run(context.Background(), func(
		_ repository.TransactionRepository,
		snapRepo repository.SnapshotRepository,
		_ repository.ProductRepository,
	) error {
		snap, err := snapRepo.GetForUpdate(context.Background(), "p1")
		require.NoError(t, err)
		require.Equal(t, int64(0), snap.Version, "producto sin registro nace en versión 0")

		snap.Quantity = dec("7")
		if err := snapRepo.UpdateVersioned(context.Background(), snap, 0); err != nil {
			return err
		}
		assert.Equal(t, int64(1), snap.Version)
		return nil
	})
	require.NoError(t, err)

	snap, err := memory.NewSnapshotRepository(store).Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.Version)
	assert.True(t, dec("7").Equal(snap.Quantity))
}

// ──────────────────────────────────────────────────────────────────────────────
// Sección por producto con espera acotada
// ──────────────────────────────────────────────────────────────────────────────

// TestGetForUpdate_EsperaAcotada: si otra unidad tiene tomada la sección del
// producto y no la suelta dentro del presupuesto, la segunda falla con
// ErrLockTimeout en vez de esperar indefinidamente.
func TestGetForUpdate_EsperaAcotada(t *testing.T) {
	store := memory.NewStore(50 * time.Millisecond)
	runner := memory.NewTxRunner(store)

	holding := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = runner.Run(context.Background(), func(
			_ repository.TransactionRepository,
			snapRepo repository.SnapshotRepository,
			_ repository.ProductRepository,
		) error {
			if _, err := snapRepo.GetForUpdate(context.Background(), "p1"); err != nil {
				return err
			}
			close(holding)
			<-release
			return nil
		})
	}()

	<-holding
	err := runner.Run(context.Background(), func(
		_ repository.TransactionRepository,
		snapRepo repository.SnapshotRepository,
		_ repository.ProductRepository,
	) error {
		_, err := snapRepo.GetForUpdate(context.Background(), "p1")
		return err
	})
	assert.ErrorIs(t, err, domain.ErrLockTimeout)
	close(release)
}

func TestGetForUpdate_FueraDeUnidadRechazado(t *testing.T) {
	store := memory.NewStore(0)
	snapRepo := memory.NewSnapshotRepository(store)

	_, err := snapRepo.GetForUpdate(context.Background(), "p1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput,
		"GetForUpdate solo tiene sentido dentro de una unidad atómica")
}

// ──────────────────────────────────────────────────────────────────────────────
// Consecutivos y descarte de staging
// ──────────────────────────────────────────────────────────────────────────────

// TestNextSequence_AvanzaAunqueLaUnidadSeDescarte: el contador no se devuelve;
// un rechazo deja hueco en la numeración y eso es correcto.
func TestNextSequence_AvanzaAunqueLaUnidadSeDescarte(t *testing.T) {
	store := memory.NewStore(0)
	runner := memory.NewTxRunner(store)
	ctx := context.Background()

	var primera string
	err := runner.Run(ctx, func(
		txRepo repository.TransactionRepository,
		_ repository.SnapshotRepository,
		_ repository.ProductRepository,
	) error {
		var err error
		primera, err = txRepo.NextSequence(ctx)
		require.NoError(t, err)
		return domain.ErrInvalidInput // la unidad se descarta
	})
	require.Error(t, err)
	assert.Equal(t, "TRX-000000001", primera)

	var segunda string
	err = runner.Run(ctx, func(
		txRepo repository.TransactionRepository,
		_ repository.SnapshotRepository,
		_ repository.ProductRepository,
	) error {
		var err error
		segunda, err = txRepo.NextSequence(ctx)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "TRX-000000002", segunda,
		"el hueco queda; el consecutivo jamás se reutiliza")
}

// TestRun_DescartaStagingAnteError: nada de lo escrito dentro de una unidad
// fallida llega al estado comprometido.
func TestRun_DescartaStagingAnteError(t *testing.T) {
	store := memory.NewStore(0)
	runner := memory.NewTxRunner(store)
	ctx := context.Background()

	err := runner.Run(ctx, func(
		txRepo repository.TransactionRepository,
		snapRepo repository.SnapshotRepository,
		_ repository.ProductRepository,
	) error {
		snap, err := snapRepo.GetForUpdate(ctx, "p1")
		require.NoError(t, err)
		snap.Quantity = dec("5")
		require.NoError(t, snapRepo.UpdateVersioned(ctx, snap, 0))

		require.NoError(t, txRepo.CreateHeader(ctx, &entity.StockTransaction{
			ID:         "tx-1",
			SequenceNo: "TRX-000000001",
			Category:   entity.MovementImport,
			Status:     entity.StatusCompleted,
		}))
		return domain.ErrInvalidInput
	})
	require.Error(t, err)

	snap, err := memory.NewSnapshotRepository(store).Get(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, snap, "el snapshot staged no debe existir")

	h, err := memory.NewTransactionRepository(store).GetByID(ctx, "tx-1")
	require.NoError(t, err)
	assert.Nil(t, h, "la cabecera staged no debe existir")
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestProductRepo_SKUDuplicado(t *testing.T) {
	store := memory.NewStore(0)
	repo := memory.NewProductRepository(store)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Product{ID: "p1", SKU: "SKU-1", Name: "Uno"}))
	err := repo.Create(ctx, &entity.Product{ID: "p2", SKU: "SKU-1", Name: "Dos"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestProductRepo_ListaOrdenadaPorSKU(t *testing.T) {
	store := memory.NewStore(0)
	repo := memory.NewProductRepository(store)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.Product{ID: "p1", SKU: "SKU-B", Name: "B"}))
	require.NoError(t, repo.Create(ctx, &entity.Product{ID: "p2", SKU: "SKU-A", Name: "A"}))

	all, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "SKU-A", all[0].SKU)
	assert.Equal(t, "SKU-B", all[1].SKU)
}
