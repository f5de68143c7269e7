package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/stock-ledger/internal/application/catalog"
	"github.com/invorya/stock-ledger/internal/application/ledger"
	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
	"github.com/invorya/stock-ledger/internal/domain/valuation"
	"github.com/invorya/stock-ledger/internal/infrastructure/memory"
	"github.com/invorya/stock-ledger/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Entorno de test sobre la tienda en memoria
// ──────────────────────────────────────────────────────────────────────────────

type env struct {
	store   *memory.Store
	uc      *ledger.UseCase
	catalog *catalog.UseCase
	txRepo  *memory.TransactionRepo
	snaps   *memory.SnapshotRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore(0)
	runner := memory.NewTxRunner(store)
	productRepo := memory.NewProductRepository(store)
	snapRepo := memory.NewSnapshotRepository(store)
	txRepo := memory.NewTransactionRepository(store)
	log := logger.New(logger.Config{Env: "production", Level: "error"})

	return &env{
		store:   store,
		uc:      ledger.NewUseCase(runner, productRepo, snapRepo, txRepo, log, ledger.Options{}),
		catalog: catalog.NewUseCase(productRepo),
		txRepo:  txRepo,
		snaps:   snapRepo,
	}
}

func (e *env) createProduct(t *testing.T, sku, reorder string) string {
	t.Helper()
	p, err := e.catalog.CreateProduct(context.Background(), sku, "Producto "+sku, dec(reorder))
	require.NoError(t, err)
	return p.ID
}

func (e *env) importStock(t *testing.T, productID, qty, cost string) string {
	t.Helper()
	unitCost := dec(cost)
	id, err := e.uc.SubmitTransaction(context.Background(), ledger.TransactionInput{
		Category: entity.MovementImport,
		RefType:  entity.RefPurchaseOrder,
		RefID:    "PO-1",
		Lines: []ledger.LineInput{
			{ProductID: productID, Quantity: dec(qty), UnitCost: &unitCost},
		},
	})
	require.NoError(t, err)
	return id
}

func (e *env) sell(t *testing.T, productID, qty string) error {
	t.Helper()
	_, err := e.uc.SubmitTransaction(context.Background(), ledger.TransactionInput{
		Category: entity.MovementSale,
		RefType:  entity.RefSalesOrder,
		Lines:    []ledger.LineInput{{ProductID: productID, Quantity: dec(qty)}},
	})
	return err
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro de transacciones
// ──────────────────────────────────────────────────────────────────────────────

// TestSubmitTransaction_PrimerMovimientoCreaSnapshot: el snapshot nace con el
// primer movimiento, en versión 1 y heredando el punto de reorden del producto.
func TestSubmitTransaction_PrimerMovimientoCreaSnapshot(t *testing.T) {
	e := newEnv(t)
	pid := e.createProduct(t, "SKU-1", "5")

	e.importStock(t, pid, "10", "5.00")

	snap, err := e.uc.GetSnapshot(context.Background(), pid)
	require.NoError(t, err)
	assert.True(t, dec("10").Equal(snap.Quantity))
	assert.True(t, dec("5.00").Equal(snap.AvgCost))
	assert.True(t, dec("5").Equal(snap.ReorderLevel),
		"el primer movimiento hereda el punto de reorden del producto")
	assert.Equal(t, int64(1), snap.Version)
}

// TestSubmitTransaction_PromedioPonderado: dos entradas consecutivas producen el
// promedio ponderado, no el último precio.
func TestSubmitTransaction_PromedioPonderado(t *testing.T) {
	e := newEnv(t)
	pid := e.createProduct(t, "SKU-1", "0")

	e.importStock(t, pid, "10", "5.00")
	e.importStock(t, pid, "5", "8.00")

	snap, err := e.uc.GetSnapshot(context.Background(), pid)
	require.NoError(t, err)
	assert.True(t, dec("15").Equal(snap.Quantity))
	assert.True(t, dec("6.00").Equal(snap.AvgCost))
	assert.Equal(t, int64(2), snap.Version, "cada commit incrementa el token de versión")
}

func TestSubmitTransaction_SalidaNoTocaElCosto(t *testing.T) {
	e := newEnv(t)
	pid := e.createProduct(t, "SKU-1", "0")
	e.importStock(t, pid, "10", "5.00")
	e.importStock(t, pid, "5", "8.00")

	require.NoError(t, e.sell(t, pid, "6"))

	snap, err := e.uc.GetSnapshot(context.Background(), pid)
	require.NoError(t, err)
	assert.True(t, dec("9").Equal(snap.Quantity))
	assert.True(t, dec("6.00").Equal(snap.AvgCost))
}

// TestSubmitTransaction_StockInsuficienteNoDejaRastro: la transacción rechazada
// no escribe ni libro ni snapshot (PENDING -> CANCELLED jamás persiste).
func TestSubmitTransaction_StockInsuficienteNoDejaRastro(t *testing.T) {
	e := newEnv(t)
	pid := e.createProduct(t, "SKU-1", "0")
	e.importStock(t, pid, "5", "2.00")

	err := e.sell(t, pid, "10")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	snap, err := e.uc.GetSnapshot(context.Background(), pid)
	require.NoError(t, err)
	assert.True(t, dec("5").Equal(snap.Quantity), "el snapshot queda intacto")
	assert.Equal(t, int64(1), snap.Version)

	count, err := e.txRepo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "solo la importación quedó en el libro")
}

// TestSubmitTransaction_MultiLineaTodoONada: si una línea falla, ninguna línea
// de la transacción deja efecto.
func TestSubmitTransaction_MultiLineaTodoONada(t *testing.T) {
	e := newEnv(t)
	a := e.createProduct(t, "SKU-A", "0")
	b := e.createProduct(t, "SKU-B", "0")

	// El producto con stock debe procesarse primero (orden ascendente de ID)
	// para probar que su descuento se revierte cuando la otra línea falla.
	conStock, sinStock := a, b
	if b < a {
		conStock, sinStock = b, a
	}
	e.importStock(t, conStock, "10", "1.00")

	_, err := e.uc.SubmitTransaction(context.Background(), ledger.TransactionInput{
		Category: entity.MovementSale,
		Lines: []ledger.LineInput{
			{ProductID: conStock, Quantity: dec("1")},
			{ProductID: sinStock, Quantity: dec("1")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	snap, err := e.uc.GetSnapshot(context.Background(), conStock)
	require.NoError(t, err)
	assert.True(t, dec("10").Equal(snap.Quantity),
		"la línea que sí alcanzaba a aplicarse debe quedar revertida")

	count, err := e.txRepo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSubmitTransaction_Validaciones(t *testing.T) {
	e := newEnv(t)
	pid := e.createProduct(t, "SKU-1", "0")
	cost := dec("1.00")

	cases := []struct {
		name string
		in   ledger.TransactionInput
	}{
		{"categoría desconocida", ledger.TransactionInput{
			Category: "FOO",
			Lines:    []ledger.LineInput{{ProductID: pid, Quantity: dec("1"), UnitCost: &cost}},
		}},
		{"sin líneas", ledger.TransactionInput{Category: entity.MovementImport}},
		{"cantidad cero", ledger.TransactionInput{
			Category: entity.MovementImport,
			Lines:    []ledger.LineInput{{ProductID: pid, Quantity: decimal.Zero, UnitCost: &cost}},
		}},
		{"entrada sin costo unitario", ledger.TransactionInput{
			Category: entity.MovementImport,
			Lines:    []ledger.LineInput{{ProductID: pid, Quantity: dec("1")}},
		}},
		{"ajuste sin razón", ledger.TransactionInput{
			Category: entity.MovementAdjustment,
			Lines:    []ledger.LineInput{{ProductID: pid, Quantity: dec("1"), Direction: +1}},
		}},
		{"ajuste sin dirección", ledger.TransactionInput{
			Category: entity.MovementAdjustment,
			Lines:    []ledger.LineInput{{ProductID: pid, Quantity: dec("1"), Reason: entity.ReasonDamaged}},
		}},
		{"producto repetido en dos líneas", ledger.TransactionInput{
			Category: entity.MovementImport,
			Lines: []ledger.LineInput{
				{ProductID: pid, Quantity: dec("1"), UnitCost: &cost},
				{ProductID: pid, Quantity: dec("2"), UnitCost: &cost},
			},
		}},
		{"producto inexistente", ledger.TransactionInput{
			Category: entity.MovementImport,
			Lines:    []ledger.LineInput{{ProductID: "no-existe", Quantity: dec("1"), UnitCost: &cost}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.uc.SubmitTransaction(context.Background(), tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

// TestSubmitTransaction_ConsecutivoMonotono: los consecutivos asignados son
// únicos y crecientes; un rechazo puede dejar hueco, nunca repetir.
func TestSubmitTransaction_ConsecutivoMonotono(t *testing.T) {
	e := newEnv(t)
	pid := e.createProduct(t, "SKU-1", "0")

	id1 := e.importStock(t, pid, "10", "1.00")
	id2 := e.importStock(t, pid, "10", "1.00")

	h1, err := e.txRepo.GetByID(context.Background(), id1)
	require.NoError(t, err)
	h2, err := e.txRepo.GetByID(context.Background(), id2)
	require.NoError(t, err)

	assert.NotEqual(t, h1.SequenceNo, h2.SequenceNo)
	assert.Less(t, h1.SequenceNo, h2.SequenceNo,
		"el consecutivo debe ser creciente en orden de commit")
}

// ──────────────────────────────────────────────────────────────────────────────
// Fold del libro vs snapshot vivo
// ──────────────────────────────────────────────────────────────────────────────

// TestLedger_FoldCoincideConSnapshot: tras una secuencia mixta, plegar el libro
// desde cero reproduce exactamente el snapshot materializado.
func TestLedger_FoldCoincideConSnapshot(t *testing.T) {
	e := newEnv(t)
	pid := e.createProduct(t, "SKU-1", "0")

	e.importStock(t, pid, "10", "5.00")
	e.importStock(t, pid, "5", "8.00")
	require.NoError(t, e.sell(t, pid, "6"))
	_, err := e.uc.AdjustStock(context.Background(), pid, dec("-2"), entity.ReasonDamaged, "", "tester")
	require.NoError(t, err)

	history, err := e.txRepo.HistoryByProduct(context.Background(), pid)
	require.NoError(t, err)
	movs := make([]valuation.Movement, 0, len(history))
	for _, m := range history {
		movs = append(movs, valuation.Movement{Category: m.Category, Quantity: m.Quantity, UnitCost: m.UnitCost})
	}
	folded, err := valuation.Fold(pid, movs)
	require.NoError(t, err)

	snap, err := e.uc.GetSnapshot(context.Background(), pid)
	require.NoError(t, err)
	assert.True(t, folded.Quantity.Equal(snap.Quantity),
		"libro %s vs snapshot %s", folded.Quantity, snap.Quantity)
	assert.True(t, folded.AvgCost.Equal(snap.AvgCost))
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

// TestAdjustStock_ConcurrentesSerializan: dos ajustes simultáneos sobre el mismo
// producto se serializan por la sección de producto; ninguna actualización se
// pierde y el resultado es el de aplicar ambos.
func TestAdjustStock_ConcurrentesSerializan(t *testing.T) {
	e := newEnv(t)
	pid := e.createProduct(t, "SKU-1", "0")
	e.importStock(t, pid, "9", "1.00")

	deltas := []string{"-3", "-4"}
	errs := make([]error, len(deltas))
	var wg sync.WaitGroup
	for i, d := range deltas {
		wg.Add(1)
		go func(i int, d string) {
			defer wg.Done()
			_, errs[i] = e.uc.AdjustStock(context.Background(), pid, dec(d), entity.ReasonCountCorrection, "", "tester")
		}(i, d)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "ajuste %d", i)
	}

	snap, err := e.uc.GetSnapshot(context.Background(), pid)
	require.NoError(t, err)
	assert.True(t, dec("2").Equal(snap.Quantity), "9-3-4 = 2, fue %s", snap.Quantity)
	assert.Equal(t, int64(3), snap.Version, "import + 2 ajustes = 3 escrituras")
}

// ──────────────────────────────────────────────────────────────────────────────
// Gateway de ajustes
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustStock_Validaciones(t *testing.T) {
	e := newEnv(t)
	pid := e.createProduct(t, "SKU-1", "0")
	e.importStock(t, pid, "10", "1.00")
	ctx := context.Background()

	_, err := e.uc.AdjustStock(ctx, pid, decimal.Zero, entity.ReasonDamaged, "", "tester")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "delta cero no es un ajuste")

	_, err = e.uc.AdjustStock(ctx, pid, dec("-1"), entity.ReasonReversal, "", "tester")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "las razones internas no se aceptan desde fuera")

	_, err = e.uc.AdjustStock(ctx, pid, dec("-1"), "CAPRICHO", "", "tester")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdjustStock_DevuelveSnapshotResultante(t *testing.T) {
	e := newEnv(t)
	pid := e.createProduct(t, "SKU-1", "0")
	e.importStock(t, pid, "10", "2.00")

	snap, err := e.uc.AdjustStock(context.Background(), pid, dec("-3"), entity.ReasonTheft, "faltante en conteo", "tester")
	require.NoError(t, err)
	assert.True(t, dec("7").Equal(snap.Quantity))
	assert.True(t, dec("2.00").Equal(snap.AvgCost), "el ajuste no toca el costo promedio")
}

// TestSetStock_DejaLineaEnElLibro: fijar el stock absoluto se traduce en un
// ajuste con línea en el libro; no existe escritura directa al snapshot.
func TestSetStock_DejaLineaEnElLibro(t *testing.T) {
	e := newEnv(t)
	pid := e.createProduct(t, "SKU-1", "0")
	e.importStock(t, pid, "10", "5.00")

	snap, err := e.uc.SetStock(context.Background(), pid, dec("4"), "tester")
	require.NoError(t, err)
	assert.True(t, dec("4").Equal(snap.Quantity))

	movs, err := e.uc.ListMovements(context.Background(), pid, nil, nil, 10, 0)
	require.NoError(t, err)
	require.Len(t, movs, 2, "la fijación debe haber dejado su propia línea")
	assert.Equal(t, entity.ReasonManualOverride, movs[0].Reason,
		"el movimiento más reciente es el override")
	assert.True(t, dec("-6").Equal(movs[0].Quantity), "delta = 4 - 10 = -6")
}

func TestSetStock_ObjetivoYaAlcanzadoNoEscribe(t *testing.T) {
	e := newEnv(t)
	pid := e.createProduct(t, "SKU-1", "0")
	e.importStock(t, pid, "10", "5.00")

	snap, err := e.uc.SetStock(context.Background(), pid, dec("10"), "tester")
	require.NoError(t, err)
	assert.True(t, dec("10").Equal(snap.Quantity))

	count, err := e.txRepo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "sin cambio de cantidad no hay línea nueva")
}

// TestSetStock_ObjetivoConMovimientoConcurrente: el delta del override se calcula
// dentro de la unidad atómica, con la sección del producto adquirida. Un movimiento
// que comprometa mientras el override está en vuelo queda reflejado en la lectura y
// la cantidad final es exactamente la pedida, no la derivada de una lectura vieja.
func TestSetStock_ObjetivoConMovimientoConcurrente(t *testing.T) {
	e := newEnv(t)
	pid := e.createProduct(t, "SKU-1", "0")
	e.importStock(t, pid, "10", "2.00")
	ctx := context.Background()

	// Una venta de 3 toma la sección del producto y la retiene mientras el
	// override arranca; su commit deja la cantidad en 7.
	runner := memory.NewTxRunner(e.store)
	holding := make(chan struct{})
	release := make(chan struct{})
	saleDone := make(chan error, 1)
	go func() {
		saleDone <- runner.Run(ctx, func(
			txRepo repository.TransactionRepository,
			snapRepo repository.SnapshotRepository,
			_ repository.ProductRepository,
		) error {
			snap, err := snapRepo.GetForUpdate(ctx, pid)
			if err != nil {
				return err
			}
			v := snap.Version
			snap.Quantity = snap.Quantity.Sub(dec("3"))
			if err := snapRepo.UpdateVersioned(ctx, snap, v); err != nil {
				return err
			}
			seq, err := txRepo.NextSequence(ctx)
			if err != nil {
				return err
			}
			header := &entity.StockTransaction{
				ID:         "tx-venta-concurrente",
				SequenceNo: seq,
				Category:   entity.MovementSale,
				RefType:    entity.RefSalesOrder,
				Status:     entity.StatusCompleted,
				CreatedAt:  time.Now(),
			}
			if err := txRepo.CreateHeader(ctx, header); err != nil {
				return err
			}
			if err := txRepo.CreateLine(ctx, &entity.TransactionLine{
				TransactionID: header.ID,
				ProductID:     pid,
				Quantity:      dec("3"),
				Direction:     -1,
				UnitCost:      decimal.Zero,
			}); err != nil {
				return err
			}
			close(holding)
			<-release
			return nil
		})
	}()

	<-holding
	setDone := make(chan struct{})
	var snap *entity.Snapshot
	var setErr error
	go func() {
		snap, setErr = e.uc.SetStock(ctx, pid, dec("4"), "tester")
		close(setDone)
	}()

	time.Sleep(50 * time.Millisecond)
	close(release)
	require.NoError(t, <-saleDone)
	<-setDone
	require.NoError(t, setErr)

	assert.True(t, dec("4").Equal(snap.Quantity),
		"se pidió fijar el stock en 4 y debe quedar en 4, quedó en %s", snap.Quantity)

	// y el libro lo explica: import +10, venta -3, override -3
	history, err := e.txRepo.HistoryByProduct(ctx, pid)
	require.NoError(t, err)
	movs := make([]valuation.Movement, 0, len(history))
	for _, m := range history {
		movs = append(movs, valuation.Movement{Category: m.Category, Quantity: m.Quantity, UnitCost: m.UnitCost})
	}
	folded, err := valuation.Fold(pid, movs)
	require.NoError(t, err)
	assert.True(t, dec("4").Equal(folded.Quantity),
		"el fold del libro debe coincidir con el objetivo")
}

func TestSetStock_Validaciones(t *testing.T) {
	e := newEnv(t)
	pid := e.createProduct(t, "SKU-1", "0")
	ctx := context.Background()

	_, err := e.uc.SetStock(ctx, pid, dec("-1"), "tester")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el objetivo no puede ser negativo")

	_, err = e.uc.SetStock(ctx, "no-existe", dec("5"), "tester")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reversas
// ──────────────────────────────────────────────────────────────────────────────

// TestReverseTransaction_CompensaYMarca: la reversa crea la compensatoria
// pareada (cantidades opuestas, referenciando la original) y marca la original
// como REVERSED en la misma unidad atómica.
func TestReverseTransaction_CompensaYMarca(t *testing.T) {
	e := newEnv(t)
	pid := e.createProduct(t, "SKU-1", "0")
	origID := e.importStock(t, pid, "10", "5.00")

	compID, err := e.uc.ReverseTransaction(context.Background(), origID, "tester")
	require.NoError(t, err)

	snap, err := e.uc.GetSnapshot(context.Background(), pid)
	require.NoError(t, err)
	assert.True(t, snap.Quantity.IsZero(), "la compensatoria anula el efecto neto")

	orig, err := e.txRepo.GetByID(context.Background(), origID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusReversed, orig.Status)

	comp, err := e.txRepo.GetByID(context.Background(), compID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, comp.Status)
	assert.Equal(t, entity.RefReversal, comp.RefType)
	assert.Equal(t, origID, comp.RefID, "la compensatoria referencia a la original")
}

// TestReverseTransaction_LaOriginalSigueEnElHistorial: REVERSED sigue contando
// para el fold; original y compensatoria se cancelan mutuamente.
func TestReverseTransaction_LaOriginalSigueEnElHistorial(t *testing.T) {
	e := newEnv(t)
	pid := e.createProduct(t, "SKU-1", "0")
	origID := e.importStock(t, pid, "10", "5.00")

	_, err := e.uc.ReverseTransaction(context.Background(), origID, "tester")
	require.NoError(t, err)

	history, err := e.txRepo.HistoryByProduct(context.Background(), pid)
	require.NoError(t, err)
	require.Len(t, history, 2, "original y compensatoria permanecen en el libro")

	neto := decimal.Zero
	for _, m := range history {
		neto = neto.Add(m.Quantity)
	}
	assert.True(t, neto.IsZero(), "el neto de la pareja debe ser cero")
}

func TestReverseTransaction_DobleReversaRechazada(t *testing.T) {
	e := newEnv(t)
	pid := e.createProduct(t, "SKU-1", "0")
	origID := e.importStock(t, pid, "10", "5.00")

	_, err := e.uc.ReverseTransaction(context.Background(), origID, "tester")
	require.NoError(t, err)

	_, err = e.uc.ReverseTransaction(context.Background(), origID, "tester")
	assert.ErrorIs(t, err, domain.ErrAlreadyReversed)
}

func TestReverseTransaction_Inexistente(t *testing.T) {
	e := newEnv(t)
	_, err := e.uc.ReverseTransaction(context.Background(), "no-existe", "tester")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestReverseTransaction_SalidaYaConsumida: revertir una entrada cuyo stock ya
// salió dejaría cantidad negativa; debe fallar sin tocar nada.
func TestReverseTransaction_SalidaYaConsumida(t *testing.T) {
	e := newEnv(t)
	pid := e.createProduct(t, "SKU-1", "0")
	origID := e.importStock(t, pid, "10", "5.00")
	require.NoError(t, e.sell(t, pid, "8"))

	_, err := e.uc.ReverseTransaction(context.Background(), origID, "tester")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	orig, err := e.txRepo.GetByID(context.Background(), origID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, orig.Status,
		"ante fallo la original no debe quedar marcada")
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestGetSnapshot_SinMovimientos(t *testing.T) {
	e := newEnv(t)
	pid := e.createProduct(t, "SKU-1", "0")

	_, err := e.uc.GetSnapshot(context.Background(), pid)
	assert.ErrorIs(t, err, domain.ErrNotFound,
		"un producto sin movimientos no tiene snapshot")
}

func TestLowStock_UmbralInclusivo(t *testing.T) {
	e := newEnv(t)
	pid := e.createProduct(t, "SKU-1", "5")
	e.importStock(t, pid, "10", "1.00")

	low, err := e.uc.LowStock(context.Background())
	require.NoError(t, err)
	assert.Empty(t, low, "con 10 > 5 no hay alerta")

	require.NoError(t, e.sell(t, pid, "5"))
	low, err = e.uc.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 1, "con 5 <= 5 el producto entra en la lista")
	assert.Equal(t, pid, low[0].ProductID)
}

// TestListMovements_SinLimiteDevuelveTodo: limit <= 0 significa sin tope, el
// contrato es el mismo en todos los adaptadores del puerto.
func TestListMovements_SinLimiteDevuelveTodo(t *testing.T) {
	e := newEnv(t)
	pid := e.createProduct(t, "SKU-1", "0")
	e.importStock(t, pid, "10", "1.00")
	require.NoError(t, e.sell(t, pid, "2"))
	require.NoError(t, e.sell(t, pid, "1"))

	movs, err := e.uc.ListMovements(context.Background(), pid, nil, nil, 0, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 3, "sin límite deben venir los tres movimientos")
}

func TestListMovements_MasRecientePrimero(t *testing.T) {
	e := newEnv(t)
	pid := e.createProduct(t, "SKU-1", "0")
	e.importStock(t, pid, "10", "1.00")
	require.NoError(t, e.sell(t, pid, "3"))

	movs, err := e.uc.ListMovements(context.Background(), pid, nil, nil, 10, 0)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementSale, movs[0].Category)
	assert.True(t, dec("-3").Equal(movs[0].Quantity), "la cantidad viene ya firmada")
	assert.Equal(t, entity.MovementImport, movs[1].Category)
}
