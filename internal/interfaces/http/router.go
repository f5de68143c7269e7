package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/invorya/stock-ledger/internal/application/audit"
	"github.com/invorya/stock-ledger/internal/application/catalog"
	"github.com/invorya/stock-ledger/internal/application/ledger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC  *ledger.UseCase
	CatalogUC *catalog.UseCase
	AuditUC   *audit.UseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api/stock")

	// Productos (referencia de catálogo)
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.CatalogUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	// Libro de stock
	stockHandler := NewStockHandler(deps.LedgerUC)
	api.Post("/transactions", stockHandler.SubmitTransaction)
	api.Post("/transactions/:id/reversal", stockHandler.ReverseTransaction)
	products.Post("/:id/adjustments", stockHandler.AdjustStock)
	products.Put("/:id/level", stockHandler.SetStock)
	products.Get("/:id/snapshot", stockHandler.GetSnapshot)
	products.Get("/:id/movements", stockHandler.ListMovements)
	api.Get("/low-stock", stockHandler.LowStock)

	// Conciliación
	auditHandler := NewAuditHandler(deps.AuditUC)
	api.Get("/reconciliation", auditHandler.Report)
	products.Post("/:id/resync", auditHandler.Resync)
}
