package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/invorya/stock-ledger/internal/application/audit"
)

// AuditHandler expone la pasada de conciliación y el re-sync explícito por producto.
type AuditHandler struct {
	uc *audit.UseCase
}

// NewAuditHandler construye el handler.
func NewAuditHandler(uc *audit.UseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// Report godoc
// @Summary      Reporte de conciliación libro vs. snapshots (solo lectura)
// @Tags         audit
// @Produce      json
// @Success      200  {object}  dto.ReconciliationReportDTO
// @Router       /api/stock/reconciliation [get]
func (h *AuditHandler) Report(c *fiber.Ctx) error {
	report, err := h.uc.Report(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// Resync godoc
// @Summary      Reconstruir el snapshot de un producto desde el libro
// @Description  Corrección explícita de operador tras un hallazgo del reporte;
//
//	el reporte nunca la dispara por sí mismo.
//
// @Tags         audit
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.SnapshotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/products/{id}/resync [post]
func (h *AuditHandler) Resync(c *fiber.Ctx) error {
	snap, err := h.uc.ResyncSnapshot(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snapshotToDTO(snap))
}
