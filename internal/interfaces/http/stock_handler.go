package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/invorya/stock-ledger/internal/application/dto"
	"github.com/invorya/stock-ledger/internal/application/ledger"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
)

// StockHandler maneja las peticiones HTTP del libro de stock.
type StockHandler struct {
	uc *ledger.UseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *ledger.UseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// actor identifica a quien origina la petición; lo inyecta la capa externa.
func actor(c *fiber.Ctx) string {
	return c.Get("X-Actor-Id")
}

// SubmitTransaction godoc
// @Summary      Registrar transacción de stock
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitTransactionRequest  true  "category, lines (product_id, quantity, unit_cost en entradas, direction y reason en ajustes)"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/transactions [post]
func (h *StockHandler) SubmitTransaction(c *fiber.Ctx) error {
	var in dto.SubmitTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lines := make([]ledger.LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, ledger.LineInput{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Direction: l.Direction,
			UnitCost:  l.UnitCost,
			Reason:    entity.AdjustmentReason(l.Reason),
		})
	}
	id, err := h.uc.SubmitTransaction(c.Context(), ledger.TransactionInput{
		Category:  entity.MovementType(in.Category),
		RefType:   entity.RefType(in.RefType),
		RefID:     in.RefID,
		Notes:     in.Notes,
		CreatedBy: actor(c),
		Lines:     lines,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"transaction_id": id})
}

// ReverseTransaction godoc
// @Summary      Revertir una transacción COMPLETED con su compensatoria pareada
// @Tags         stock
// @Produce      json
// @Param        id  path  string  true  "ID de la transacción original"
// @Success      201  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/transactions/{id}/reversal [post]
func (h *StockHandler) ReverseTransaction(c *fiber.Ctx) error {
	compID, err := h.uc.ReverseTransaction(c.Context(), c.Params("id"), actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"compensating_id": compID})
}

// AdjustStock godoc
// @Summary      Ajuste manual razonado de stock
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del producto"
// @Param        body  body  dto.AdjustStockRequest true  "delta firmado distinto de cero y reason obligatoria"
// @Success      200   {object}  dto.SnapshotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/products/{id}/adjustments [post]
func (h *StockHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	snap, err := h.uc.AdjustStock(c.Context(), c.Params("id"), in.Delta, entity.AdjustmentReason(in.Reason), in.Notes, actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snapshotToDTO(snap))
}

// SetStock godoc
// @Summary      Fijar stock absoluto (override manual, deja línea en el libro)
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del producto"
// @Param        body  body  dto.SetStockRequest true  "target_quantity >= 0"
// @Success      200   {object}  dto.SnapshotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/products/{id}/level [put]
func (h *StockHandler) SetStock(c *fiber.Ctx) error {
	var in dto.SetStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	snap, err := h.uc.SetStock(c.Context(), c.Params("id"), in.TargetQuantity, actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snapshotToDTO(snap))
}

// GetSnapshot godoc
// @Summary      Snapshot actual de un producto
// @Tags         stock
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.SnapshotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/products/{id}/snapshot [get]
func (h *StockHandler) GetSnapshot(c *fiber.Ctx) error {
	snap, err := h.uc.GetSnapshot(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snapshotToDTO(snap))
}

// ListMovements godoc
// @Summary      Historial de movimientos de un producto
// @Tags         stock
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        from    query  string  false  "Fecha inicial (RFC3339)"
// @Param        to      query  string  false  "Fecha final (RFC3339)"
// @Param        limit   query  int     false  "Tamaño de página"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.MovementDTO
// @Router       /api/stock/products/{id}/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()

	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "fecha 'from' inválida"})
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "fecha 'to' inválida"})
		}
		to = &t
	}

	movements, err := h.uc.ListMovements(c.Context(), c.Params("id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementDTO, 0, len(movements))
	for _, m := range movements {
		out = append(out, movementToDTO(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// LowStock godoc
// @Summary      Productos en o por debajo de su punto de reorden
// @Tags         stock
// @Produce      json
// @Success      200  {array}  dto.SnapshotResponse
// @Router       /api/stock/low-stock [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	snaps, err := h.uc.LowStock(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.SnapshotResponse, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, snapshotToDTO(s))
	}
	return c.JSON(fiber.Map{"total": len(out), "products": out})
}

func snapshotToDTO(s *entity.Snapshot) dto.SnapshotResponse {
	return dto.SnapshotResponse{
		ProductID:    s.ProductID,
		Quantity:     s.Quantity,
		AvgCost:      s.AvgCost,
		ReorderLevel: s.ReorderLevel,
		Version:      s.Version,
		UpdatedAt:    s.UpdatedAt,
	}
}

func movementToDTO(m repository.MovementRecord) dto.MovementDTO {
	return dto.MovementDTO{
		TransactionID: m.TransactionID,
		SequenceNo:    m.SequenceNo,
		Category:      string(m.Category),
		Status:        string(m.Status),
		Quantity:      m.Quantity,
		UnitCost:      m.UnitCost,
		Reason:        string(m.Reason),
		CreatedAt:     m.CreatedAt,
	}
}
