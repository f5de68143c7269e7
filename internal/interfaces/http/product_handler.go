package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/invorya/stock-ledger/internal/application/catalog"
	"github.com/invorya/stock-ledger/internal/application/dto"
	"github.com/invorya/stock-ledger/internal/domain/entity"
)

// ProductHandler maneja el registro y consulta de la referencia de catálogo.
type ProductHandler struct {
	uc *catalog.UseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *catalog.UseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create registra un producto (POST /api/stock/products).
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	p, err := h.uc.CreateProduct(c.Context(), in.SKU, in.Name, in.ReorderLevel)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(productToDTO(p))
}

// GetByID obtiene un producto (GET /api/stock/products/:id).
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	p, err := h.uc.GetProduct(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(productToDTO(p))
}

// List lista productos (GET /api/stock/products).
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	products, err := h.uc.ListProducts(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, productToDTO(p))
	}
	return c.JSON(fiber.Map{"total": len(out), "products": out})
}

func productToDTO(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		ReorderLevel: p.ReorderLevel,
		CreatedAt:    p.CreatedAt,
	}
}
