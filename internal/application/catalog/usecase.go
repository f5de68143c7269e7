// Package catalog registra la referencia mínima de productos que el núcleo de stock
// necesita para validar movimientos. El catálogo completo vive fuera del módulo.
package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
)

// UseCase operaciones de registro y consulta de productos.
type UseCase struct {
	products repository.ProductRepository
}

// NewUseCase construye el caso de uso de catálogo.
func NewUseCase(products repository.ProductRepository) *UseCase {
	return &UseCase{products: products}
}

// CreateProduct registra un producto. SKU y nombre obligatorios; el punto de reorden
// por defecto no puede ser negativo.
func (uc *UseCase) CreateProduct(ctx context.Context, sku, name string, reorderLevel decimal.Decimal) (*entity.Product, error) {
	if sku == "" || name == "" || reorderLevel.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	p := &entity.Product{
		ID:           uuid.New().String(),
		SKU:          sku,
		Name:         name,
		ReorderLevel: reorderLevel,
		CreatedAt:    time.Now(),
	}
	if err := uc.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProduct obtiene un producto por ID.
func (uc *UseCase) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// ListProducts lista productos (paginado).
func (uc *UseCase) ListProducts(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	return uc.products.List(ctx, limit, offset)
}
