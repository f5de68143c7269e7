package repository

import (
	"context"

	"github.com/invorya/stock-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para la referencia de catálogo (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	Count(ctx context.Context) (int64, error)
}
