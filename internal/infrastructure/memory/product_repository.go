package memory

import (
	"context"
	"sort"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/domain/entity"
	"github.com/invorya/stock-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo adaptador de productos en memoria.
type ProductRepo struct {
	store *Store
}

// NewProductRepository construye el adaptador.
func NewProductRepository(store *Store) *ProductRepo {
	return &ProductRepo{store: store}
}

// Create registra un producto; SKU e ID deben ser únicos.
func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, dup := r.store.products[product.ID]; dup {
		return domain.ErrDuplicate
	}
	if _, dup := r.store.skus[product.SKU]; dup {
		return domain.ErrDuplicate
	}
	r.store.products[product.ID] = *product
	r.store.skus[product.SKU] = product.ID
	return nil
}

// GetByID devuelve el producto o nil si no existe.
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, nil
	}
	out := p
	return &out, nil
}

// Exists indica si el producto está registrado.
func (r *ProductRepo) Exists(_ context.Context, id string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	_, ok := r.store.products[id]
	return ok, nil
}

// List lista productos ordenados por SKU (paginado).
func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	r.store.mu.RLock()
	all := make([]*entity.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		out := p
		all = append(all, &out)
	}
	r.store.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].SKU < all[j].SKU })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// Count devuelve el total de productos registrados.
func (r *ProductRepo) Count(_ context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.store.products)), nil
}
