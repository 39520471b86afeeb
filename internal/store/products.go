package store

import (
	"context"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
)

func (s *Store) LoadProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products.load(ctx)
}

// Products returns the in-memory products without touching the cache
func (s *Store) Products() []domain.Product {
	return s.products.snapshot()
}

func (s *Store) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	return s.products.get(ctx, id)
}

// AddProduct assigns the next id and writes the collection through
func (s *Store) AddProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	return s.products.add(ctx, p)
}

// UpdateProduct replaces the product with the same id or returns domain.ErrNotFound
func (s *Store) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	return s.products.update(ctx, p)
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	return s.products.remove(ctx, id)
}

// AdjustStock adds delta to the product stock, clamping at zero
func (s *Store) AdjustStock(ctx context.Context, id int64, delta int) (domain.Product, error) {
	return s.products.modify(ctx, id, func(p *domain.Product) error {
		p.Stock += delta
		if p.Stock < 0 {
			p.Stock = 0
		}
		return nil
	})
}

// FeaturedProducts returns visible products flagged for the homepage
func (s *Store) FeaturedProducts() []domain.Product {
	var out []domain.Product
	for _, p := range s.products.snapshot() {
		if p.Featured && p.Visible() {
			out = append(out, p)
		}
	}
	return out
}
