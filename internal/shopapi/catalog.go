package shopapi

import (
	"context"
	"strings"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/repository"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/store"
)

// Catalog is the read side of the storefront
type Catalog interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Product(ctx context.Context, id int64) (domain.Product, error)
	Posts(ctx context.Context) ([]domain.BlogPost, error)
	Post(ctx context.Context, id int64) (domain.BlogPost, error)
}

// StoreCatalog serves the in-memory view of a store. It never reads the cache
// on list; the watcher reloads the view when the cache changes.
type StoreCatalog struct {
	Store *store.Store
}

func (s StoreCatalog) Products(ctx context.Context) ([]domain.Product, error) {
	return s.Store.Products(), nil
}

func (s StoreCatalog) Product(ctx context.Context, id int64) (domain.Product, error) {
	return s.Store.GetProduct(ctx, id)
}

func (s StoreCatalog) Posts(ctx context.Context) ([]domain.BlogPost, error) {
	return s.Store.BlogPosts(), nil
}

func (s StoreCatalog) Post(ctx context.Context, id int64) (domain.BlogPost, error) {
	return s.Store.GetBlogPost(ctx, id)
}

// RepoCatalog reads through the configured repository backend
type RepoCatalog struct {
	Repos *repository.Set
}

func (r RepoCatalog) Products(ctx context.Context) ([]domain.Product, error) {
	rows, _, err := r.Repos.Products.List(ctx, repository.Filter{})
	return rows, err
}

func (r RepoCatalog) Product(ctx context.Context, id int64) (domain.Product, error) {
	return r.Repos.Products.Get(ctx, id)
}

func (r RepoCatalog) Posts(ctx context.Context) ([]domain.BlogPost, error) {
	rows, _, err := r.Repos.BlogPosts.List(ctx, repository.Filter{Sort: "date", Desc: true})
	return rows, err
}

func (r RepoCatalog) Post(ctx context.Context, id int64) (domain.BlogPost, error) {
	return r.Repos.BlogPosts.Get(ctx, id)
}

// productQuery narrows the visible catalog
type productQuery struct {
	Category string
	Text     string
	Featured *bool
}

func (q productQuery) match(p domain.Product) bool {
	if !p.Visible() {
		return false
	}
	if q.Category != "" && string(p.Category) != q.Category {
		return false
	}
	if q.Featured != nil && p.Featured != *q.Featured {
		return false
	}
	if q.Text == "" {
		return true
	}
	needle := strings.ToLower(q.Text)
	fields := []string{p.Name.En, p.Name.Sw, p.Description.En, p.Description.Sw, p.Size}
	fields = append(fields, p.Tags...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func filterProducts(items []domain.Product, q productQuery) []domain.Product {
	out := make([]domain.Product, 0, len(items))
	for _, p := range items {
		if q.match(p) {
			out = append(out, p)
		}
	}
	return out
}

func publishedPosts(items []domain.BlogPost) []domain.BlogPost {
	out := make([]domain.BlogPost, 0, len(items))
	for _, b := range items {
		if b.Status == domain.BlogPublished {
			out = append(out, b)
		}
	}
	return out
}
