package repository

import (
	"context"
	"sort"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/store"
)

// LocalRepository serves one collection from the cache-backed store
type LocalRepository[T any, K comparable] struct {
	e      entity[T, K]
	load   func(ctx context.Context) ([]T, error)
	get    func(ctx context.Context, id K) (T, error)
	add    func(ctx context.Context, item T) (T, error)
	update func(ctx context.Context, item T) (T, error)
	remove func(ctx context.Context, id K) error
}

var _ Products = (*LocalRepository[domain.Product, int64])(nil)

// List reloads the collection from the cache before filtering
func (r *LocalRepository[T, K]) List(ctx context.Context, f Filter) ([]T, int64, error) {
	items, err := r.load(ctx)
	if err != nil {
		return nil, 0, err
	}
	return applyFilter(r.e, items, f), countMatches(r.e, items, f), nil
}

func (r *LocalRepository[T, K]) Get(ctx context.Context, id K) (T, error) {
	return r.get(ctx, id)
}

func (r *LocalRepository[T, K]) Create(ctx context.Context, item T) (T, error) {
	return r.add(ctx, item)
}

func (r *LocalRepository[T, K]) Update(ctx context.Context, item T) (T, error) {
	return r.update(ctx, item)
}

func (r *LocalRepository[T, K]) Delete(ctx context.Context, id K) error {
	return r.remove(ctx, id)
}

func countMatches[T any, K comparable](e entity[T, K], items []T, f Filter) int64 {
	var n int64
	for _, it := range items {
		if e.match(it, f) {
			n++
		}
	}
	return n
}

// applyFilter matches, sorts and pages items in memory
func applyFilter[T any, K comparable](e entity[T, K], items []T, f Filter) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if e.match(it, f) {
			out = append(out, it)
		}
	}
	sf := e.sortBy(f.Sort)
	sort.SliceStable(out, func(i, j int) bool {
		if f.Desc {
			return less(sf.key(out[j]), sf.key(out[i]))
		}
		return less(sf.key(out[i]), sf.key(out[j]))
	})
	if f.PageSize <= 0 {
		return out
	}
	start := f.Offset()
	if start >= len(out) {
		return []T{}
	}
	end := start + f.PageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end]
}

type localReviewer struct{ s *store.Store }

func (l localReviewer) Approve(ctx context.Context, id int64, reviewedBy, notes string) (domain.Registration, error) {
	return l.s.ApproveRegistration(ctx, id, reviewedBy, notes)
}

func (l localReviewer) Reject(ctx context.Context, id int64, reviewedBy, notes string) (domain.Registration, error) {
	return l.s.RejectRegistration(ctx, id, reviewedBy, notes)
}

type localOrderStatus struct{ s *store.Store }

func (l localOrderStatus) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	return l.s.UpdateOrderStatus(ctx, id, status)
}

// NewLocal builds the repository set over a store
func NewLocal(s *store.Store) *Set {
	return &Set{
		Backend: BackendLocal,
		Products: &LocalRepository[domain.Product, int64]{
			e: productEntity, load: s.LoadProducts, get: s.GetProduct,
			add: s.AddProduct, update: s.UpdateProduct, remove: s.DeleteProduct,
		},
		Orders: &LocalRepository[domain.Order, string]{
			e: orderEntity, load: s.LoadOrders, get: s.GetOrder,
			add: s.AddOrder, update: s.UpdateOrder, remove: s.DeleteOrder,
		},
		BlogPosts: &LocalRepository[domain.BlogPost, int64]{
			e: blogPostEntity, load: s.LoadBlogPosts, get: s.GetBlogPost,
			add: s.AddBlogPost, update: s.UpdateBlogPost, remove: s.DeleteBlogPost,
		},
		Agents: &LocalRepository[domain.Agent, int64]{
			e: agentEntity, load: s.LoadAgents, get: s.GetAgent,
			add: s.AddAgent, update: s.UpdateAgent, remove: s.DeleteAgent,
		},
		Registrations: &LocalRepository[domain.Registration, int64]{
			e: registrationEntity, load: s.LoadRegistrations, get: s.GetRegistration,
			add: s.AddRegistration, update: s.UpdateRegistration, remove: s.DeleteRegistration,
		},
		Reviewer:    localReviewer{s},
		OrderStatus: localOrderStatus{s},
	}
}
