package store

import (
	"context"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/seed"
)

var orderSchema = schema[domain.Order, string]{
	name: domain.CollectionOrders,
	seed: func(int64) []domain.Order { return seed.Orders() },
	id:   func(o domain.Order) string { return o.ID },
	next: func(items []domain.Order) string {
		return domain.OrderID(maxPlusOne(items, func(o domain.Order) int64 { return domain.OrderSeq(o.ID) }))
	},
	setID: func(o *domain.Order, id string) { o.ID = id },
	prepare: func(o *domain.Order, s *Store) {
		o.Normalize()
		if o.Date == "" {
			o.Date = s.today()
		}
		if o.Items == nil {
			o.Items = []domain.OrderItem{}
		}
	},
	guard: func(old domain.Order, updated *domain.Order) error {
		return updated.Revise(old)
	},
	event: func(id string) (int64, string) {
		return domain.OrderSeq(id), id
	},
}

func (s *Store) LoadOrders(ctx context.Context) ([]domain.Order, error) {
	return s.orders.load(ctx)
}

func (s *Store) Orders() []domain.Order {
	return s.orders.snapshot()
}

func (s *Store) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return s.orders.get(ctx, id)
}

// AddOrder assigns the next ORD-nnn token, recomputes the total and writes through
func (s *Store) AddOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	return s.orders.add(ctx, o)
}

// UpdateOrder replaces the order; a status change must follow the order state machine
func (s *Store) UpdateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	return s.orders.update(ctx, o)
}

// UpdateOrderStatus moves an order to status when the transition is allowed
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	return s.orders.modify(ctx, id, func(o *domain.Order) error {
		o.Status = status
		return nil
	})
}

func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	return s.orders.remove(ctx, id)
}
