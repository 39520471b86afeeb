// Package repository puts one CRUD interface in front of the three persistence backends.
// The local backend wraps the cache-backed store; the database backend uses gorm; the remote
// backend calls another deployment's admin API. Switching backend is a full cutover, not a sync.
package repository

import (
	"context"
	"strings"
	"time"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
)

// Filter narrows a List call. Zero values mean "no constraint".
type Filter struct {
	Query    string
	Status   string
	Category string
	Region   string
	Featured *bool
	From     time.Time
	To       time.Time

	Sort     string
	Desc     bool
	Page     int
	PageSize int
}

// Offset returns the row offset for the page, or 0 when paging is off
func (f Filter) Offset() int {
	if f.PageSize <= 0 || f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

func (f Filter) query() string {
	return strings.ToLower(strings.TrimSpace(f.Query))
}

// Repository is CRUD over one collection
type Repository[T any, K comparable] interface {
	// List returns one page of matching entities and the total match count
	List(ctx context.Context, f Filter) ([]T, int64, error)
	Get(ctx context.Context, id K) (T, error)
	// Create assigns the id and returns the stored entity
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, item T) (T, error)
	Delete(ctx context.Context, id K) error
}

// RegistrationReviewer decides pending agent registrations
type RegistrationReviewer interface {
	Approve(ctx context.Context, id int64, reviewedBy, notes string) (domain.Registration, error)
	Reject(ctx context.Context, id int64, reviewedBy, notes string) (domain.Registration, error)
}

// OrderStatusUpdater moves an order through its status machine
type OrderStatusUpdater interface {
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error)
}

type (
	Products      = Repository[domain.Product, int64]
	Orders        = Repository[domain.Order, string]
	BlogPosts     = Repository[domain.BlogPost, int64]
	Agents        = Repository[domain.Agent, int64]
	Registrations = Repository[domain.Registration, int64]
)

// Set is every repository of one backend
type Set struct {
	Backend       Backend
	Products      Products
	Orders        Orders
	BlogPosts     BlogPosts
	Agents        Agents
	Registrations Registrations
	Reviewer      RegistrationReviewer
	OrderStatus   OrderStatusUpdater
}
