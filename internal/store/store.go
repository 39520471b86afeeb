// Package store is the in-memory catalog, order and content state backed by the kv cache.
// A Store owns its in-memory copies; the cache owns the durable copies and every
// mutation writes the whole collection through before memory changes.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/kvcache"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/seed"
	"golang.org/x/sync/errgroup"
)

// Notifier receives a ChangeEvent after every successful mutation
type Notifier interface {
	Notify(ev domain.ChangeEvent)
}

type Option func(*Store)

// WithNotifier publishes change events to n
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithOptimistic guards writes with the cache version seen at the last load or write.
// A stale writer gets domain.ErrConflict instead of overwriting a newer collection.
func WithOptimistic() Option {
	return func(s *Store) { s.optimistic = true }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithName labels the store in logs, e.g. "admin" or "storefront"
func WithName(name string) Option {
	return func(s *Store) { s.name = name }
}

type Store struct {
	cache      kvcache.Cache
	notifier   Notifier
	optimistic bool
	now        func() time.Time
	name       string

	products      *collection[domain.Product, int64]
	orders        *collection[domain.Order, string]
	blogPosts     *collection[domain.BlogPost, int64]
	agents        *collection[domain.Agent, int64]
	registrations *collection[domain.Registration, int64]

	settingsMu sync.Mutex

	mu          sync.RWMutex
	lastUpdated map[domain.Collection]time.Time
}

func New(cache kvcache.Cache, opts ...Option) *Store {
	s := &Store{
		cache:       cache,
		now:         time.Now,
		name:        "default",
		lastUpdated: make(map[domain.Collection]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.products = newCollection(s, productSchema)
	s.orders = newCollection(s, orderSchema)
	s.blogPosts = newCollection(s, blogPostSchema)
	s.agents = newCollection(s, agentSchema)
	s.registrations = newCollection(s, registrationSchema)
	return s
}

func (s *Store) Name() string {
	return s.name
}

func (s *Store) touch(c domain.Collection) {
	s.mu.Lock()
	s.lastUpdated[c] = s.now()
	s.mu.Unlock()
}

// LastUpdated returns when the collection was last loaded or mutated
func (s *Store) LastUpdated(c domain.Collection) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated[c]
}

// Load reloads one collection by name
func (s *Store) Load(ctx context.Context, c domain.Collection) error {
	var err error
	switch c {
	case domain.CollectionProducts:
		_, err = s.LoadProducts(ctx)
	case domain.CollectionOrders:
		_, err = s.LoadOrders(ctx)
	case domain.CollectionBlogPosts:
		_, err = s.LoadBlogPosts(ctx)
	case domain.CollectionAgents:
		_, err = s.LoadAgents(ctx)
	case domain.CollectionRegistrations:
		_, err = s.LoadRegistrations(ctx)
	default:
		return domain.NewNotFound("collections", c)
	}
	return err
}

// Len returns the in-memory size of a collection
func (s *Store) Len(c domain.Collection) int {
	switch c {
	case domain.CollectionProducts:
		return len(s.products.snapshot())
	case domain.CollectionOrders:
		return len(s.orders.snapshot())
	case domain.CollectionBlogPosts:
		return len(s.blogPosts.snapshot())
	case domain.CollectionAgents:
		return len(s.agents.snapshot())
	case domain.CollectionRegistrations:
		return len(s.registrations.snapshot())
	}
	return 0
}

// RefreshData reloads every collection concurrently and returns once all loads finish
func (s *Store) RefreshData(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range domain.Collections {
		c := c
		g.Go(func() error {
			return s.Load(ctx, c)
		})
	}
	return g.Wait()
}

var productSchema = schema[domain.Product, int64]{
	name: domain.CollectionProducts,
	seed: func(stamp int64) []domain.Product {
		return seed.BustImages(seed.Products(), stamp)
	},
	id:    func(p domain.Product) int64 { return p.ID },
	next:  func(items []domain.Product) int64 { return maxPlusOne(items, func(p domain.Product) int64 { return p.ID }) },
	setID: func(p *domain.Product, id int64) { p.ID = id },
	prepare: func(p *domain.Product, _ *Store) {
		if p.Tags == nil {
			p.Tags = []string{}
		}
	},
	event: int64Event,
}

var blogPostSchema = schema[domain.BlogPost, int64]{
	name: domain.CollectionBlogPosts,
	seed: func(stamp int64) []domain.BlogPost {
		return seed.BustPostImages(seed.BlogPosts(), stamp)
	},
	id:    func(b domain.BlogPost) int64 { return b.ID },
	next:  func(items []domain.BlogPost) int64 { return maxPlusOne(items, func(b domain.BlogPost) int64 { return b.ID }) },
	setID: func(b *domain.BlogPost, id int64) { b.ID = id },
	prepare: func(b *domain.BlogPost, s *Store) {
		if b.Date == "" {
			b.Date = s.today()
		}
		if b.Status == "" {
			b.Status = domain.BlogDraft
		}
	},
	event: int64Event,
}

var agentSchema = schema[domain.Agent, int64]{
	name:  domain.CollectionAgents,
	seed:  func(int64) []domain.Agent { return seed.Agents() },
	id:    func(a domain.Agent) int64 { return a.ID },
	next:  func(items []domain.Agent) int64 { return maxPlusOne(items, func(a domain.Agent) int64 { return a.ID }) },
	setID: func(a *domain.Agent, id int64) { a.ID = id },
	prepare: func(a *domain.Agent, s *Store) {
		if a.RegistrationDate == "" {
			a.RegistrationDate = s.today()
		}
	},
	event: int64Event,
}

func (s *Store) today() string {
	return s.now().Format("2006-01-02")
}
