package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/kvcache"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/seed"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errQuota = errors.New("quota exceeded")

// faultyCache fails writes while failing is set
type faultyCache struct {
	kvcache.Cache
	mu      sync.Mutex
	failing bool
}

func (f *faultyCache) fail(on bool) {
	f.mu.Lock()
	f.failing = on
	f.mu.Unlock()
}

func (f *faultyCache) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	failing := f.failing
	f.mu.Unlock()
	if failing {
		return errQuota
	}
	return f.Cache.Set(ctx, key, value)
}

type recorder struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
}

func (r *recorder) Notify(ev domain.ChangeEvent) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) all() []domain.ChangeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ChangeEvent(nil), r.events...)
}

var fixedNow = time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, c kvcache.Cache, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(c, opts...)
}

func emptyProducts(t *testing.T, c kvcache.Cache) {
	t.Helper()
	require.NoError(t, c.Set(context.Background(), domain.CollectionProducts.Key(), "[]"))
}

func TestLoadSeedsOnlyWhenAbsent(t *testing.T) {
	ctx := context.Background()
	cache := kvcache.NewMemory()
	s := newTestStore(t, cache)

	products, err := s.LoadProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, len(seed.Products()))
	assert.Contains(t, products[0].Image, "?v=1710057600")

	raw, ok, err := cache.Get(ctx, domain.CollectionProducts.Key())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, "Yammi Yami Baby Diapers")

	// a populated cache is never overwritten by seed data
	require.NoError(t, cache.Set(ctx, domain.CollectionProducts.Key(), `[{"id":42,"name":{"en":"Only"},"price":1000,"category":"baby-wipes","status":"active"}]`))
	products, err = newTestStore(t, cache).LoadProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(42), products[0].ID)
}

func TestLoadMalformedFallsBackToSeed(t *testing.T) {
	ctx := context.Background()
	cache := kvcache.NewMemory()
	require.NoError(t, cache.Set(ctx, domain.CollectionAgents.Key(), "{not json"))

	agents, err := newTestStore(t, cache).LoadAgents(ctx)
	require.NoError(t, err)
	assert.Len(t, agents, len(seed.Agents()))

	raw, _, _ := cache.Get(ctx, domain.CollectionAgents.Key())
	assert.Contains(t, raw, "Baraka Distributors")
}

func TestAddAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	cache := kvcache.NewMemory()
	emptyProducts(t, cache)
	s := newTestStore(t, cache)

	for i := 1; i <= 3; i++ {
		p, err := s.AddProduct(ctx, domain.Product{Name: domain.Text{En: "p"}, Price: 1000})
		require.NoError(t, err)
		assert.Equal(t, int64(i), p.ID)
	}

	// deleting a middle entity never frees its id
	require.NoError(t, s.DeleteProduct(ctx, 2))
	p, err := s.AddProduct(ctx, domain.Product{Name: domain.Text{En: "p"}, Price: 1000})
	require.NoError(t, err)
	assert.Equal(t, int64(4), p.ID)
}

func TestIDRestartsAfterCollectionEmptied(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kvcache.NewMemory())

	products, err := s.LoadProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, len(seed.Products()))

	for _, p := range products {
		require.NoError(t, s.DeleteProduct(ctx, p.ID))
	}
	assert.Empty(t, s.Products())

	p, err := s.AddProduct(ctx, domain.Product{Name: domain.Text{En: "again"}, Price: 5000})
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
}

func TestWriteThroughMatchesFreshRead(t *testing.T) {
	ctx := context.Background()
	cache := kvcache.NewMemory()
	s := newTestStore(t, cache)

	_, err := s.LoadBlogPosts(ctx)
	require.NoError(t, err)
	added, err := s.AddBlogPost(ctx, domain.BlogPost{Title: domain.Text{En: "New"}, ReadTime: 2, Category: "news"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", added.Date)
	assert.Equal(t, domain.BlogDraft, added.Status)

	added.Status = domain.BlogPublished
	_, err = s.UpdateBlogPost(ctx, added)
	require.NoError(t, err)
	require.NoError(t, s.DeleteBlogPost(ctx, 1))

	fresh, err := newTestStore(t, cache).LoadBlogPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.BlogPosts(), fresh)
}

func TestUpdateMissingReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kvcache.NewMemory())

	_, err := s.UpdateAgent(ctx, domain.Agent{ID: 999, Name: "ghost"})
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
	assert.Len(t, s.Agents(), len(seed.Agents()))

	_, err = s.GetProduct(ctx, 999)
	assert.True(t, domain.IsNotFound(err))
}

func TestDeleteMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	s := newTestStore(t, kvcache.NewMemory(), WithNotifier(rec))
	_, err := s.LoadAgents(ctx)
	require.NoError(t, err)

	require.NoError(t, s.DeleteAgent(ctx, 999))
	assert.Len(t, s.Agents(), len(seed.Agents()))
	assert.Empty(t, rec.all())
}

func TestWriteFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	cache := &faultyCache{Cache: kvcache.NewMemory()}
	s := newTestStore(t, cache)

	before, err := s.LoadProducts(ctx)
	require.NoError(t, err)

	cache.fail(true)
	_, err = s.AddProduct(ctx, domain.Product{Name: domain.Text{En: "x"}, Price: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, errQuota)
	assert.Contains(t, err.Error(), "write products")

	changed := before[0]
	changed.Price = 1
	_, err = s.UpdateProduct(ctx, changed)
	require.ErrorIs(t, err, errQuota)
	require.ErrorIs(t, s.DeleteProduct(ctx, before[0].ID), errQuota)

	assert.Equal(t, before, s.Products())

	cache.fail(false)
	p, err := s.AddProduct(ctx, domain.Product{Name: domain.Text{En: "x"}, Price: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(len(before)+1), p.ID)
}

func TestSeedWriteFailureIsReturned(t *testing.T) {
	cache := &faultyCache{Cache: kvcache.NewMemory(), failing: true}
	_, err := newTestStore(t, cache).LoadOrders(context.Background())
	require.ErrorIs(t, err, errQuota)
}

func TestRegistrationReviewIsTerminal(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	s := newTestStore(t, kvcache.NewMemory(), WithNotifier(rec))

	r, err := s.AddRegistration(ctx, domain.Registration{Name: "Asha", Email: "a@b.co", Phone: "1", Region: "Tanga", Status: domain.RegistrationApproved})
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationPending, r.Status)
	assert.Equal(t, int64(4), r.ID)

	approved, err := s.ApproveRegistration(ctx, r.ID, "admin", "paid")
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationApproved, approved.Status)
	assert.Equal(t, "admin", approved.ReviewedBy)
	assert.Equal(t, "2024-03-10T08:00:00Z", approved.ReviewDate)
	assert.Equal(t, "paid", approved.Notes)

	_, err = s.RejectRegistration(ctx, r.ID, "admin", "")
	assert.True(t, domain.IsInvalidTransition(err))
	_, err = s.ApproveRegistration(ctx, r.ID, "admin", "")
	assert.True(t, domain.IsInvalidTransition(err))

	back := approved
	back.Status = domain.RegistrationPending
	_, err = s.UpdateRegistration(ctx, back)
	assert.True(t, domain.IsInvalidTransition(err))

	// other fields stay editable
	approved.Notes = "called back"
	_, err = s.UpdateRegistration(ctx, approved)
	require.NoError(t, err)

	got, err := s.GetRegistration(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationApproved, got.Status)

	events := rec.all()
	require.Len(t, events, 3)
	assert.Equal(t, domain.ChangeEvent{Type: domain.CollectionRegistrations, Action: domain.ActionUpdate, ID: r.ID}, events[1])
}

func TestRejectRegistration(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kvcache.NewMemory())
	r, err := s.RejectRegistration(ctx, 1, "admin", "no payment")
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationRejected, r.Status)
	assert.Equal(t, 1, s.PendingRegistrations())

	_, err = s.ApproveRegistration(ctx, 404, "admin", "")
	assert.True(t, domain.IsNotFound(err))
}

func TestOrdersUseTokenIDsAndStateMachine(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	s := newTestStore(t, kvcache.NewMemory(), WithNotifier(rec))

	o, err := s.AddOrder(ctx, domain.Order{
		CustomerName: "Neema",
		Total:        1,
		Items:        []domain.OrderItem{{ProductID: 2, Name: "Medium", Quantity: 3, Price: 20000}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-004", o.ID)
	assert.Equal(t, int64(60000), o.Total)
	assert.Equal(t, domain.OrderPending, o.Status)
	assert.Equal(t, "2024-03-10", o.Date)

	_, err = s.UpdateOrderStatus(ctx, o.ID, domain.OrderShipped)
	assert.True(t, domain.IsInvalidTransition(err))

	for _, st := range []domain.OrderStatus{domain.OrderProcessing, domain.OrderShipped, domain.OrderCompleted} {
		o, err = s.UpdateOrderStatus(ctx, o.ID, st)
		require.NoError(t, err)
	}
	assert.Equal(t, domain.OrderCompleted, o.Status)
	_, err = s.UpdateOrderStatus(ctx, o.ID, domain.OrderCancelled)
	assert.True(t, domain.IsInvalidTransition(err))

	events := rec.all()
	require.NotEmpty(t, events)
	assert.Equal(t, domain.ChangeEvent{Type: domain.CollectionOrders, Action: domain.ActionAdd, ID: 4, Ref: "ORD-004"}, events[0])
}

func TestUpdateOrderBlankStatusKeepsCurrent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kvcache.NewMemory())

	o, err := s.AddOrder(ctx, domain.Order{CustomerName: "Neema", Total: 9000})
	require.NoError(t, err)
	for _, st := range []domain.OrderStatus{domain.OrderProcessing, domain.OrderShipped} {
		_, err = s.UpdateOrderStatus(ctx, o.ID, st)
		require.NoError(t, err)
	}

	updated, err := s.UpdateOrder(ctx, domain.Order{ID: o.ID, CustomerName: "Neema", Total: 9000, ShippingAddress: "Moshi"})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderShipped, updated.Status)

	got, err := s.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderShipped, got.Status)
	assert.Equal(t, "Moshi", got.ShippingAddress)
}

func TestUpdateRegistrationLeavesDecisionToReview(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kvcache.NewMemory())

	r, err := s.AddRegistration(ctx, domain.Registration{Name: "Asha", Email: "a@b.co", Phone: "1", Region: "Tanga"})
	require.NoError(t, err)

	edit := r
	edit.Status = domain.RegistrationApproved
	edit.ReviewedBy = "admin"
	_, err = s.UpdateRegistration(ctx, edit)
	assert.True(t, domain.IsInvalidTransition(err))

	got, err := s.GetRegistration(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationPending, got.Status)
	assert.Empty(t, got.ReviewedBy)
}

func TestLastUpdatedRefreshed(t *testing.T) {
	ctx := context.Background()
	current := fixedNow
	s := New(kvcache.NewMemory(), WithClock(func() time.Time { return current }))
	assert.True(t, s.LastUpdated(domain.CollectionAgents).IsZero())

	_, err := s.LoadAgents(ctx)
	require.NoError(t, err)
	assert.Equal(t, fixedNow, s.LastUpdated(domain.CollectionAgents))

	current = fixedNow.Add(time.Minute)
	require.NoError(t, s.DeleteAgent(ctx, 1))
	assert.Equal(t, current, s.LastUpdated(domain.CollectionAgents))
	assert.True(t, s.LastUpdated(domain.CollectionOrders).IsZero())
}

func TestRefreshDataLoadsEverything(t *testing.T) {
	ctx := context.Background()
	cache := kvcache.NewMemory()
	s := newTestStore(t, cache)
	require.NoError(t, s.RefreshData(ctx))

	for _, c := range domain.Collections {
		_, ok, err := cache.Get(ctx, c.Key())
		require.NoError(t, err)
		assert.True(t, ok, "collection %s written", c)
		assert.Equal(t, fixedNow, s.LastUpdated(c))
	}
	assert.Equal(t, len(seed.Orders()), s.Len(domain.CollectionOrders))
}

func TestOptimisticRejectsStaleWriter(t *testing.T) {
	ctx := context.Background()
	cache := kvcache.NewMemory()
	first := newTestStore(t, cache, WithOptimistic(), WithName("first"))
	second := newTestStore(t, cache, WithOptimistic(), WithName("second"))

	_, err := first.LoadAgents(ctx)
	require.NoError(t, err)
	_, err = second.LoadAgents(ctx)
	require.NoError(t, err)

	_, err = first.AddAgent(ctx, domain.Agent{Name: "A", Phone: "1", Region: "Lindi"})
	require.NoError(t, err)

	_, err = second.AddAgent(ctx, domain.Agent{Name: "B", Phone: "2", Region: "Lindi"})
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
	assert.Len(t, second.Agents(), len(seed.Agents()))

	// after reloading the second writer sees the first change and may write
	_, err = second.LoadAgents(ctx)
	require.NoError(t, err)
	b, err := second.AddAgent(ctx, domain.Agent{Name: "B", Phone: "2", Region: "Lindi"})
	require.NoError(t, err)
	assert.Equal(t, int64(6), b.ID)
}

func TestLastWriterWinsByDefault(t *testing.T) {
	ctx := context.Background()
	cache := kvcache.NewMemory()
	first := newTestStore(t, cache)
	second := newTestStore(t, cache)
	_, _ = first.LoadAgents(ctx)
	_, _ = second.LoadAgents(ctx)

	_, err := first.AddAgent(ctx, domain.Agent{Name: "A"})
	require.NoError(t, err)
	_, err = second.AddAgent(ctx, domain.Agent{Name: "B"})
	require.NoError(t, err)

	fresh, err := newTestStore(t, cache).LoadAgents(ctx)
	require.NoError(t, err)
	assert.Equal(t, "B", fresh[len(fresh)-1].Name)
	assert.Len(t, fresh, len(seed.Agents())+1)
}

func TestAdjustStockClamps(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kvcache.NewMemory())
	p, err := s.AdjustStock(ctx, 3, -100)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
	assert.Len(t, s.FeaturedProducts(), 3)
}

func TestLoadUnknownCollection(t *testing.T) {
	err := newTestStore(t, kvcache.NewMemory()).Load(context.Background(), "widgets")
	assert.True(t, domain.IsNotFound(err))
}
