package notify

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/kvcache"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/store"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type countingReloader struct {
	mu    sync.Mutex
	calls map[domain.Collection]int
	block chan struct{}
}

func (r *countingReloader) Load(ctx context.Context, c domain.Collection) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = make(map[domain.Collection]int)
	}
	r.calls[c]++
	return nil
}

func (r *countingReloader) count(c domain.Collection) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[c]
}

func sampleProduct() domain.Product {
	return domain.Product{
		Name:     domain.Text{En: "Night Pants", Sw: "Pampers za Usiku"},
		Price:    18000,
		Category: domain.CategoryBabyPants,
		Stock:    20,
		Status:   domain.ProductActive,
	}
}

func TestBusDeliversAllChannels(t *testing.T) {
	bus := NewBus()
	var mu sync.Mutex
	var got []string
	record := func(s string) {
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
	}
	require.NoError(t, bus.OnEntity(func(ev domain.ChangeEvent) { record("entity:" + string(ev.Type)) }))
	require.NoError(t, bus.OnStorage(func(key string) { record("storage:" + key) }))
	require.NoError(t, bus.OnPoll(func(key string) { record("poll:" + key) }))

	bus.Notify(domain.ChangeEvent{Type: domain.CollectionOrders, Action: domain.ActionAdd, ID: 4})
	bus.StorageChanged("products")
	bus.PollChanged("registrations")

	assert.Equal(t, []string{"entity:orders", "storage:products", "poll:registrations"}, got)
}

// A write by one store becomes visible in another view over the same cache
func TestWatcherPropagatesWritesBetweenViews(t *testing.T) {
	ctx := context.Background()
	bus := NewBus()
	cache := kvcache.Observe(kvcache.NewMemory(), bus.StorageChanged)

	admin := store.New(cache, store.WithName("admin"), store.WithNotifier(bus))
	front := store.New(cache, store.WithName("storefront"))
	require.NoError(t, front.RefreshData(ctx))
	before := front.Len(domain.CollectionProducts)

	w, err := NewWatcher(front, 2)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Attach(bus))

	added, err := admin.AddProduct(ctx, sampleProduct())
	require.NoError(t, err)
	w.Wait()

	assert.Equal(t, before+1, front.Len(domain.CollectionProducts))
	got, err := front.GetProduct(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, "Night Pants", got.Name.En)
}

func TestWatcherIgnoresNonCollectionKeys(t *testing.T) {
	r := &countingReloader{}
	w, err := NewWatcher(r, 1)
	require.NoError(t, err)
	defer w.Close()

	bus := NewBus()
	require.NoError(t, w.Attach(bus))
	bus.StorageChanged(domain.CartKey)
	bus.StorageChanged(domain.SettingsPrefix + "site")
	w.Wait()

	for _, c := range domain.Collections {
		assert.Zero(t, r.count(c))
	}
}

func TestWatcherCoalescesQueuedReloads(t *testing.T) {
	r := &countingReloader{block: make(chan struct{})}
	w, err := NewWatcher(r, 1)
	require.NoError(t, err)
	defer w.Close()

	isPending := func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.pending[domain.CollectionOrders]
	}

	// the first reload occupies the only worker
	w.Trigger(domain.CollectionOrders)
	require.Eventually(t, func() bool { return !isPending() }, time.Second, 5*time.Millisecond)

	// the second one waits for the worker and stays pending
	go w.Trigger(domain.CollectionOrders)
	require.Eventually(t, isPending, time.Second, 5*time.Millisecond)

	// everything else folds into the queued reload
	for i := 0; i < 4; i++ {
		w.Trigger(domain.CollectionOrders)
	}
	close(r.block)
	w.Wait()
	assert.Equal(t, 2, r.count(domain.CollectionOrders))
}

func TestPollerReportsLengthMismatch(t *testing.T) {
	ctx := context.Background()
	cache := kvcache.NewMemory()
	view := store.New(cache)
	require.NoError(t, view.RefreshData(ctx))

	var published []string
	p := NewPoller(cache, view, func(key string) { published = append(published, key) })
	assert.Empty(t, p.Poll(ctx))

	// an external writer shrinks registrations behind the view's back
	require.NoError(t, cache.Set(ctx, domain.CollectionRegistrations.Key(), `[{"id":1}]`))
	changed := p.Poll(ctx)
	assert.Equal(t, []domain.Collection{domain.CollectionRegistrations}, changed)
	assert.Equal(t, []string{"registrations"}, published)

	require.NoError(t, view.Load(ctx, domain.CollectionRegistrations))
	assert.Empty(t, p.Poll(ctx))
}

func TestPollerSchedule(t *testing.T) {
	p := NewPoller(kvcache.NewMemory(), store.New(kvcache.NewMemory()), func(string) {})
	sched := cron.New()
	id, err := p.Schedule(sched, EverySpec(0))
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, "@every 30s", EverySpec(0))
	assert.Equal(t, "@every 1m0s", EverySpec(time.Minute))
}

func TestStreamFanOut(t *testing.T) {
	s := NewStream()
	bus := NewBus()
	require.NoError(t, s.Attach(bus))

	a, cancelA := s.Subscribe(4)
	b, cancelB := s.Subscribe(4)
	assert.Equal(t, 2, s.Subscribers())

	bus.Notify(domain.ChangeEvent{Type: domain.CollectionRegistrations, Action: domain.ActionAdd, ID: 7})
	bus.StorageChanged("orders")
	bus.StorageChanged(domain.CartKey)

	for _, ch := range []<-chan domain.ChangeEvent{a, b} {
		ev := <-ch
		assert.Equal(t, int64(7), ev.ID)
		ev = <-ch
		assert.Equal(t, domain.CollectionOrders, ev.Type)
		assert.Equal(t, domain.ActionUpdate, ev.Action)
		assert.Len(t, ch, 0)
	}

	cancelA()
	cancelA()
	_, open := <-a
	assert.False(t, open)
	assert.Equal(t, 1, s.Subscribers())
	cancelB()
}

func TestStreamDropsWhenFull(t *testing.T) {
	s := NewStream()
	ch, cancel := s.Subscribe(1)
	defer cancel()
	s.Publish(domain.ChangeEvent{ID: 1})
	s.Publish(domain.ChangeEvent{ID: 2})
	assert.Equal(t, int64(1), (<-ch).ID)
	assert.Len(t, ch, 0)
}

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func TestMailerRegistrationDecision(t *testing.T) {
	sender := &fakeSender{}
	m := NewMailer(sender, "shop@example.com", "Yammy Yami")

	pending := domain.Registration{ID: 1, Name: "Asha", Email: "asha@example.com", Status: domain.RegistrationPending}
	require.NoError(t, m.SendRegistrationDecision(pending))
	assert.Empty(t, sender.sent)

	approved := pending
	approved.Status = domain.RegistrationApproved
	approved.Notes = "Welcome"
	require.NoError(t, m.SendRegistrationDecision(approved))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"asha@example.com"}, sender.sent[0].GetHeader("To"))
	assert.True(t, strings.Contains(sender.sent[0].GetHeader("Subject")[0], "approved"))

	sender.err = errors.New("smtp down")
	err := m.SendRegistrationDecision(approved)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "asha@example.com")
}
