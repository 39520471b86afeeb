package notify

import (
	"context"
	"sync"
	"time"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Reloader re-reads one collection from the cache
type Reloader interface {
	Load(ctx context.Context, c domain.Collection) error
}

// Watcher reloads a view when any channel reports a change.
// At most one reload per collection is queued at a time; duplicates fold into it.
type Watcher struct {
	target  Reloader
	pool    *ants.Pool
	timeout time.Duration

	mu      sync.Mutex
	pending map[domain.Collection]bool
	wg      sync.WaitGroup

	// OnReload is called after every reload attempt
	OnReload func(c domain.Collection, err error)
}

func NewWatcher(target Reloader, workers int) (*Watcher, error) {
	if workers <= 0 {
		workers = 4
	}
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p interface{}) {
		zap.S().Errorf("watcher reload panic: %v", p)
	}))
	if err != nil {
		return nil, errors.Wrap(err, "create watcher pool")
	}
	return &Watcher{
		target:  target,
		pool:    pool,
		timeout: 10 * time.Second,
		pending: make(map[domain.Collection]bool),
	}, nil
}

// Attach subscribes the watcher to all three channels of b
func (w *Watcher) Attach(b *Bus) error {
	if err := b.OnEntity(func(ev domain.ChangeEvent) { w.Trigger(ev.Type) }); err != nil {
		return err
	}
	if err := b.OnStorage(w.triggerKey); err != nil {
		return err
	}
	return b.OnPoll(w.triggerKey)
}

func (w *Watcher) triggerKey(key string) {
	if c, ok := domain.CollectionForKey(key); ok {
		w.Trigger(c)
	}
}

// Trigger queues a reload of c unless one is already queued
func (w *Watcher) Trigger(c domain.Collection) {
	w.mu.Lock()
	if w.pending[c] {
		w.mu.Unlock()
		return
	}
	w.pending[c] = true
	w.wg.Add(1)
	w.mu.Unlock()

	err := w.pool.Submit(func() {
		defer w.wg.Done()
		w.mu.Lock()
		w.pending[c] = false
		w.mu.Unlock()
		w.reload(c)
	})
	if err != nil {
		w.wg.Done()
		w.mu.Lock()
		w.pending[c] = false
		w.mu.Unlock()
		zap.L().Warn("reload not scheduled", zap.String("namespace", "notify"), zap.String("collection", string(c)), zap.Error(err))
	}
}

func (w *Watcher) reload(c domain.Collection) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	err := w.target.Load(ctx, c)
	if err != nil {
		zap.L().Error("view reload failed", zap.String("namespace", "notify"), zap.String("collection", string(c)), zap.Error(err))
	}
	if w.OnReload != nil {
		w.OnReload(c, err)
	}
}

// Wait blocks until queued reloads finish
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) Close() {
	w.Wait()
	w.pool.Release()
}
