package store

import (
	"context"
	"sync"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/kvcache"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/pkg/metrics"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// schema describes how one entity type is identified, seeded and guarded
type schema[T any, K comparable] struct {
	name domain.Collection
	seed func(stamp int64) []T
	id   func(T) K
	// next returns the id for a new entity given the current items
	next  func(items []T) K
	setID func(*T, K)
	// prepare normalizes an entity before it is written
	prepare func(item *T, s *Store)
	// guard rejects a replacement of old by updated and may carry fields over from old
	guard func(old T, updated *T) error
	event func(K) (int64, string)
}

// collection is the in-memory copy of one cached collection.
// Every mutation serializes the whole collection and swaps memory only after the write succeeds.
type collection[T any, K comparable] struct {
	schema[T, K]
	store *Store

	mu      sync.Mutex
	items   []T
	loaded  bool
	version uint64
}

func newCollection[T any, K comparable](s *Store, sc schema[T, K]) *collection[T, K] {
	return &collection[T, K]{schema: sc, store: s}
}

func (c *collection[T, K]) key() string {
	return c.name.Key()
}

func (c *collection[T, K]) logger() *zap.Logger {
	return zap.L().With(
		zap.String("namespace", "store"),
		zap.String("store", c.store.name),
		zap.String("collection", string(c.name)),
	)
}

// load replaces memory with the cached collection, seeding when the key is absent or unreadable
func (c *collection[T, K]) load(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadLocked(ctx); err != nil {
		return nil, err
	}
	return c.snapshotLocked(), nil
}

func (c *collection[T, K]) loadLocked(ctx context.Context) error {
	defer c.store.touch(c.name)

	var version uint64
	if v, ok := c.versioned(); ok {
		ver, err := v.Version(ctx, c.key())
		if err != nil {
			return errors.Wrapf(err, "read version of %s", c.name)
		}
		version = ver
	}

	raw, found, err := c.store.cache.Get(ctx, c.key())
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger().Warn("cache read failed, using seed data", zap.Error(err))
	case found:
		var items []T
		if err := json.UnmarshalFromString(raw, &items); err != nil {
			c.logger().Warn("malformed cache content, using seed data", zap.Error(err))
			break
		}
		if items == nil {
			items = []T{}
		}
		c.items, c.version, c.loaded = items, version, true
		return nil
	}

	c.version = version
	items := c.seed(c.store.now().Unix())
	if err := c.writeLocked(ctx, items); err != nil {
		return err
	}
	c.loaded = true
	c.logger().Info("collection seeded", zap.Int("count", len(items)))
	return nil
}

func (c *collection[T, K]) ensureLoaded(ctx context.Context) error {
	if c.loaded {
		return nil
	}
	return c.loadLocked(ctx)
}

func (c *collection[T, K]) versioned() (kvcache.Versioned, bool) {
	if !c.store.optimistic {
		return nil, false
	}
	v, ok := c.store.cache.(kvcache.Versioned)
	return v, ok
}

// writeLocked persists next and, on success only, makes it the in-memory state
func (c *collection[T, K]) writeLocked(ctx context.Context, next []T) error {
	if next == nil {
		next = []T{}
	}
	raw, err := json.MarshalToString(next)
	if err != nil {
		return errors.Wrapf(err, "encode %s", c.name)
	}

	if v, ok := c.versioned(); ok {
		ver, err := v.CompareAndSet(ctx, c.key(), c.version, raw)
		if err != nil {
			c.logger().Error("guarded write failed", zap.Uint64("version", c.version), zap.Error(err))
			metrics.Record("store_write_errors", 1, "collection", string(c.name))
			return errors.WithMessagef(err, "write %s", c.name)
		}
		c.version = ver
	} else if err := c.store.cache.Set(ctx, c.key(), raw); err != nil {
		c.logger().Error("cache write failed", zap.Error(err))
		metrics.Record("store_write_errors", 1, "collection", string(c.name))
		return errors.Wrapf(err, "write %s", c.name)
	}

	c.items = next
	metrics.Record("store_writes", 1, "collection", string(c.name))
	return nil
}

func (c *collection[T, K]) snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *collection[T, K]) snapshotLocked() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *collection[T, K]) indexOf(id K) int {
	for i, it := range c.items {
		if c.id(it) == id {
			return i
		}
	}
	return -1
}

func (c *collection[T, K]) get(ctx context.Context, id K) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	if err := c.ensureLoaded(ctx); err != nil {
		return zero, err
	}
	i := c.indexOf(id)
	if i < 0 {
		return zero, domain.NewNotFound(c.name, id)
	}
	return c.items[i], nil
}

func (c *collection[T, K]) add(ctx context.Context, item T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	if err := c.ensureLoaded(ctx); err != nil {
		return zero, err
	}

	id := c.next(c.items)
	c.setID(&item, id)
	if c.prepare != nil {
		c.prepare(&item, c.store)
	}
	next := append(c.snapshotLocked(), item)
	if err := c.writeLocked(ctx, next); err != nil {
		return zero, err
	}
	c.store.touch(c.name)
	c.emit(domain.ActionAdd, id)
	return item, nil
}

// modify applies fn to the entity with the given id and writes the result through
func (c *collection[T, K]) modify(ctx context.Context, id K, fn func(*T) error) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	if err := c.ensureLoaded(ctx); err != nil {
		return zero, err
	}

	i := c.indexOf(id)
	if i < 0 {
		c.logger().Warn("update of missing entity", zap.Any("id", id))
		return zero, domain.NewNotFound(c.name, id)
	}
	old := c.items[i]
	updated := old
	if err := fn(&updated); err != nil {
		return zero, err
	}
	c.setID(&updated, id)
	if c.guard != nil {
		if err := c.guard(old, &updated); err != nil {
			return zero, err
		}
	}
	if c.prepare != nil {
		c.prepare(&updated, c.store)
	}

	next := c.snapshotLocked()
	next[i] = updated
	if err := c.writeLocked(ctx, next); err != nil {
		return zero, err
	}
	c.store.touch(c.name)
	c.emit(domain.ActionUpdate, id)
	return updated, nil
}

func (c *collection[T, K]) update(ctx context.Context, item T) (T, error) {
	return c.modify(ctx, c.id(item), func(t *T) error {
		*t = item
		return nil
	})
}

// remove deletes the entity; an absent id is logged and still written through
func (c *collection[T, K]) remove(ctx context.Context, id K) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLoaded(ctx); err != nil {
		return err
	}

	next := make([]T, 0, len(c.items))
	for _, it := range c.items {
		if c.id(it) != id {
			next = append(next, it)
		}
	}
	removed := len(next) != len(c.items)
	if !removed {
		c.logger().Warn("delete of missing entity", zap.Any("id", id))
	}
	if err := c.writeLocked(ctx, next); err != nil {
		return err
	}
	c.store.touch(c.name)
	if removed {
		c.emit(domain.ActionDelete, id)
	}
	return nil
}

func (c *collection[T, K]) emit(action domain.Action, id K) {
	if c.store.notifier == nil {
		return
	}
	ev := domain.ChangeEvent{Type: c.name, Action: action}
	ev.ID, ev.Ref = c.event(id)
	c.store.notifier.Notify(ev)
}

func maxPlusOne[T any](items []T, id func(T) int64) int64 {
	var top int64
	for _, it := range items {
		if v := id(it); v > top {
			top = v
		}
	}
	return top + 1
}

func int64Event(id int64) (int64, string) {
	return id, ""
}
