// Package cart is the shopper's cart, persisted under its own cache key
// independently of the catalog.
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/kvcache"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Toast is a short bilingual confirmation shown to the shopper
type Toast struct {
	Title       domain.Text `json:"title"`
	Description domain.Text `json:"description"`
}

// Toaster displays confirmations
type Toaster interface {
	Toast(t Toast)
}

// ToasterFunc adapts a func to Toaster
type ToasterFunc func(t Toast)

func (f ToasterFunc) Toast(t Toast) { f(t) }

type discard struct{}

func (discard) Toast(Toast) {}

// Cart holds ordered line items. Totals are derived on every read and never stored.
type Cart struct {
	cache   kvcache.Cache
	key     string
	toaster Toaster

	mu     sync.Mutex
	items  []domain.CartItem
	loaded bool
}

func New(cache kvcache.Cache, key string, toaster Toaster) *Cart {
	if key == "" {
		key = domain.CartKey
	}
	if toaster == nil {
		toaster = discard{}
	}
	return &Cart{cache: cache, key: key, toaster: toaster}
}

func (c *Cart) Key() string {
	return c.key
}

// Load reads the cart from the cache; an absent key is an empty cart
func (c *Cart) Load(ctx context.Context) ([]domain.CartItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadLocked(ctx); err != nil {
		return nil, err
	}
	return c.snapshotLocked(), nil
}

func (c *Cart) loadLocked(ctx context.Context) error {
	raw, found, err := c.cache.Get(ctx, c.key)
	if err != nil {
		return errors.Wrapf(err, "read cart %s", c.key)
	}
	var items []domain.CartItem
	if found {
		if err := jsoniter.UnmarshalFromString(raw, &items); err != nil {
			zap.L().Warn("discarding unreadable cart",
				zap.String("namespace", "cart"), zap.String("key", c.key), zap.Error(err))
			items = nil
		}
	}
	c.items = items
	c.loaded = true
	return nil
}

func (c *Cart) ensureLoaded(ctx context.Context) error {
	if c.loaded {
		return nil
	}
	return c.loadLocked(ctx)
}

func (c *Cart) snapshotLocked() []domain.CartItem {
	out := make([]domain.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) indexOf(id int64) int {
	for i, it := range c.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// writeLocked persists next and only then swaps it in; an empty cart drops its key
func (c *Cart) writeLocked(ctx context.Context, next []domain.CartItem) error {
	if len(next) == 0 {
		if err := c.cache.Remove(ctx, c.key); err != nil {
			zap.L().Error("cart remove failed",
				zap.String("namespace", "cart"), zap.String("key", c.key), zap.Error(err))
			return errors.Wrapf(err, "remove cart %s", c.key)
		}
		c.items = nil
		return nil
	}
	raw, err := jsoniter.MarshalToString(next)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	if err := c.cache.Set(ctx, c.key, raw); err != nil {
		zap.L().Error("cart write failed",
			zap.String("namespace", "cart"), zap.String("key", c.key), zap.Error(err))
		return errors.Wrapf(err, "write cart %s", c.key)
	}
	c.items = next
	return nil
}

// AddItem merges item into an existing line with the same product id, or appends it
func (c *Cart) AddItem(ctx context.Context, item domain.CartItem) error {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLoaded(ctx); err != nil {
		return err
	}

	next := c.snapshotLocked()
	if i := c.indexOf(item.ID); i >= 0 {
		next[i].Quantity += item.Quantity
	} else {
		next = append(next, item)
	}
	if err := c.writeLocked(ctx, next); err != nil {
		return err
	}
	c.toaster.Toast(Toast{
		Title: domain.Text{En: "Added to cart", Sw: "Imeongezwa kwenye kikapu"},
		Description: domain.Text{
			En: fmt.Sprintf("%s has been added to your cart", item.Name),
			Sw: fmt.Sprintf("%s imeongezwa kwenye kikapu chako", item.Name),
		},
	})
	return nil
}

// RemoveItem drops the line for product id; an absent id is a no-op
func (c *Cart) RemoveItem(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLoaded(ctx); err != nil {
		return err
	}
	i := c.indexOf(id)
	if i < 0 {
		return nil
	}
	next := c.snapshotLocked()
	next = append(next[:i], next[i+1:]...)
	return c.writeLocked(ctx, next)
}

// UpdateQuantity sets the quantity exactly; quantity <= 0 removes the line
func (c *Cart) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	if quantity <= 0 {
		return c.RemoveItem(ctx, id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLoaded(ctx); err != nil {
		return err
	}
	i := c.indexOf(id)
	if i < 0 {
		return nil
	}
	next := c.snapshotLocked()
	next[i].Quantity = quantity
	return c.writeLocked(ctx, next)
}

// Clear empties the cart and deletes its cache key
func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.cache.Remove(ctx, c.key); err != nil {
		return errors.Wrapf(err, "remove cart %s", c.key)
	}
	c.items = nil
	c.loaded = true
	return nil
}

func (c *Cart) Items() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// ItemCount is the sum of quantities
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// Total is the sum of price times quantity
func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Total(c.items)
}

func Total(items []domain.CartItem) int64 {
	var t int64
	for _, it := range items {
		t += it.Subtotal()
	}
	return t
}
