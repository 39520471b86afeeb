package app

import (
	"context"
	"sync"
	"time"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/cart"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/repository"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/pkg/metrics"
	"go.uber.org/zap"
)

// SweepInterval is how often the background service scans carts and stock
var SweepInterval = time.Minute

// StartSchedulerService runs the cart sweep and the low-stock scan periodically
func (a *Application) StartSchedulerService(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.runSweeps(ctx)
			}
		}
	}()
}

func (a *Application) runSweeps(ctx context.Context) {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	a.runCartSweep(ctx)
	a.runLowStockScan(ctx)
}

// CartStats summarises the session carts found in the cache
type CartStats struct {
	Carts int
	Items int
	Value int64
}

// runCartSweep reads every session cart in parallel and records how many carts
// are open and what they hold; it never writes a cart
func (a *Application) runCartSweep(ctx context.Context) CartStats {
	var stats CartStats
	keys, err := a.cache.Keys(ctx)
	if err != nil {
		zap.L().Error("cart sweep: list keys failed", zap.String("namespace", "app"), zap.Error(err))
		return stats
	}

	maxWorkers := a.appConfig.Store.Workers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	sem := make(chan struct{}, maxWorkers)
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, key := range keys {
		if !domain.IsCartKey(key) {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(key string) {
			defer wg.Done()
			defer func() { <-sem }()

			ct := cart.New(a.cache, key, nil)
			items, err := ct.Load(ctx)
			if err != nil {
				zap.L().Warn("cart sweep: read failed", zap.String("namespace", "app"), zap.String("key", key), zap.Error(err))
				return
			}
			if len(items) == 0 {
				return
			}
			mu.Lock()
			stats.Carts++
			stats.Items += ct.ItemCount()
			stats.Value += ct.Total()
			mu.Unlock()
		}(key)
	}
	wg.Wait()

	metrics.SetGauge("shop_open_carts", int64(stats.Carts))
	metrics.SetGauge("shop_cart_items", int64(stats.Items))
	metrics.SetGauge("shop_cart_value", stats.Value)
	return stats
}

// runLowStockScan warns once when a visible product falls to the low-stock threshold
// and returns the ids currently low
func (a *Application) runLowStockScan(ctx context.Context) []int64 {
	threshold := 20
	if ns, err := a.admin.NotificationSettings(ctx); err == nil && ns.LowStockThreshold > 0 {
		threshold = ns.LowStockThreshold
	}
	products, _, err := a.repos.Products.List(ctx, repository.Filter{Sort: "id"})
	if err != nil {
		zap.L().Error("low stock scan: list products failed", zap.String("namespace", "app"), zap.Error(err))
		return nil
	}

	var low []int64
	seen := make(map[int64]bool, len(products))
	for _, p := range products {
		if !p.Visible() || p.Stock > threshold {
			continue
		}
		low = append(low, p.ID)
		seen[p.ID] = true
		if !a.lowStock[p.ID] {
			zap.L().Warn("product stock is low",
				zap.String("namespace", "app"),
				zap.Int64("id", p.ID),
				zap.String("name", p.Name.String()),
				zap.Int("stock", p.Stock),
				zap.Int("threshold", threshold))
		}
	}
	a.lowStock = seen
	metrics.SetGauge("shop_low_stock_products", int64(len(low)))
	return low
}
