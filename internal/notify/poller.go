package notify

import (
	"context"
	"time"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/kvcache"
	jsoniter "github.com/json-iterator/go"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultPollInterval matches the registrations view refresh
const DefaultPollInterval = 30 * time.Second

// Sizer reports how many entities a view currently holds in memory
type Sizer interface {
	Len(c domain.Collection) int
}

// Poller re-reads the cache and compares collection lengths with a view,
// catching external changes the other channels missed
type Poller struct {
	cache       kvcache.Cache
	view        Sizer
	publish     func(key string)
	collections []domain.Collection
}

func NewPoller(cache kvcache.Cache, view Sizer, publish func(key string), collections ...domain.Collection) *Poller {
	if len(collections) == 0 {
		collections = domain.Collections
	}
	return &Poller{cache: cache, view: view, publish: publish, collections: collections}
}

// Poll runs one pass and returns the collections whose length differed
func (p *Poller) Poll(ctx context.Context) []domain.Collection {
	var changed []domain.Collection
	for _, c := range p.collections {
		raw, found, err := p.cache.Get(ctx, c.Key())
		if err != nil {
			zap.L().Warn("poll read failed", zap.String("namespace", "notify"), zap.String("key", c.Key()), zap.Error(err))
			continue
		}
		if !found {
			continue
		}
		var items []jsoniter.RawMessage
		if err := jsoniter.UnmarshalFromString(raw, &items); err != nil {
			continue
		}
		if len(items) != p.view.Len(c) {
			changed = append(changed, c)
			p.publish(c.Key())
		}
	}
	return changed
}

// Schedule registers the poll pass on a cron scheduler, e.g. "@every 30s"
func (p *Poller) Schedule(sched *cron.Cron, spec string) (cron.EntryID, error) {
	return sched.AddFunc(spec, func() {
		defer func() {
			if err := recover(); err != nil {
				zap.S().Error(err)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		p.Poll(ctx)
	})
}

// EverySpec converts an interval to a cron descriptor
func EverySpec(d time.Duration) string {
	if d <= 0 {
		d = DefaultPollInterval
	}
	return "@every " + d.String()
}
