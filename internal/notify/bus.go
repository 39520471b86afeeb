// Package notify fans out collection change notifications to open views.
// Delivery is at-least-once and unordered across three channels: cache writes,
// explicit change events and a polling timer. Consumers reload; they never apply payloads.
package notify

import (
	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	EventBus "github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	TopicStorage = "storage:changed"
	TopicEntity  = "entity:changed"
	TopicPoll    = "poll:changed"
)

// Bus carries the three notification channels
type Bus struct {
	bus EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

// Notify publishes an explicit change event. It satisfies store.Notifier.
func (b *Bus) Notify(ev domain.ChangeEvent) {
	zap.L().Debug("change event",
		zap.String("namespace", "notify"),
		zap.String("type", string(ev.Type)),
		zap.String("action", string(ev.Action)),
		zap.Int64("id", ev.ID))
	b.bus.Publish(TopicEntity, ev)
}

// StorageChanged reports a cache write of key. Pass it to kvcache.Observe.
func (b *Bus) StorageChanged(key string) {
	b.bus.Publish(TopicStorage, key)
}

// PollChanged reports a change found by the poller
func (b *Bus) PollChanged(key string) {
	b.bus.Publish(TopicPoll, key)
}

func (b *Bus) OnEntity(fn func(ev domain.ChangeEvent)) error {
	return errors.Wrap(b.bus.Subscribe(TopicEntity, fn), "subscribe entity events")
}

func (b *Bus) OnStorage(fn func(key string)) error {
	return errors.Wrap(b.bus.Subscribe(TopicStorage, fn), "subscribe storage events")
}

func (b *Bus) OnPoll(fn func(key string)) error {
	return errors.Wrap(b.bus.Subscribe(TopicPoll, fn), "subscribe poll events")
}
