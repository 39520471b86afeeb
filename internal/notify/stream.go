package notify

import (
	"sync"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
)

// Stream fans change events out to subscribers such as SSE connections.
// A slow subscriber misses events instead of blocking publishers.
type Stream struct {
	mu   sync.Mutex
	next int
	subs map[int]chan domain.ChangeEvent
}

func NewStream() *Stream {
	return &Stream{subs: make(map[int]chan domain.ChangeEvent)}
}

// Attach forwards every channel of b into the stream. Cache and poll signals
// become update events without an id.
func (s *Stream) Attach(b *Bus) error {
	if err := b.OnEntity(s.Publish); err != nil {
		return err
	}
	fromKey := func(key string) {
		if c, ok := domain.CollectionForKey(key); ok {
			s.Publish(domain.ChangeEvent{Type: c, Action: domain.ActionUpdate})
		}
	}
	if err := b.OnStorage(fromKey); err != nil {
		return err
	}
	return b.OnPoll(fromKey)
}

// Subscribe returns a buffered channel and a func that cancels the subscription
func (s *Stream) Subscribe(buffer int) (<-chan domain.ChangeEvent, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan domain.ChangeEvent, buffer)
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Stream) Publish(ev domain.ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribers returns the number of open subscriptions
func (s *Stream) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
