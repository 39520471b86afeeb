package kvcache

import (
	"context"
	"sync"

	"github.com/Jaqxs/yammi-yami-diapers-sub000/internal/domain"
	"github.com/google/btree"
)

type entry struct {
	key   string
	value string
}

// Memory is an in-process Cache. Keys are kept in a btree so listing
// matches the ordering of the bolt backend.
type Memory struct {
	mu       sync.RWMutex
	tree     *btree.BTreeG[entry]
	versions map[string]uint64
	closed   bool
}

var (
	_ Cache     = (*Memory)(nil)
	_ Versioned = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		tree:     btree.NewG(16, func(a, b entry) bool { return a.key < b.key }),
		versions: make(map[string]uint64),
	}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	e, ok := m.tree.Get(entry{key: key})
	return e.value, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.tree.ReplaceOrInsert(entry{key: key, value: value})
	m.versions[key]++
	return nil
}

func (m *Memory) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.tree.Delete(entry{key: key})
	m.versions[key]++
	return nil
}

func (m *Memory) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	keys := make([]string, 0, m.tree.Len())
	m.tree.Ascend(func(e entry) bool {
		keys = append(keys, e.key)
		return true
	})
	return keys, nil
}

func (m *Memory) Version(ctx context.Context, key string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.versions[key], nil
}

func (m *Memory) CompareAndSet(ctx context.Context, key string, version uint64, value string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	if current := m.versions[key]; current != version {
		return 0, domain.NewConflict(key, version, current)
	}
	m.tree.ReplaceOrInsert(entry{key: key, value: value})
	m.versions[key]++
	return m.versions[key], nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
