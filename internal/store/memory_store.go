package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the encoded graph in memory.
type MemoryStore struct {
	data []byte
	now  func() time.Time
	mu   sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (m *MemoryStore) Save(_ context.Context, flow Flow) error {
	flow.SavedAt = m.now()
	data, err := encode(flow)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	return nil
}

func (m *MemoryStore) Load(_ context.Context) (Flow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.data == nil {
		return Flow{}, ErrNotFound
	}
	return decode(m.data)
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = nil
	return nil
}

func (m *MemoryStore) Exists(_ context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data != nil, nil
}

func (m *MemoryStore) LastSaved(ctx context.Context) (time.Time, error) {
	flow, err := m.Load(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return flow.SavedAt, nil
}
