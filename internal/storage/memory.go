package storage

import (
	"context"
	"sync"
)

// MemoryBackend keeps records in process memory. Values are copied on the
// way in and out so callers never share buffers with the store.
type MemoryBackend struct {
	mu     sync.Mutex
	values map[string][]byte
}

var _ Backend = (*MemoryBackend)(nil)

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string][]byte)}
}

// NewMemoryBackendFrom seeds the backend with raw values.
func NewMemoryBackendFrom(seed map[string]string) *MemoryBackend {
	m := NewMemoryBackend()
	for k, v := range seed {
		m.values[k] = []byte(v)
	}
	return m
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryBackend) Ping(context.Context) error { return nil }

func (m *MemoryBackend) Close() error { return nil }
