package control

import (
	"context"
	"fmt"
	"sync"
)

// Shim is a protocol-specific connection to the control system.
type Shim interface {
	Get(ctx context.Context, addr string) (any, error)
	Put(ctx context.Context, addr string, value any) error
}

// MockShim is an in-memory Shim for tests and offline use.
type MockShim struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewMockShim returns a MockShim pre-seeded with the given PV values.
func NewMockShim(seed map[string]any) *MockShim {
	data := make(map[string]any, len(seed))
	for addr, v := range seed {
		data[addr] = v
	}
	return &MockShim{data: data}
}

func (m *MockShim) Get(_ context.Context, addr string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[addr]
	if !ok {
		return nil, fmt.Errorf("control: unknown pv %q", addr)
	}
	return v, nil
}

func (m *MockShim) Put(_ context.Context, addr string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[addr] = value
	return nil
}
