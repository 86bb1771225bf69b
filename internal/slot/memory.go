package slot

import (
	"context"
	"sync"
)

// Memory is an in-process slot. It never touches disk.
type Memory struct {
	mu      sync.Mutex
	data    []byte
	present bool
	closed  bool

	// FailWrites makes every Write return the given error.
	FailWrites error
}

// NewMemory returns an empty memory slot.
func NewMemory() *Memory {
	return &Memory{}
}

// NewMemoryWith returns a memory slot pre-filled with data.
func NewMemoryWith(data []byte) *Memory {
	m := &Memory{}
	m.data = append([]byte(nil), data...)
	m.present = true
	return m
}

func (m *Memory) Read(ctx context.Context) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	if !m.present {
		return nil, false, nil
	}
	return append([]byte(nil), m.data...), true, nil
}

func (m *Memory) Write(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.data = append([]byte(nil), data...)
	m.present = true
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
