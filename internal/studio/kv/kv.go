// Package kv provides the small string key-value stores the studio persists
// its state in.
package kv

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrQuotaExceeded is returned when a value does not fit the store's
// capacity. Callers may retry with a smaller value.
var ErrQuotaExceeded = errors.New("kv: storage quota exceeded")

// Memory is an in-process store with an optional byte capacity covering the
// sum of all keys and values. Zero capacity means unlimited.
type Memory struct {
	mu       sync.Mutex
	data     map[string]string
	capacity int
	used     int
}

func NewMemory(capacity int) *Memory {
	return &Memory{data: make(map[string]string), capacity: capacity}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	used := m.used + len(value)
	if old, ok := m.data[key]; ok {
		used -= len(old)
	} else {
		used += len(key)
	}
	if m.capacity > 0 && used > m.capacity {
		return ErrQuotaExceeded
	}
	m.data[key] = value
	m.used = used
	return nil
}

func (m *Memory) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.data[key]; ok {
		m.used -= len(key) + len(old)
		delete(m.data, key)
	}
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]string)
	m.used = 0
	return nil
}

// Keys lists stored keys in order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
