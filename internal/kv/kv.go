package kv

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound возвращается, когда по ключу ничего не сохранено.
var ErrNotFound = errors.New("kv: key not found")

// Store — персистентное key-value хранилище для блобов корзины.
// Единственный потребитель — cart.Store, поэтому интерфейс минимальный.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Memory — хранилище в памяти. Используется в тестах и как fallback,
// когда Redis не сконфигурирован.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}

	// Копия, чтобы вызывающий код не мог изменить внутренний буфер.
	out := make([]byte, len(value))
	copy(out, value)

	return out, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored

	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)

	return nil
}
