package repository

import (
	"context"
	"sync"

	"leet2git/internal/common"
)

// KVTier is one storage tier. Get returns common.ErrNotFound for absent keys.
type KVTier interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	BytesInUse(ctx context.Context) (int64, error)
}

type memoryTier struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryTier keeps values in process memory; nothing survives a restart.
func NewMemoryTier() KVTier {
	return &memoryTier{data: make(map[string][]byte)}
}

func (t *memoryTier) Get(_ context.Context, key string) ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.data[key]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (t *memoryTier) Set(_ context.Context, key string, value []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	t.data[key] = v
	return nil
}

func (t *memoryTier) Delete(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.data, key)
	return nil
}

func (t *memoryTier) Clear(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data = make(map[string][]byte)
	return nil
}

func (t *memoryTier) BytesInUse(_ context.Context) (int64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var n int64
	for k, v := range t.data {
		n += int64(len(k) + len(v))
	}
	return n, nil
}
