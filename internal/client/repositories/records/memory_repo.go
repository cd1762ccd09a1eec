package records

import (
	"bytes"
	"context"
	"sync"
)

type MemoryRepository struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string][]byte)}
}

func (r *MemoryRepository) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.data[key]
	if !ok {
		return nil, nil
	}
	return bytes.Clone(v), nil
}

func (r *MemoryRepository) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = bytes.Clone(value)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}

func (r *MemoryRepository) List(_ context.Context) (map[string][]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string][]byte, len(r.data))
	for k, v := range r.data {
		out[k] = bytes.Clone(v)
	}
	return out, nil
}

// Atomic stages fn's writes on a copy and swaps them in when fn succeeds.
// Concurrent writers are serialized for the duration of fn.
func (r *MemoryRepository) Atomic(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stage := &MemoryRepository{data: make(map[string][]byte, len(r.data))}
	for k, v := range r.data {
		stage.data[k] = v
	}

	if err := fn(ctx, &stagedRepository{stage: stage}); err != nil {
		return err
	}

	r.data = stage.data
	return nil
}

// stagedRepository lets Atomic callbacks nest without re-locking the parent.
type stagedRepository struct {
	stage *MemoryRepository
}

func (s *stagedRepository) Get(ctx context.Context, key string) ([]byte, error) {
	return s.stage.Get(ctx, key)
}

func (s *stagedRepository) Set(ctx context.Context, key string, value []byte) error {
	return s.stage.Set(ctx, key, value)
}

func (s *stagedRepository) Delete(ctx context.Context, key string) error {
	return s.stage.Delete(ctx, key)
}

func (s *stagedRepository) List(ctx context.Context) (map[string][]byte, error) {
	return s.stage.List(ctx)
}

func (s *stagedRepository) Atomic(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	return fn(ctx, s)
}

var _ Repository = (*MemoryRepository)(nil)
