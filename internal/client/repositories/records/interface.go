package records

import (
	"context"
)

// Repository is a durable string-keyed record store.
//
// Get returns (nil, nil) when the key is absent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)

	// Atomic runs fn against a repository whose writes become visible all at
	// once when fn returns nil, and not at all otherwise.
	Atomic(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
