// Package db defines the key-value store contract backing the embedding
// cache.
package db

import (
	"context"
	"time"
)

// Store is the key-value surface the service needs from Redis.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()
}
