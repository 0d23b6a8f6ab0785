package cache

import (
	"context"
	"time"
)

// NullCache discards everything. It backs --no-cache runs and keeps tests
// deterministic without touching disk.
type NullCache struct{}

// NewNullCache returns a cache that never stores or returns anything.
func NewNullCache() Cache {
	return NullCache{}
}

// Get reports a miss for every key.
func (NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set drops the payload.
func (NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

func (NullCache) Delete(ctx context.Context, key string) error { return nil }

func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
