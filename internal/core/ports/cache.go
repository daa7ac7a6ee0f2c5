package ports

import (
	"context"
	"time"
)

// Cache is a key/value store with per-key expiry. Get reports a miss
// with found == false and a nil error; any other failure is returned
// as an error wrapping domain.ErrCacheUnavailable.
//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=Cache
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}
