package service

import (
	"context"
	"time"
)

// Cache stores JSON-serialisable values. Get reports found=false on a miss.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (found bool, err error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
