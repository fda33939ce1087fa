package repository

import (
	"context"
	"time"
)

// Locker provides per-conversation mutual exclusion around a turn.
// The dialog state transition is not safe for concurrent mutation of
// the same conversation; different conversations may proceed in parallel.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
