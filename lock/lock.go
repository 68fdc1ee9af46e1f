package lock

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/pkg/errors"
)

var ErrLockFailed = errors.New("lock failed")

// Locker runs fn while holding the lock on key. Locks are re-entrant: a ctx
// handed to fn already holds key, so nested calls with it run straight away.
type Locker interface {
	Synchronized(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error
}

type lockKey string

func held(ctx context.Context, key string) bool {
	_, ok := ctx.Value(lockKey(key)).(string)
	return ok
}

func withHeld(ctx context.Context, key string, value string) context.Context {
	return context.WithValue(ctx, lockKey(key), value)
}

func randomValue() string {
	return fmt.Sprintf("%d_%d", rand.Int(), time.Now().UnixNano())
}
