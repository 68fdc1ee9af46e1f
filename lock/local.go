package lock

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

type keyLock struct {
	sem  chan struct{}
	refs int
}

type localLocker struct {
	mu   sync.Mutex
	keys map[string]*keyLock
}

// NewLocalLocker returns an in process locker. Callers wait for the lock until
// ctx is done, the ttl is not used.
func NewLocalLocker() Locker {
	return &localLocker{keys: make(map[string]*keyLock)}
}

func (l *localLocker) Synchronized(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	if held(ctx, key) {
		return fn(ctx)
	}
	kl := l.acquireRef(key)
	defer l.releaseRef(key, kl)

	select {
	case kl.sem <- struct{}{}:
	case <-ctx.Done():
		return errors.WithMessagef(ErrLockFailed, "[localLocker.Synchronized] waiting for %s: %v", key, ctx.Err())
	}
	defer func() { <-kl.sem }()
	return fn(withHeld(ctx, key, randomValue()))
}

func (l *localLocker) acquireRef(key string) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl, ok := l.keys[key]
	if !ok {
		kl = &keyLock{sem: make(chan struct{}, 1)}
		l.keys[key] = kl
	}
	kl.refs++
	return kl
}

func (l *localLocker) releaseRef(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.keys, key)
	}
}
