package lock

import (
	"context"
	"time"

	rd "github.com/go-redis/redis/v9"
	"github.com/mohitkumar/workflower/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const delCommand = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`

type redisLocker struct {
	client    rd.Cmdable
	namespace string
}

// NewRedisLocker returns a locker shared by every process using the same redis.
// It does not wait: a key held elsewhere fails with ErrLockFailed.
func NewRedisLocker(client rd.Cmdable, namespace string) Locker {
	return &redisLocker{client: client, namespace: namespace}
}

func (r *redisLocker) Synchronized(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	if held(ctx, key) {
		return fn(ctx)
	}
	value := randomValue()
	redisKey := r.namespace + ":lock:" + key
	ok, err := r.client.SetNX(ctx, redisKey, value, ttl).Result()
	if err != nil {
		return errors.WithMessagef(ErrLockFailed, "[redisLocker.Synchronized] %s: %v", key, err)
	}
	if !ok {
		return errors.WithMessagef(ErrLockFailed, "[redisLocker.Synchronized] %s is locked", key)
	}
	defer r.release(redisKey, value)
	return fn(withHeld(ctx, key, value))
}

func (r *redisLocker) release(key string, value string) {
	// ctx of the caller may already be cancelled
	reply, err := r.client.Eval(context.Background(), delCommand, []string{key}, value).Int64()
	if err != nil {
		logger.Warn("release lock failed", zap.String("key", key), zap.Error(err))
		return
	}
	if reply != 1 {
		logger.Warn("lock expired before release", zap.String("key", key))
	}
}
