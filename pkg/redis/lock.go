package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a single-instance mutual exclusion lock over SET NX PX.
// A holder that outlives the TTL loses the lock; release never removes a
// lock taken over by someone else.
type Locker struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// NewLocker creates a Locker using the lock settings from cfg.
func NewLocker(client redis.UniversalClient, cfg Config) *Locker {
	l := &Locker{
		client: client,
		prefix: cfg.LockPrefix,
		ttl:    cfg.LockTTL,
		wait:   cfg.LockWait,
		retry:  cfg.LockRetry,
	}
	if l.ttl <= 0 {
		l.ttl = 10 * time.Second
	}
	if l.retry <= 0 {
		l.retry = 50 * time.Millisecond
	}
	return l
}

// Lock blocks until key is acquired, the wait budget is spent or ctx ends.
// The returned function releases the lock and is safe to call more than once.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	fullKey := l.prefix + key

	var deadline <-chan time.Time
	if l.wait > 0 {
		timer := time.NewTimer(l.wait)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil {
			return nil, errors.Join(ErrLockFailed, err)
		}
		if ok {
			return l.releaser(fullKey, token), nil
		}
		if deadline == nil {
			return nil, ErrLockNotAcquired
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrLockNotAcquired, ctx.Err())
		case <-deadline:
			return nil, ErrLockNotAcquired
		case <-time.After(l.retry):
		}
	}
}

func (l *Locker) releaser(key, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			// Release must run even when the request context was cancelled.
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
		})
	}
}
