// Package redis holds the Redis-backed adapters: the distributed Locker that
// serializes ledger and KPI writes across processes, and a read-through cache
// in front of the route geometry provider.
package redis

import (
	"context"
	"errors"
	"time"

	"replenishment/internal/core/ports"
	"replenishment/internal/pkg/errs"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

const (
	defaultLockTTL   = 30 * time.Second
	defaultLockWait  = 10 * time.Second
	defaultLockRetry = 100 * time.Millisecond
)

// Locker implements ports.Locker with redislock. A held lock expires after
// ttl even when its owner never releases it.
type Locker struct {
	client *redislock.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// NewLocker builds the locker. Zero durations take the defaults: 30s ttl and
// at most 10s spent waiting for a held lock.
func NewLocker(rdb redis.UniversalClient, ttl, wait time.Duration) *Locker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if wait <= 0 {
		wait = defaultLockWait
	}
	return &Locker{
		client: redislock.New(rdb),
		ttl:    ttl,
		wait:   wait,
		retry:  defaultLockRetry,
	}
}

// Acquire retries until the lock is free, the wait elapses or ctx is done. A
// lock that could not be obtained is reported as errs.ConflictError.
func (l *Locker) Acquire(ctx context.Context, key string) (ports.Release, error) {
	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	lock, err := l.client.Obtain(waitCtx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(l.retry),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
			return nil, errs.NewConflictErrorWithCause("lock", key, err)
		}
		return nil, err
	}

	return func(ctx context.Context) error {
		err := lock.Release(ctx)
		if errors.Is(err, redislock.ErrLockNotHeld) {
			return nil
		}
		return err
	}, nil
}
