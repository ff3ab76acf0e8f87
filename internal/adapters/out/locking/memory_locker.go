// Package locking provides a process-local ports.Locker for single-instance
// deployments and the operator CLI.
package locking

import (
	"context"
	"sync"
	"time"

	"replenishment/internal/core/ports"
	"replenishment/internal/pkg/errs"
)

type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*entry
	wait  time.Duration
}

// entry is dropped from the map once neither the holder nor any waiter
// references it.
type entry struct {
	sem  chan struct{}
	refs int
}

// NewMemoryLocker returns a locker whose Acquire gives up after wait.
func NewMemoryLocker(wait time.Duration) *MemoryLocker {
	if wait <= 0 {
		wait = 10 * time.Second
	}
	return &MemoryLocker{
		locks: make(map[string]*entry),
		wait:  wait,
	}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string) (ports.Release, error) {
	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	e := l.retain(key)
	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, errs.NewConflictErrorWithCause("lock", key, ctx.Err())
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-e.sem
			l.release(key, e)
		})
		return nil
	}, nil
}

func (l *MemoryLocker) retain(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.locks[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	return e
}

func (l *MemoryLocker) release(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}
