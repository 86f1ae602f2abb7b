package provisioning

import (
	"context"
	"errors"
	"sync"
)

// Locker serializes event processing per subscription id, so two notifications
// for the same subscription never read the same snapshot and race their writes.
type Locker interface {
	// Lock blocks until the lock for id is held or ctx is done.
	// The returned func releases the lock and is safe to call more than once.
	Lock(ctx context.Context, id int64) (unlock func(), err error)
}

// MemoryLocker is an in-process keyed mutex. Entries are dropped once the last
// waiter releases, so the map only holds ids that are in flight.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[int64]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

// NewMemoryLocker creates an empty MemoryLocker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[int64]*keyLock)}
}

// Lock implements Locker.
func (l *MemoryLocker) Lock(ctx context.Context, id int64) (func(), error) {
	l.mu.Lock()
	k, ok := l.locks[id]
	if !ok {
		k = &keyLock{sem: make(chan struct{}, 1)}
		l.locks[id] = k
	}
	k.refs++
	l.mu.Unlock()

	select {
	case k.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(id, k)
		return nil, errors.Join(ErrLockUnavailable, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-k.sem
			l.release(id, k)
		})
	}, nil
}

// InFlight returns the number of ids currently locked or awaited.
func (l *MemoryLocker) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func (l *MemoryLocker) release(id int64, k *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k.refs--
	if k.refs == 0 {
		delete(l.locks, id)
	}
}
