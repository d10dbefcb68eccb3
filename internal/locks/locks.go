// Package locks provides named distributed mutual exclusion with
// non-blocking acquisition. Rotation of provider credentials is the only
// consumer; contention fails immediately rather than waiting.
package locks

import (
	"context"
	"errors"
	"sync"
)

var ErrLockHeld = errors.New("lock_held")

// Locker acquires named locks. TryAcquire never blocks: if the lock is held
// elsewhere it returns ErrLockHeld. The returned release function is safe to
// call exactly once and must be called on every path.
type Locker interface {
	TryAcquire(ctx context.Context, name string) (release func(), err error)
}

// MemoryLocker is a process-local Locker for tests.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]bool)}
}

func (l *MemoryLocker) TryAcquire(ctx context.Context, name string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[name] {
		return nil, ErrLockHeld
	}
	l.held[name] = true
	return func() {
		l.mu.Lock()
		delete(l.held, name)
		l.mu.Unlock()
	}, nil
}
