package catalog

import "sync"

// objectLock guards the internals of a single heavy object (spec.md §4.5).
//
// The spec calls for a reentrant mutex; Go's sync.Mutex is not reentrant and
// the stdlib has no fair, timed, reentrant primitive to reach for instead.
// Reentrancy is unnecessary here because of a narrower invariant this
// implementation adds: tryLockObject (see lock.go) is the ONLY code path
// that ever acquires an objectLock, and it is never called recursively on
// the same goroutine. A plain, non-reentrant sync.Mutex with TryLock
// therefore satisfies every caller (spec.md §9 "Lock-order discipline").
type objectLock struct {
	mu sync.Mutex
}

func newObjectLock() *objectLock {
	return &objectLock{}
}

func (l *objectLock) tryAcquire() bool {
	return l.mu.TryLock()
}

func (l *objectLock) release() {
	l.mu.Unlock()
}
