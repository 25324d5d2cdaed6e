package catalog

import (
	"context"
	"fmt"
	"time"
)

// Default table_lock_timeout_ms / table_lock_retry_ms (spec.md §6).
const (
	DefaultObjectLockTimeout = 7_200_000 * time.Millisecond
	DefaultObjectLockRetry   = 10 * time.Millisecond
)

// tryLockObject is the canonical lock-acquisition primitive (spec.md §4.5).
// It acquires F.write first, then attempts the object's per-object lock; on
// failure it releases F.write, sleeps retry, and tries again. This ordering
// - always take F before the object lock, and never hold F across the
// sleep - prevents the deadlock class where an F.write holder waits on an
// object a reader needs F to even look up.
func (c *Catalog) tryLockObject(ctx context.Context, key Key, timeout, retry time.Duration) (*Object, error) {
	deadline := time.Now().Add(timeout)
	for {
		c.mu.Lock()
		obj, ok := c.objects[key]
		if !ok {
			c.mu.Unlock()
			return nil, &NotFoundError{Kind: key.Kind, Name: key.Name}
		}
		if obj.lock == nil {
			c.mu.Unlock()
			return nil, fmt.Errorf("catalog: %s has no per-object lock", key)
		}
		acquired := obj.lock.tryAcquire()
		c.mu.Unlock()
		if acquired {
			return obj, nil
		}
		if time.Now().After(deadline) {
			return nil, &LockTimeoutError{Key: key, Timeout: timeout}
		}
		select {
		case <-ctx.Done():
			return nil, &LockTimeoutError{Key: key, Timeout: timeout}
		case <-time.After(retry):
		}
	}
}

// unlockObject releases a lock obtained via tryLockObject.
func (c *Catalog) unlockObject(obj *Object) {
	obj.lock.release()
}

// ReplaceIfUnchanged is the sole commit path for background loads
// (spec.md §4.5). It acquires F.write, and installs newPayload under key
// only if the live object's version still equals expectedVersion.
func (c *Catalog) ReplaceIfUnchanged(key Key, expectedVersion Version, newPayload Payload) (*Object, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.objects[key]
	if !ok || current.Version != expectedVersion {
		if ok {
			return current.Clone(), false
		}
		return nil, false
	}

	replaced := &Object{
		Key:     key,
		Version: c.incrementVersion(),
		Loaded:  true,
		Payload: newPayload,
		lock:    current.lock,
	}
	c.objects[key] = replaced
	return replaced.Clone(), true
}
