package catalog

import (
	"fmt"
	"time"
)

// NotFoundError reports that no live object exists for a key of the given
// kind (spec.md §7 "NotFound(db|table|function|principal)").
type NotFoundError struct {
	Kind Kind
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// AlreadyLoadingError accompanies the future load_async returns whenever the
// caller is joining an in-flight load rather than starting a new one
// (spec.md §4.6); the future it's paired with is still valid and resolves
// to the same result, so callers that only want the future may ignore it.
type AlreadyLoadingError struct {
	Key Key
}

func (e *AlreadyLoadingError) Error() string {
	return fmt.Sprintf("load already in flight for %s", e.Key)
}

// LoadFailedError wraps an upstream metastore failure encountered while
// materializing a heavy object (spec.md §7 "LoadFailed(cause)").
type LoadFailedError struct {
	Key   Key
	Cause error
}

func (e *LoadFailedError) Error() string {
	return fmt.Sprintf("load failed for %s: %v", e.Key, e.Cause)
}

func (e *LoadFailedError) Unwrap() error { return e.Cause }

// ConflictError reports that a compare-by-version operation observed a
// version mismatch (spec.md §7 "Conflict(version_changed)", P5).
type ConflictError struct {
	Key             Key
	ExpectedVersion Version
	ActualVersion   Version
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict on %s: expected %d, found %d", e.Key, e.ExpectedVersion, e.ActualVersion)
}

// LockTimeoutError reports that tryLockObject could not obtain both the
// global write lock and the per-object lock before its deadline
// (spec.md §4.5, §7 "LockTimeout").
type LockTimeoutError struct {
	Key     Key
	Timeout time.Duration
}

func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s acquiring lock for %s", e.Timeout, e.Key)
}

// PartialFetchQueueTimeoutError reports that the partial-fetch gate could
// not admit a caller before its deadline (spec.md §4.8, §7).
type PartialFetchQueueTimeoutError struct {
	QueueDepth int
	Timeout    time.Duration
}

func (e *PartialFetchQueueTimeoutError) Error() string {
	return fmt.Sprintf("partial fetch queue timeout after %s (queue depth %d)", e.Timeout, e.QueueDepth)
}

// SyncDDLTimeoutError reports that a SYNC_DDL wait exhausted its attempt
// budget without observing coverage for every requested record
// (spec.md §4.7 step 3, §7).
type SyncDDLTimeoutError struct {
	Attempts int
}

func (e *SyncDDLTimeoutError) Error() string {
	return fmt.Sprintf("sync_ddl wait exhausted after %d topic publishes", e.Attempts)
}

// UpstreamUnavailableError wraps a southbound metastore/HDFS client failure
// (spec.md §7).
type UpstreamUnavailableError struct {
	Operation string
	Cause     error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("upstream unavailable during %s: %v", e.Operation, e.Cause)
}

func (e *UpstreamUnavailableError) Unwrap() error { return e.Cause }
