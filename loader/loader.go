// Package loader implements the Table Loader (spec.md §4.6): a bounded
// worker pool that materializes incomplete TABLE/VIEW shells against the
// upstream metastore, deduplicating concurrent requests for the same key
// and committing results back through catalog.ReplaceIfUnchanged.
package loader

import (
	"context"
	"sync"
	"time"

	"github.com/jizhuozhi/go-future"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/catalogd/catalogd/catalog"
)

// MetastoreClient is the narrow southbound surface the loader needs
// (spec.md §6 Southbound "get_table", plus the view-definition lookup
// views share with tables per the source system's modeling of views as
// tables with a definition).
type MetastoreClient interface {
	GetTable(ctx context.Context, db, table string) (catalog.Table, error)
	GetView(ctx context.Context, db, view string) (catalog.View, error)
}

// Loader is the Table Loader component.
type Loader struct {
	cat    *catalog.Catalog
	client MetastoreClient

	queue    *priorityQueue
	inflight *xsync.MapOf[catalog.Key, *future.Future[*catalog.Object]]
	promises *xsync.MapOf[catalog.Key, *future.Promise[*catalog.Object]]

	numWorkers int
	wg         sync.WaitGroup
}

// New constructs a Loader with numWorkers background fetch goroutines
// (spec.md §6 "num_loading_threads").
func New(cat *catalog.Catalog, client MetastoreClient, numWorkers int) *Loader {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Loader{
		cat:        cat,
		client:     client,
		queue:      newPriorityQueue(),
		inflight:   xsync.NewMapOf[catalog.Key, *future.Future[*catalog.Object]](),
		promises:   xsync.NewMapOf[catalog.Key, *future.Promise[*catalog.Object]](),
		numWorkers: numWorkers,
	}
}

// Start launches the worker pool. Call Stop to drain and shut it down.
func (l *Loader) Start() {
	for i := 0; i < l.numWorkers; i++ {
		l.wg.Add(1)
		go l.worker(i)
	}
}

// Stop closes the queue and waits for in-flight workers to drain.
func (l *Loader) Stop() {
	l.queue.close()
	l.wg.Wait()
}

// QueueDepth reports the number of requests waiting to be picked up by a
// worker, exposed as a loader queue-depth metric.
func (l *Loader) QueueDepth() int {
	return l.queue.depth()
}

// LoadAsync is idempotent: it returns the existing future for key if a
// load is already in flight (spec.md §4.6 "load_async(K) -> Future<O>").
// A non-nil *catalog.AlreadyLoadingError accompanies the future whenever it
// is joining an in-flight load rather than starting a new one; callers that
// don't care are free to ignore it, since the returned future still
// resolves to the same result either way.
func (l *Loader) LoadAsync(key catalog.Key) (*future.Future[*catalog.Object], error) {
	if existing, ok := l.inflight.Load(key); ok {
		return existing, &catalog.AlreadyLoadingError{Key: key}
	}

	shell, ok := l.cat.GetObject(key)
	if !ok {
		return nil, &catalog.NotFoundError{Kind: key.Kind, Name: key.Name}
	}

	promise := future.NewPromise[*catalog.Object]()
	fut := promise.Future()
	actual, loaded := l.inflight.LoadOrStore(key, fut)
	if loaded {
		// Lost the race to another caller's LoadAsync between the Load
		// check above and here; use theirs.
		return actual, &catalog.AlreadyLoadingError{Key: key}
	}

	l.promises.Store(key, promise)
	l.queue.push(&loadRequest{
		key:             key,
		expectedVersion: shell.Version,
		priority:        0,
		enqueuedAt:      time.Now(),
	})
	return fut, nil
}

// Prioritize raises key to the front of the queue (spec.md §4.6).
func (l *Loader) Prioritize(key catalog.Key) {
	l.queue.prioritize(key)
}

// BackgroundLoad enqueues key at normal priority; used on startup and on
// invalidation when background loading is enabled (spec.md §4.6).
func (l *Loader) BackgroundLoad(key catalog.Key) {
	_, _ = l.LoadAsync(key)
}

// GetOrLoad returns the live object immediately if it is already loaded;
// otherwise it starts (or joins) a load, prioritizes it since the caller
// is blocked awaiting it, and returns the committed value outside F
// (spec.md §4.6 "get_or_load(K)").
func (l *Loader) GetOrLoad(ctx context.Context, key catalog.Key) (*catalog.Object, error) {
	if obj, ok := l.cat.GetObject(key); ok && obj.Loaded {
		return obj, nil
	}

	fut, err := l.LoadAsync(key)
	if _, alreadyLoading := err.(*catalog.AlreadyLoadingError); err != nil && !alreadyLoading {
		return nil, err
	}
	l.Prioritize(key)

	obj, err := fut.Get()
	if err != nil {
		return nil, err
	}
	return obj, nil
}
