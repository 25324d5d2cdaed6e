package loader

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/catalogd/catalogd/catalog"
)

// worker drains the priority queue and commits each load through
// replace_if_unchanged (spec.md §4.6). It operates entirely outside F: the
// fetch from the metastore happens with no catalog lock held, and the
// commit acquires F.write only for the instant of the compare-and-swap.
func (l *Loader) worker(id int) {
	defer l.wg.Done()
	for {
		req, ok := l.queue.pop()
		if !ok {
			return
		}
		l.process(req)
	}
}

func (l *Loader) process(req *loadRequest) {
	promise, ok := l.promises.LoadAndDelete(req.key)
	defer l.inflight.Delete(req.key)
	if !ok {
		// No promise is registered for this key, so nothing awaits the
		// result: the request is dropped without fetching, and the shell
		// stays as it is until the next load request.
		log.Warn().Stringer("key", req.key).Msg("loader: dropped request with no pending promise")
		return
	}

	ctx := context.Background()
	payload, err := l.fetch(ctx, req.key)
	if err != nil {
		promise.Set(nil, &catalog.LoadFailedError{Key: req.key, Cause: err})
		return
	}

	committed, replaced := l.cat.ReplaceIfUnchanged(req.key, req.expectedVersion, payload)
	if !replaced {
		var actual catalog.Version
		if committed != nil {
			actual = committed.Version
		}
		conflict := &catalog.ConflictError{Key: req.key, ExpectedVersion: req.expectedVersion, ActualVersion: actual}
		log.Info().Err(conflict).Msg("loader: shell changed before load committed, discarding result")
	}
	promise.Set(committed, nil)
}

func (l *Loader) fetch(ctx context.Context, key catalog.Key) (catalog.Payload, error) {
	parts := splitScopedName(key.Name)
	switch key.Kind {
	case catalog.KindView:
		return l.client.GetView(ctx, parts[0], parts[1])
	default:
		return l.client.GetTable(ctx, parts[0], parts[1])
	}
}

// splitScopedName splits a "<db>.<name>" scoped key name. Table/view names
// never themselves contain a literal ".", so the first occurrence is the
// separator.
func splitScopedName(scoped string) [2]string {
	for i := 0; i < len(scoped); i++ {
		if scoped[i] == '.' {
			return [2]string{scoped[:i], scoped[i+1:]}
		}
	}
	return [2]string{"", scoped}
}
