package metastore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/catalogd/catalogd/catalog"
)

// PartitionCache memoizes get_partition results, since partition metadata
// is immutable once a partition exists and coordinators re-request the
// same partition spec far more often than new ones appear.
type PartitionCache struct {
	client Client
	cache  *lru.Cache[uint64, Partition]
}

// NewPartitionCache wraps client with an LRU of the given size, keyed by a
// hash of (db, table, spec) so lookups avoid retaining the full key text.
func NewPartitionCache(client Client, size int) (*PartitionCache, error) {
	if size < 1 {
		size = 1024
	}
	c, err := lru.New[uint64, Partition](size)
	if err != nil {
		return nil, fmt.Errorf("metastore: allocating partition cache: %w", err)
	}
	return &PartitionCache{client: client, cache: c}, nil
}

func (pc *PartitionCache) GetPartition(ctx context.Context, db, table string, spec map[string]string) (Partition, error) {
	key := xxhash.Sum64String(partitionCacheKey(db, table, spec))
	if p, ok := pc.cache.Get(key); ok {
		return p, nil
	}
	p, err := pc.client.GetPartition(ctx, db, table, spec)
	if err != nil {
		if _, notFound := err.(*catalog.NotFoundError); notFound {
			return Partition{}, err
		}
		return Partition{}, &catalog.UpstreamUnavailableError{Operation: "get_partition", Cause: err}
	}
	pc.cache.Add(key, p)
	return p, nil
}

// Invalidate drops every cached partition for a table, so the next lookup
// for it goes to the client.
func (pc *PartitionCache) Invalidate(db, table string) {
	prefix := db + "." + table + "."
	for _, key := range pc.cache.Keys() {
		p, ok := pc.cache.Peek(key)
		if ok && strings.HasPrefix(p.Database+"."+p.Table+".", prefix) {
			pc.cache.Remove(key)
		}
	}
}

// partitionCacheKey builds a deterministic string key from a partition
// spec map by sorting its keys before joining.
func partitionCacheKey(db, table string, spec map[string]string) string {
	names := make([]string, 0, len(spec))
	for k := range spec {
		names = append(names, k)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString(db)
	b.WriteByte('.')
	b.WriteString(table)
	for _, k := range names {
		b.WriteByte('/')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(spec[k])
	}
	return b.String()
}
