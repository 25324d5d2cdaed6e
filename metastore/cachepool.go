package metastore

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/catalogd/catalogd/catalog"
)

// DefaultCachePoolPollInterval is hdfs_cache_pool_poll_interval_s's default
// (spec.md §6 "The cache-pool reader polls at a fixed interval (default
// 60 s)").
const DefaultCachePoolPollInterval = 60 * time.Second

// CachePoolPoller periodically reconciles the catalog's HDFS_CACHE_POOL
// objects against the HDFS client's live list.
type CachePoolPoller struct {
	cat      *catalog.Catalog
	client   HDFSClient
	interval time.Duration
}

func NewCachePoolPoller(cat *catalog.Catalog, client HDFSClient, interval time.Duration) *CachePoolPoller {
	if interval <= 0 {
		interval = DefaultCachePoolPollInterval
	}
	return &CachePoolPoller{cat: cat, client: client, interval: interval}
}

// Run blocks, polling until ctx is canceled.
func (p *CachePoolPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	p.pollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

func (p *CachePoolPoller) pollOnce(ctx context.Context) {
	pools, err := p.client.ListCachePools(ctx)
	if err != nil {
		log.Warn().Err(&catalog.UpstreamUnavailableError{Operation: "list_cache_pools", Cause: err}).
			Msg("cache pool poller: list_cache_pools failed")
		return
	}

	live := make(map[string]struct{}, len(pools))
	for _, pool := range pools {
		live[pool.Name] = struct{}{}
		p.cat.UpsertCachePool(pool.Name, pool.PoolUser, pool.PoolGroup, pool.Limit)
	}
	for _, existing := range p.cat.AllCachePools() {
		name := existing.Payload.(catalog.CachePool).Name
		if _, ok := live[name]; !ok {
			if _, err := p.cat.RemoveCachePool(name); err != nil {
				log.Warn().Err(err).Str("pool", name).Msg("cache pool poller: remove failed")
			}
		}
	}
}
