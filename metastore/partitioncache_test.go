package metastore

import (
	"context"
	"testing"
)

type countingClient struct {
	*Fake
	calls int
}

func (c *countingClient) GetPartition(ctx context.Context, db, table string, spec map[string]string) (Partition, error) {
	c.calls++
	return c.Fake.GetPartition(ctx, db, table, spec)
}

func TestPartitionCacheMemoizesRepeatedLookups(t *testing.T) {
	fake := NewFake()
	spec := map[string]string{"year": "2026", "month": "08"}
	fake.PutPartition(Partition{Database: "d", Table: "t", Spec: spec, Location: "/data/d/t/2026/08"})

	client := &countingClient{Fake: fake}
	cache, err := NewPartitionCache(client, 16)
	if err != nil {
		t.Fatalf("NewPartitionCache: %v", err)
	}

	for i := 0; i < 3; i++ {
		p, err := cache.GetPartition(context.Background(), "d", "t", spec)
		if err != nil {
			t.Fatalf("GetPartition: %v", err)
		}
		if p.Location != "/data/d/t/2026/08" {
			t.Fatalf("unexpected partition: %+v", p)
		}
	}

	if client.calls != 1 {
		t.Fatalf("expected exactly 1 southbound call due to caching, got %d", client.calls)
	}
}

func TestPartitionCacheInvalidateDropsMatchingEntries(t *testing.T) {
	fake := NewFake()
	spec := map[string]string{"year": "2026"}
	fake.PutPartition(Partition{Database: "d", Table: "t", Spec: spec, Location: "/data/d/t/2026"})

	client := &countingClient{Fake: fake}
	cache, err := NewPartitionCache(client, 16)
	if err != nil {
		t.Fatalf("NewPartitionCache: %v", err)
	}

	if _, err := cache.GetPartition(context.Background(), "d", "t", spec); err != nil {
		t.Fatalf("GetPartition: %v", err)
	}
	cache.Invalidate("d", "t")

	if _, err := cache.GetPartition(context.Background(), "d", "t", spec); err != nil {
		t.Fatalf("GetPartition after invalidate: %v", err)
	}
	if client.calls != 2 {
		t.Fatalf("expected invalidate to force a second southbound call, got %d calls", client.calls)
	}
}
