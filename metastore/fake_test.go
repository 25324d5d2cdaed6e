package metastore

import (
	"context"
	"testing"

	"github.com/catalogd/catalogd/catalog"
)

func TestFakeGetTableRoundTrip(t *testing.T) {
	f := NewFake()
	f.PutDatabase(catalog.Database{Name: "d"})
	f.PutTable(catalog.Table{Database: "d", Name: "t", NumRows: 42})

	got, err := f.GetTable(context.Background(), "d", "t")
	if err != nil {
		t.Fatalf("GetTable: %v", err)
	}
	if got.NumRows != 42 {
		t.Fatalf("expected NumRows 42, got %d", got.NumRows)
	}

	if _, err := f.GetTable(context.Background(), "d", "missing"); err == nil {
		t.Fatal("expected NotFoundError for missing table")
	} else if _, ok := err.(*catalog.NotFoundError); !ok {
		t.Fatalf("expected *catalog.NotFoundError, got %T", err)
	}
}

func TestFakeTableExists(t *testing.T) {
	f := NewFake()
	f.PutTable(catalog.Table{Database: "d", Name: "t"})

	exists, err := f.TableExists(context.Background(), "d", "t")
	if err != nil || !exists {
		t.Fatalf("expected table to exist, got exists=%v err=%v", exists, err)
	}

	exists, err = f.TableExists(context.Background(), "d", "nope")
	if err != nil || exists {
		t.Fatalf("expected table to not exist, got exists=%v err=%v", exists, err)
	}
}

func TestFakeListCachePools(t *testing.T) {
	f := NewFake()
	f.PutCachePools([]catalog.CachePool{{Name: "pool1", PoolUser: "u", Limit: 100}})

	pools, err := f.ListCachePools(context.Background())
	if err != nil {
		t.Fatalf("ListCachePools: %v", err)
	}
	if len(pools) != 1 || pools[0].Name != "pool1" {
		t.Fatalf("unexpected pools: %+v", pools)
	}
}

func TestFakeGetPartition(t *testing.T) {
	f := NewFake()
	spec := map[string]string{"year": "2026"}
	f.PutPartition(Partition{Database: "d", Table: "t", Spec: spec, Location: "/data/d/t/2026", NumRows: 10})

	got, err := f.GetPartition(context.Background(), "d", "t", spec)
	if err != nil {
		t.Fatalf("GetPartition: %v", err)
	}
	if got.Location != "/data/d/t/2026" {
		t.Fatalf("unexpected partition: %+v", got)
	}

	if _, err := f.GetPartition(context.Background(), "d", "t", map[string]string{"year": "1999"}); err == nil {
		t.Fatal("expected NotFoundError for unknown partition spec")
	}
}
