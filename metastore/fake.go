package metastore

import (
	"context"
	"sync"

	"github.com/catalogd/catalogd/catalog"
)

// Fake is an in-memory Client and HDFSClient for tests (spec.md §6's
// pluggable clients need a seam for catalog tests that never touch a real
// metastore).
type Fake struct {
	mu         sync.Mutex
	databases  map[string]catalog.Database
	tables     map[string]catalog.Table
	views      map[string]catalog.View
	functions  map[string]catalog.Function
	partitions map[string]Partition
	cachePools []catalog.CachePool
}

func NewFake() *Fake {
	return &Fake{
		databases:  make(map[string]catalog.Database),
		tables:     make(map[string]catalog.Table),
		views:      make(map[string]catalog.View),
		functions:  make(map[string]catalog.Function),
		partitions: make(map[string]Partition),
	}
}

func (f *Fake) PutDatabase(db catalog.Database) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.databases[db.Name] = db
}

func (f *Fake) PutTable(t catalog.Table) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[t.Database+"."+t.Name] = t
}

func (f *Fake) PutView(v catalog.View) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views[v.Database+"."+v.Name] = v
}

func (f *Fake) PutFunction(fn catalog.Function) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.functions[fn.Database+"."+fn.Name] = fn
}

func (f *Fake) PutCachePools(pools []catalog.CachePool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cachePools = pools
}

func (f *Fake) ListDatabases(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.databases))
	for name := range f.databases {
		out = append(out, name)
	}
	return out, nil
}

func (f *Fake) ListTables(ctx context.Context, db string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for key, t := range f.tables {
		if t.Database == db {
			out = append(out, key[len(db)+1:])
		}
	}
	return out, nil
}

func (f *Fake) GetDatabase(ctx context.Context, db string) (catalog.Database, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.databases[db]
	if !ok {
		return catalog.Database{}, &catalog.NotFoundError{Kind: catalog.KindDatabase, Name: db}
	}
	return d, nil
}

func (f *Fake) GetTable(ctx context.Context, db, table string) (catalog.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tables[db+"."+table]
	if !ok {
		return catalog.Table{}, &catalog.NotFoundError{Kind: catalog.KindTable, Name: db + "." + table}
	}
	return t, nil
}

func (f *Fake) GetView(ctx context.Context, db, view string) (catalog.View, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.views[db+"."+view]
	if !ok {
		return catalog.View{}, &catalog.NotFoundError{Kind: catalog.KindView, Name: db + "." + view}
	}
	return v, nil
}

func (f *Fake) ListFunctions(ctx context.Context, db string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for key, fn := range f.functions {
		if fn.Database == db {
			out = append(out, key[len(db)+1:])
		}
	}
	return out, nil
}

func (f *Fake) GetFunction(ctx context.Context, db, fn string) (catalog.Function, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.functions[db+"."+fn]
	if !ok {
		return catalog.Function{}, &catalog.NotFoundError{Kind: catalog.KindFunction, Name: db + "." + fn}
	}
	return v, nil
}

func (f *Fake) TableExists(ctx context.Context, db, table string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tables[db+"."+table]
	return ok, nil
}

func (f *Fake) GetPartition(ctx context.Context, db, table string, spec map[string]string) (Partition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.partitions[partitionCacheKey(db, table, spec)]
	if !ok {
		return Partition{}, &catalog.NotFoundError{Kind: catalog.KindTable, Name: db + "." + table}
	}
	return p, nil
}

func (f *Fake) PutPartition(p Partition) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.partitions[partitionCacheKey(p.Database, p.Table, p.Spec)] = p
}

func (f *Fake) ListCachePools(ctx context.Context) ([]catalog.CachePool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]catalog.CachePool, len(f.cachePools))
	copy(out, f.cachePools)
	return out, nil
}
