// Package metastore implements the southbound surface described by
// spec.md §6: a pluggable metastore client and a pluggable HDFS client,
// plus a cache-pool poller and a partition-result cache built on top of
// them.
package metastore

import (
	"context"

	"github.com/catalogd/catalogd/catalog"
)

// Client is the pluggable metastore client (spec.md §6 Southbound).
type Client interface {
	ListDatabases(ctx context.Context) ([]string, error)
	ListTables(ctx context.Context, db string) ([]string, error)
	GetDatabase(ctx context.Context, db string) (catalog.Database, error)
	GetTable(ctx context.Context, db, table string) (catalog.Table, error)
	GetView(ctx context.Context, db, view string) (catalog.View, error)
	ListFunctions(ctx context.Context, db string) ([]string, error)
	GetFunction(ctx context.Context, db, fn string) (catalog.Function, error)
	TableExists(ctx context.Context, db, table string) (bool, error)
	GetPartition(ctx context.Context, db, table string, spec map[string]string) (Partition, error)
}

// HDFSClient is the pluggable HDFS client (spec.md §6 Southbound).
type HDFSClient interface {
	ListCachePools(ctx context.Context) ([]catalog.CachePool, error)
}

// Partition is the result shape of get_partition.
type Partition struct {
	Database   string
	Table      string
	Spec       map[string]string
	Location   string
	NumRows    int64
	FileFormat string
}
