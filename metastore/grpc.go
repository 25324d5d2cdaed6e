package metastore

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/catalogd/catalogd/catalog"
)

const serviceMethodPrefix = "/catalogd.metastore.v1.MetastoreService/"

// callSubtype selects the msgpack gRPC codec registered by the encoding
// package, letting this transport exchange plain Go structs without a
// protobuf code-generation step.
var callSubtype = grpc.CallContentSubtype("msgpack")

// GRPCClient implements Client and HDFSClient over a gRPC connection to a
// remote metastore-proxy service (spec.md §6 "A pluggable metastore
// client").
type GRPCClient struct {
	conn *grpc.ClientConn
}

// DialGRPC connects to target using an insecure transport. For other
// transport settings (mTLS, etc.), build a *grpc.ClientConn with the
// desired grpc.DialOption set and wrap it with NewGRPCClient.
func DialGRPC(target string) (*GRPCClient, error) {
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("metastore: dialing %s: %w", target, err)
	}
	return NewGRPCClient(conn), nil
}

func NewGRPCClient(conn *grpc.ClientConn) *GRPCClient {
	return &GRPCClient{conn: conn}
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

type listDatabasesReq struct{}
type listDatabasesResp struct{ Names []string }

func (c *GRPCClient) ListDatabases(ctx context.Context) ([]string, error) {
	var resp listDatabasesResp
	if err := c.invoke(ctx, "ListDatabases", &listDatabasesReq{}, &resp); err != nil {
		return nil, err
	}
	return resp.Names, nil
}

type listTablesReq struct{ Database string }
type listTablesResp struct{ Names []string }

func (c *GRPCClient) ListTables(ctx context.Context, db string) ([]string, error) {
	var resp listTablesResp
	if err := c.invoke(ctx, "ListTables", &listTablesReq{Database: db}, &resp); err != nil {
		return nil, err
	}
	return resp.Names, nil
}

type getDatabaseReq struct{ Database string }

func (c *GRPCClient) GetDatabase(ctx context.Context, db string) (catalog.Database, error) {
	var resp catalog.Database
	err := c.invoke(ctx, "GetDatabase", &getDatabaseReq{Database: db}, &resp)
	return resp, err
}

type getTableReq struct{ Database, Table string }

func (c *GRPCClient) GetTable(ctx context.Context, db, table string) (catalog.Table, error) {
	var resp catalog.Table
	err := c.invoke(ctx, "GetTable", &getTableReq{Database: db, Table: table}, &resp)
	return resp, err
}

type getViewReq struct{ Database, View string }

func (c *GRPCClient) GetView(ctx context.Context, db, view string) (catalog.View, error) {
	var resp catalog.View
	err := c.invoke(ctx, "GetView", &getViewReq{Database: db, View: view}, &resp)
	return resp, err
}

type listFunctionsReq struct{ Database string }
type listFunctionsResp struct{ Names []string }

func (c *GRPCClient) ListFunctions(ctx context.Context, db string) ([]string, error) {
	var resp listFunctionsResp
	if err := c.invoke(ctx, "ListFunctions", &listFunctionsReq{Database: db}, &resp); err != nil {
		return nil, err
	}
	return resp.Names, nil
}

type getFunctionReq struct{ Database, Function string }

func (c *GRPCClient) GetFunction(ctx context.Context, db, fn string) (catalog.Function, error) {
	var resp catalog.Function
	err := c.invoke(ctx, "GetFunction", &getFunctionReq{Database: db, Function: fn}, &resp)
	return resp, err
}

type tableExistsReq struct{ Database, Table string }
type tableExistsResp struct{ Exists bool }

func (c *GRPCClient) TableExists(ctx context.Context, db, table string) (bool, error) {
	var resp tableExistsResp
	err := c.invoke(ctx, "TableExists", &tableExistsReq{Database: db, Table: table}, &resp)
	return resp.Exists, err
}

type getPartitionReq struct {
	Database, Table string
	Spec            map[string]string
}

func (c *GRPCClient) GetPartition(ctx context.Context, db, table string, spec map[string]string) (Partition, error) {
	var resp Partition
	err := c.invoke(ctx, "GetPartition", &getPartitionReq{Database: db, Table: table, Spec: spec}, &resp)
	return resp, err
}

type listCachePoolsReq struct{}
type listCachePoolsResp struct{ Pools []catalog.CachePool }

func (c *GRPCClient) ListCachePools(ctx context.Context) ([]catalog.CachePool, error) {
	var resp listCachePoolsResp
	if err := c.invoke(ctx, "ListCachePools", &listCachePoolsReq{}, &resp); err != nil {
		return nil, err
	}
	return resp.Pools, nil
}

func (c *GRPCClient) invoke(ctx context.Context, method string, req, resp any) error {
	return c.conn.Invoke(ctx, serviceMethodPrefix+method, req, resp, callSubtype)
}
