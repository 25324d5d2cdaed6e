package catalog

// MinimalPayload is the identity-only shape published on the MINIMAL topic
// namespace (spec.md §6 "For MINIMAL, the mapping object-kind -> minimal
// payload is..."). Names holds one entry for singly-named kinds
// (DATABASE, FUNCTION) and two for db-scoped kinds (TABLE, VIEW).
type MinimalPayload struct {
	K     Kind
	Names []string
}

func (m MinimalPayload) Kind() Kind { return m.K }

// ShapeMinimal converts a full payload to its MINIMAL-topic shape. The
// second return value is false for kinds the MINIMAL topic never carries
// (DATA_SOURCE, HDFS_CACHE_POOL); callers must skip those when publishing
// to the MINIMAL namespace.
func ShapeMinimal(p Payload) (Payload, bool) {
	switch v := p.(type) {
	case Database:
		return MinimalPayload{K: KindDatabase, Names: []string{v.Name}}, true
	case Table:
		return MinimalPayload{K: KindTable, Names: []string{v.Database, v.Name}}, true
	case View:
		return MinimalPayload{K: KindView, Names: []string{v.Database, v.Name}}, true
	case Function:
		return MinimalPayload{K: KindFunction, Names: []string{v.Name}}, true
	case DataSource, CachePool:
		return nil, false
	default:
		// PRINCIPAL/PRIVILEGE/CATALOG: no useful minimization.
		return p, true
	}
}
