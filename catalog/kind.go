package catalog

// Kind identifies the category of a schema object. Every Object carries
// exactly one Kind and every Key embeds its Kind as a prefix.
//
// HARD RULE: Kind is defined HERE and ONLY HERE. Conversions to any wire
// representation (topic payload shaping, admin JSON) go through the
// MinimalPayload/functions in this package, never a direct int cast.
type Kind int

const (
	KindUnknown Kind = iota
	KindDatabase
	KindTable
	KindView
	KindFunction
	KindDataSource
	KindHdfsCachePool
	KindPrincipal
	KindPrivilege
	KindCatalog
)

func (k Kind) String() string {
	switch k {
	case KindDatabase:
		return "DATABASE"
	case KindTable:
		return "TABLE"
	case KindView:
		return "VIEW"
	case KindFunction:
		return "FUNCTION"
	case KindDataSource:
		return "DATA_SOURCE"
	case KindHdfsCachePool:
		return "HDFS_CACHE_POOL"
	case KindPrincipal:
		return "PRINCIPAL"
	case KindPrivilege:
		return "PRIVILEGE"
	case KindCatalog:
		return "CATALOG"
	default:
		return "UNKNOWN"
	}
}

// IsHeavy reports whether objects of this kind carry a per-object lock and
// may exist as an unloaded shell (spec.md Data Model, "Object (O)").
func (k Kind) IsHeavy() bool {
	return k == KindTable || k == KindView
}

var kindByName = map[string]Kind{
	"DATABASE":        KindDatabase,
	"TABLE":           KindTable,
	"VIEW":            KindView,
	"FUNCTION":        KindFunction,
	"DATA_SOURCE":     KindDataSource,
	"HDFS_CACHE_POOL": KindHdfsCachePool,
	"PRINCIPAL":       KindPrincipal,
	"PRIVILEGE":       KindPrivilege,
	"CATALOG":         KindCatalog,
}

// ParseKind converts a wire/admin kind name back to a Kind, used by the
// admin introspection endpoint's /object?kind=... lookup.
func ParseKind(s string) (Kind, bool) {
	k, ok := kindByName[s]
	return k, ok
}
