package catalog

import "fmt"

// Version is the monotonically increasing global sequence number assigned
// to every mutation (spec.md Data Model "Version (V)"). Zero is the
// sentinel "never assigned".
type Version uint64

// VersionNone is the sentinel value meaning "no version has been assigned".
const VersionNone Version = 0

// Key is the canonical `<kind>:<scoped-name>` identifier of an object.
// Uniqueness of Key across every kind is an invariant (spec.md I1 implies
// Key identity; see Registry).
type Key struct {
	Kind Kind
	Name string
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.Kind, k.Name)
}

// Payload is implemented by every kind-specific object body. The set of
// implementations is closed (spec.md §9 "tagged variant"); the Delta
// Builder dispatches on Kind(), never on a Go type switch against an open
// interface.
type Payload interface {
	Kind() Kind
}

// Database is the payload for a KindDatabase object.
type Database struct {
	Name    string
	Owner   string
	Comment string
}

func (Database) Kind() Kind { return KindDatabase }

// Column describes a single column of a Table or View.
type Column struct {
	Name string
	Type string
}

// Table is the payload for a KindTable object. When the owning Object's
// Loaded flag is false this is an incomplete shell: only Database/Name are
// populated (spec.md "Lifecycle").
type Table struct {
	Database    string
	Name        string
	Columns     []Column
	NumRows     int64
	NumPartitions int64
}

func (Table) Kind() Kind { return KindTable }

// View is the payload for a KindView object.
type View struct {
	Database   string
	Name       string
	Columns    []Column
	Definition string
}

func (View) Kind() Kind { return KindView }

// Function is the payload for a KindFunction object.
type Function struct {
	Database  string
	Name      string
	Signature string
	BinaryURL string
}

func (Function) Kind() Kind { return KindFunction }

// DataSource is the payload for a KindDataSource object.
type DataSource struct {
	Name      string
	ClassName string
	URI       string
}

func (DataSource) Kind() Kind { return KindDataSource }

// CachePool is the payload for a KindHdfsCachePool object, mirroring the
// HDFS cache pool reader's southbound `list_cache_pools` result shape
// (spec.md §6 Southbound).
type CachePool struct {
	Name      string
	PoolUser  string
	PoolGroup string
	Limit     int64
}

func (CachePool) Kind() Kind { return KindHdfsCachePool }

// Principal is the payload for a KindPrincipal object.
type Principal struct {
	Name   string
	IsRole bool
}

func (Principal) Kind() Kind { return KindPrincipal }

// Privilege is the payload for a KindPrivilege object, owned by a Principal.
type Privilege struct {
	PrincipalName string
	Privilege     string
	Scope         string
}

func (Privilege) Kind() Kind { return KindPrivilege }

// CatalogIdentity is the payload for the synthetic terminal KindCatalog
// record every topic update ends with (spec.md §4.4 step 6, §6).
type CatalogIdentity struct {
	ServiceID string
	Version   Version
}

func (CatalogIdentity) Kind() Kind { return KindCatalog }

// Object is the tagged-variant wrapper every entry in the Registry and
// every record handed to a Sink is represented as (spec.md §9).
type Object struct {
	Key     Key
	Version Version
	// Loaded is only meaningful for heavy kinds (Table/View); always true
	// otherwise (spec.md Data Model "Object (O)").
	Loaded  bool
	Payload Payload

	// lock is non-nil only for heavy kinds and is created once, when the
	// shell is first added, then carried forward across every subsequent
	// replacement of the same Key (spec.md §4.5). It must never be
	// recreated by a replace - only by a fresh add() (§4.2) or rename.
	lock *objectLock
}

// Clone returns a shallow copy of o suitable for handing to a caller as an
// "immutable view" (spec.md §4.2 "Snapshots ... return immutable copies").
// Payload is not deep-copied: every Payload implementation here is treated
// as immutable once constructed - mutators always build a new Payload value
// rather than mutating fields in place.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}

// Tombstone is an entry in the Delete Log: the minimal record of a removal
// needed for coordinators to invalidate their replicas (spec.md §4.3).
type Tombstone struct {
	Key     Key
	Version Version
	Payload Payload
}
