// Package catalog implements the authoritative, versioned metadata cache
// described by the spec: a monotonically-versioned object registry, a delete
// log, a topic-update log with starvation avoidance, the global/per-object
// locking discipline, the delta-snapshot engine and the SYNC_DDL barrier.
package catalog

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// Config carries every tunable named in spec.md §6 "Configuration
// (enumerated)" that the catalog package itself consumes.
type Config struct {
	// MaxSkippedTopicUpdates is S (spec.md I5). Default 2.
	MaxSkippedTopicUpdates uint32
	// TopicUpdateLogRetention is the retention window of D, measured in
	// catalog versions: an entry is garbage-collected once its
	// last_sent_topic is more than this many versions below the newest
	// committed topic version (spec.md Data Model "Topic Update Log (D)").
	TopicUpdateLogRetention uint64
}

// DefaultConfig mirrors the teacher's package-level configuration defaults
// (cfg.Config) translated to this package's narrower Config.
func DefaultConfig() Config {
	return Config{
		MaxSkippedTopicUpdates:  2,
		TopicUpdateLogRetention: 10000,
	}
}

// Catalog is the versioned metadata cache: the Version Counter (A), Object
// Registry (B), Delete Log (C) and Topic Update Log (D), all guarded
// together by the Global Version Lock (F, spec.md §4.1).
type Catalog struct {
	// mu is F: a fair reader/writer lock. Go's sync.RWMutex blocks new
	// readers once a writer is waiting, which is the fairness guarantee
	// spec.md §4.1 asks for (it prevents a heavy stream of readers from
	// starving the writer side, and vice versa a single long writer cannot
	// starve queued readers beyond its own critical section).
	mu sync.RWMutex

	cfg Config

	// version is the current_version cursor (spec.md Data Model
	// "Cursors"), incremented under mu.
	version Version

	objects map[Key]*Object

	// Secondary indices implementing strict ownership (spec.md §9
	// "Cyclic/shared ownership"). Values are the owned object's simple
	// (unscoped) name.
	dbTables        map[string]map[string]struct{}
	dbViews         map[string]map[string]struct{}
	dbFunctions     map[string]map[string]struct{}
	principalPrivs  map[string]map[string]struct{}

	deleteLog *deleteLog
	topicLog  *topicUpdateLog

	// lastPublishedTopic is the lock-free atomic cursor coordinators
	// observe (spec.md Data Model "Cursors").
	lastPublishedTopic atomic.Uint64

	serviceID string

	barrier *publishBarrier

	// onDatabaseTouched, if set, is invoked once per distinct database
	// touched by a committed delta (spec.md §4.4 CommitDelta). Wired to
	// notify.Hub.Signal by the process that constructs the Catalog; kept
	// as a plain func rather than an import of the notify package so this
	// package has no northbound dependency.
	onDatabaseTouched func(database string, version uint64)
}

// SetDatabaseTouchedHook registers the callback CommitDelta invokes for
// every database with at least one published or deleted record in a
// committed delta. Intended for wiring notify.Hub.Signal.
func (c *Catalog) SetDatabaseTouchedHook(fn func(database string, version uint64)) {
	c.onDatabaseTouched = fn
}

// New constructs an empty Catalog. serviceID is the immutable catalog
// service identity carried on every synthetic CATALOG record
// (spec.md §6 Northbound).
func New(serviceID string, cfg Config) *Catalog {
	if cfg.MaxSkippedTopicUpdates == 0 && cfg.TopicUpdateLogRetention == 0 {
		cfg = DefaultConfig()
	}
	c := &Catalog{
		cfg:            cfg,
		objects:        make(map[Key]*Object),
		dbTables:       make(map[string]map[string]struct{}),
		dbViews:        make(map[string]map[string]struct{}),
		dbFunctions:    make(map[string]map[string]struct{}),
		principalPrivs: make(map[string]map[string]struct{}),
		deleteLog:      newDeleteLog(),
		topicLog:       newTopicUpdateLog(),
		serviceID:      serviceID,
		barrier:        newPublishBarrier(),
	}
	log.Info().Str("service_id", serviceID).Msg("catalog initialized")
	return c
}

// CurrentVersion returns current_version under F.read.
func (c *Catalog) CurrentVersion() Version {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// LastPublishedTopic returns the lock-free published-topic cursor.
func (c *Catalog) LastPublishedTopic() Version {
	return Version(c.lastPublishedTopic.Load())
}

// ServiceID returns the immutable catalog service identity.
func (c *Catalog) ServiceID() string {
	return c.serviceID
}

// incrementVersion is the Version Counter (A): strictly increasing, only
// ever called with mu held for write (spec.md §4.1).
func (c *Catalog) incrementVersion() Version {
	c.version++
	return c.version
}

// Stats is a point-in-time snapshot of registry and log sizes, consumed by
// the telemetry collector (spec.md §2.5 observability).
type Stats struct {
	ObjectsByKind      map[Kind]int
	CurrentVersion     Version
	LastPublishedTopic Version
	DeleteLogSize      int
	TopicUpdateLogSize int
}

// Stats takes F.read and reports current sizes. It is the only place in the
// package that walks the full object map just to count, so it is deliberately
// kept off the hot path and called only by the periodic collector.
func (c *Catalog) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	byKind := make(map[Kind]int)
	for key := range c.objects {
		byKind[key.Kind]++
	}

	return Stats{
		ObjectsByKind:      byKind,
		CurrentVersion:     c.version,
		LastPublishedTopic: Version(c.lastPublishedTopic.Load()),
		DeleteLogSize:      c.deleteLog.len(),
		TopicUpdateLogSize: c.topicLog.len(),
	}
}

func ownedSet(index map[string]map[string]struct{}, owner string) map[string]struct{} {
	set, ok := index[owner]
	if !ok {
		set = make(map[string]struct{})
		index[owner] = set
	}
	return set
}
