package catalog

import (
	"context"

	"github.com/rs/zerolog/log"
)

// DeltaRecord is a single publication unit produced by the Delta Builder:
// either an update to a live object or a tombstone (spec.md §4.4).
type DeltaRecord struct {
	Key     Key
	Version Version
	Payload Payload
	Deleted bool
}

// Delta is the complete output of one BuildDelta invocation, ready to be
// handed to a sink and then committed with CommitDelta.
type Delta struct {
	FromVersion Version
	ToVersion   Version
	Records     []DeltaRecord

	// skipped holds the heavy-object keys step 4a decided to withhold this
	// round, carried through to CommitDelta's D update (step 7).
	skipped []Key
}

// BuildDelta runs steps 1-6 of the Delta Builder algorithm (spec.md §4.4):
// it samples current_version as the upper bound, enumerates live objects
// under F.read, applies the heavy-object skip/publish decision per key
// (re-checking under the object's own lock), and appends the terminal
// CATALOG record. It does not mutate D, C or the published cursor - call
// CommitDelta with the result once every record has been handed to a sink.
func (c *Catalog) BuildDelta(ctx context.Context, fromV Version) *Delta {
	c.mu.RLock()
	toV := c.version
	light := make([]*Object, 0, len(c.objects))
	heavy := make([]*Object, 0, len(c.objects))
	for _, obj := range c.objects {
		if obj.Key.Kind.IsHeavy() {
			heavy = append(heavy, obj.Clone())
		} else {
			light = append(light, obj.Clone())
		}
	}
	c.mu.RUnlock()

	d := &Delta{FromVersion: fromV, ToVersion: toV}
	published := make(map[Key]struct{})

	// Step 3: non-heavy kinds publish purely by version range.
	for _, obj := range light {
		if fromV < obj.Version && obj.Version <= toV {
			d.Records = append(d.Records, DeltaRecord{Key: obj.Key, Version: obj.Version, Payload: obj.Payload})
			published[obj.Key] = struct{}{}
		}
	}

	// Step 4: heavy kinds need the skip-counter and per-object-lock dance.
	for _, obj := range heavy {
		rec, skip, ok := c.evaluateHeavy(ctx, obj, fromV, toV)
		if skip {
			d.skipped = append(d.skipped, obj.Key)
			continue
		}
		if ok {
			d.Records = append(d.Records, rec)
			published[rec.Key] = struct{}{}
		}
	}

	// Step 5: deletions, skipping any key already covered by an update in
	// this same delta (protects against delete-then-recreate races).
	c.mu.RLock()
	tombstones := c.deleteLog.retrieve(fromV, toV)
	c.mu.RUnlock()
	for _, t := range tombstones {
		if _, already := published[t.Key]; already {
			continue
		}
		d.Records = append(d.Records, DeltaRecord{Key: t.Key, Version: t.Version, Payload: t.Payload, Deleted: true})
	}

	// Step 6: terminal CATALOG record, always last.
	d.Records = append(d.Records, DeltaRecord{
		Key:     Key{Kind: KindCatalog, Name: c.serviceID},
		Version: toV,
		Payload: CatalogIdentity{ServiceID: c.serviceID, Version: toV},
	})

	return d
}

// evaluateHeavy applies spec.md §4.4 steps 4a-4c to a single heavy object
// snapshotted during enumeration.
func (c *Catalog) evaluateHeavy(ctx context.Context, enumerated *Object, fromV, toV Version) (rec DeltaRecord, skip, ok bool) {
	maxSkips := c.cfg.MaxSkippedTopicUpdates

	if enumerated.Version > toV {
		if c.topicLog.skipCount(enumerated.Key) < maxSkips {
			return DeltaRecord{}, true, false
		}
		// S+1th attempt: publish regardless of version vs. toV (I5).
		return DeltaRecord{Key: enumerated.Key, Version: enumerated.Version, Payload: enumerated.Payload}, false, true
	}
	if enumerated.Version <= fromV {
		return DeltaRecord{}, false, false
	}

	// Normal case: serialize under the per-object lock so a concurrent
	// load commit can't race the read of Payload.
	locked, err := c.tryLockObject(ctx, enumerated.Key, DefaultObjectLockTimeout, DefaultObjectLockRetry)
	if err != nil {
		log.Warn().Err(err).Stringer("key", enumerated.Key).Msg("delta builder: omitting object, lock unavailable")
		return DeltaRecord{}, false, false
	}
	defer c.unlockObject(locked)

	current, stillPresent := c.GetObject(enumerated.Key)
	if !stillPresent {
		// Removed between enumeration and lock acquisition; its tombstone
		// covers it in step 5.
		return DeltaRecord{}, false, false
	}
	if current.Version > toV {
		if c.topicLog.skipCount(current.Key) < maxSkips {
			return DeltaRecord{}, true, false
		}
		return DeltaRecord{Key: current.Key, Version: current.Version, Payload: current.Payload}, false, true
	}
	if current.Version <= fromV {
		return DeltaRecord{}, false, false
	}
	return DeltaRecord{Key: current.Key, Version: current.Version, Payload: current.Payload}, false, true
}

// CommitDelta runs steps 7-9: it updates D for every published and skipped
// key, garbage-collects C and D, advances the published cursor, and wakes
// every SYNC_DDL waiter. Call this after d's records have been handed to
// the sink; every record in d is recorded in D as published, including any
// record the sink failed to accept.
func (c *Catalog) CommitDelta(d *Delta) {
	touched := make(map[string]struct{})
	for _, rec := range d.Records {
		if rec.Key.Kind == KindCatalog {
			continue
		}
		c.topicLog.recordPublished(rec.Key, rec.Version, d.ToVersion)
		if db, ok := databaseOf(rec.Key); ok {
			touched[db] = struct{}{}
		}
	}
	for _, key := range d.skipped {
		c.topicLog.recordSkipped(key)
	}

	c.mu.Lock()
	c.deleteLog.gc(d.ToVersion)
	c.mu.Unlock()
	c.topicLog.gcOlderThan(d.ToVersion, c.cfg.TopicUpdateLogRetention)

	c.lastPublishedTopic.Store(uint64(d.ToVersion))
	c.barrier.notify()

	if c.onDatabaseTouched != nil {
		for db := range touched {
			c.onDatabaseTouched(db, uint64(d.ToVersion))
		}
	}

	log.Debug().
		Uint64("from_version", uint64(d.FromVersion)).
		Uint64("to_version", uint64(d.ToVersion)).
		Int("records", len(d.Records)).
		Int("skipped", len(d.skipped)).
		Msg("delta committed")
}
