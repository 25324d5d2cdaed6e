package catalog

import "sync"

// topicLogEntry is the per-key row of the Topic Update Log (D):
// `K -> (last_sent_version, last_sent_topic, skipped)` (spec.md Data Model).
type topicLogEntry struct {
	lastSentVersion Version
	lastSentTopic   Version
	skipped         uint32
}

// topicUpdateLog is D. It is written exclusively by the single Delta
// Builder loop but read concurrently by any goroutine waiting on the
// SYNC_DDL barrier, so - unlike deleteLog - it carries its own mutex
// rather than relying on F (spec.md component table: "D ... still
// lock-free w.r.t. F but serialized by being single-threaded").
type topicUpdateLog struct {
	mu      sync.Mutex
	entries map[Key]*topicLogEntry
}

func newTopicUpdateLog() *topicUpdateLog {
	return &topicUpdateLog{entries: make(map[Key]*topicLogEntry)}
}

func (d *topicUpdateLog) get(key Key) topicLogEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.entries[key]; ok {
		return *e
	}
	return topicLogEntry{}
}

// recordPublished implements step 7's "for each published record" update:
// D[K] := (version(O), toV, 0).
func (d *topicUpdateLog) recordPublished(key Key, version, topic Version) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[key] = &topicLogEntry{lastSentVersion: version, lastSentTopic: topic, skipped: 0}
}

// recordSkipped implements step 7's "for each skipped heavy object" update:
// D[K] := (prior.last_sent, prior.last_topic, prior.skipped + 1).
func (d *topicUpdateLog) recordSkipped(key Key) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prior := topicLogEntry{}
	if e, ok := d.entries[key]; ok {
		prior = *e
	}
	d.entries[key] = &topicLogEntry{
		lastSentVersion: prior.lastSentVersion,
		lastSentTopic:   prior.lastSentTopic,
		skipped:         prior.skipped + 1,
	}
}

// skipCount reports how many consecutive topic updates key has skipped,
// for the I5 starvation check in the Delta Builder.
func (d *topicUpdateLog) skipCount(key Key) uint32 {
	return d.get(key).skipped
}

// gcOlderThan drops entries whose last_sent_topic is below
// topic - retention, i.e. the retention window is measured in catalog
// versions, not in a count of topic updates (spec.md Data Model "Topic
// Update Log (D)").
func (d *topicUpdateLog) gcOlderThan(topic Version, retention uint64) {
	if uint64(topic) <= retention {
		return
	}
	cutoff := Version(uint64(topic) - retention)
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, e := range d.entries {
		if e.lastSentTopic < cutoff {
			delete(d.entries, k)
		}
	}
}

func (d *topicUpdateLog) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// TopicLogEntry is the exported view of topicLogEntry, for admin
// introspection.
type TopicLogEntry struct {
	Key             Key
	LastSentVersion Version
	LastSentTopic   Version
	Skipped         uint32
}

// TopicLogEntries returns a snapshot of the Topic Update Log (D), for the
// admin inspection surface.
func (c *Catalog) TopicLogEntries() []TopicLogEntry {
	c.topicLog.mu.Lock()
	defer c.topicLog.mu.Unlock()
	out := make([]TopicLogEntry, 0, len(c.topicLog.entries))
	for k, e := range c.topicLog.entries {
		out = append(out, TopicLogEntry{
			Key:             k,
			LastSentVersion: e.lastSentVersion,
			LastSentTopic:   e.lastSentTopic,
			Skipped:         e.skipped,
		})
	}
	return out
}
