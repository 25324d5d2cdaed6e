package catalog

import "context"

// SyncDDLRecord names one record a completed DDL operation touched, by key
// and the version it was assigned (spec.md §4.7).
type SyncDDLRecord struct {
	Key     Key
	Version Version
}

// WaitForSyncDDL blocks until a topic update has been published that
// covers every record in updated and removed, returning the topic version
// a coordinator must observe for the DDL's effects to be visible
// (spec.md §4.7). ddlResultVersion is returned directly when both sets are
// empty, per step 1.
func (c *Catalog) WaitForSyncDDL(ctx context.Context, ddlResultVersion Version, updated, removed []SyncDDLRecord) (Version, error) {
	if len(updated) == 0 && len(removed) == 0 {
		return ddlResultVersion, nil
	}

	maxAttempts := 5
	if alt := len(updated) * int(c.cfg.MaxSkippedTopicUpdates+1); alt > maxAttempts {
		maxAttempts = alt
	}

	attempts := 0
	for {
		vU, coveredU := c.coveringTopicVersion(updated)
		vR, coveredR := c.coveringTopicVersion(removed)
		if coveredU && coveredR {
			result := vU
			if vR > result {
				result = vR
			}
			return result, nil
		}

		if attempts >= maxAttempts {
			return VersionNone, &SyncDDLTimeoutError{Attempts: attempts}
		}

		// Timeouts (ctx deadline with no intervening publish) do not count
		// as attempts; only an actual topic publish does.
		woken := c.barrier.subscribe()
		select {
		case <-woken:
			attempts++
		case <-ctx.Done():
			return VersionNone, &SyncDDLTimeoutError{Attempts: attempts}
		}
	}
}

// coveringTopicVersion computes v_U (or v_R): the smallest topic version
// that covers every record in the set, or (0, false) if some entry's
// last_sent_version hasn't caught up yet (spec.md §4.7 step 2). An empty
// set is vacuously covered by topic 0, so it never constrains the result.
func (c *Catalog) coveringTopicVersion(records []SyncDDLRecord) (Version, bool) {
	var maxTopic Version
	for _, r := range records {
		entry := c.topicLog.get(r.Key)
		if entry.lastSentVersion < r.Version {
			return VersionNone, false
		}
		if entry.lastSentTopic > maxTopic {
			maxTopic = entry.lastSentTopic
		}
	}
	return maxTopic, true
}
