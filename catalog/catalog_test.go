package catalog

import (
	"context"
	"sync"
	"testing"
	"time"
)

func newTestCatalog() *Catalog {
	return New("test-service", DefaultConfig())
}

// S1: add then delta.
func TestScenario_AddThenDelta(t *testing.T) {
	c := newTestCatalog()

	obj := c.AddDatabase("d", "owner", "")
	if obj.Version != 1 {
		t.Fatalf("expected db version 1, got %d", obj.Version)
	}

	d := c.BuildDelta(context.Background(), 0)
	if len(d.Records) != 2 {
		t.Fatalf("expected 2 records (db + catalog), got %d", len(d.Records))
	}

	dbRec := d.Records[0]
	if dbRec.Key.Kind != KindDatabase || dbRec.Version != 1 {
		t.Fatalf("unexpected first record: %+v", dbRec)
	}

	catRec := d.Records[len(d.Records)-1]
	if catRec.Key.Kind != KindCatalog || catRec.Version < 1 {
		t.Fatalf("unexpected terminal record: %+v", catRec)
	}

	c.CommitDelta(d)
	if c.LastPublishedTopic() != 1 {
		t.Fatalf("expected last_published_topic 1, got %d", c.LastPublishedTopic())
	}
}

// S2: hot-table starvation bound with S=2 (spec.md I5). evaluateHeavy's
// skip decision is exercised directly against a synthetic object whose
// version runs ahead of the topic's toV the way a table repeatedly mutated
// between Delta Builder runs would, so the test controls fromV/toV without
// depending on real-time races.
func TestScenario_HotTableStarvationBound(t *testing.T) {
	c := New("svc", Config{MaxSkippedTopicUpdates: 2, TopicUpdateLogRetention: 1000})
	ctx := context.Background()

	key := TableKey("d", "t")
	hot := &Object{Key: key, Version: 10, Payload: Table{Database: "d", Name: "t"}}

	// toV=9: hot's version (10) is ahead of toV, skip count 0 < S -> skip.
	_, skip, ok := c.evaluateHeavy(ctx, hot, 0, 9)
	if !skip || ok {
		t.Fatalf("expected first evaluation to skip, got skip=%v ok=%v", skip, ok)
	}
	c.topicLog.recordSkipped(key)

	// toV still behind hot's version: second skip.
	_, skip, ok = c.evaluateHeavy(ctx, hot, 9, 9)
	if !skip || ok {
		t.Fatalf("expected second evaluation to skip, got skip=%v ok=%v", skip, ok)
	}
	c.topicLog.recordSkipped(key)

	if got := c.topicLog.skipCount(key); got != 2 {
		t.Fatalf("expected skip count 2, got %d", got)
	}

	// Third attempt: S=2 consecutive skips already recorded, so the S+1th
	// attempt force-publishes regardless of version vs toV.
	rec, skip, ok := c.evaluateHeavy(ctx, hot, 9, 9)
	if skip || !ok {
		t.Fatalf("expected forced publish on third attempt, got skip=%v ok=%v", skip, ok)
	}
	if rec.Key != key || rec.Version != hot.Version {
		t.Fatalf("unexpected forced record: %+v", rec)
	}
}

// S3-style: removal produces a tombstone observable via the delete log and
// the next delta's deleted record.
func TestScenario_RemoveProducesTombstoneAndDeltaRecord(t *testing.T) {
	c := newTestCatalog()
	c.AddDatabase("d", "", "")
	d1 := c.BuildDelta(context.Background(), 0)
	c.CommitDelta(d1)
	fromV := d1.ToVersion

	removed, _, err := c.RemoveDatabase("d")
	if err != nil {
		t.Fatalf("RemoveDatabase: %v", err)
	}
	if removed == nil {
		t.Fatal("expected removed object")
	}

	entries := c.DeleteLogEntries()
	if len(entries) != 1 || entries[0].Key != DatabaseKey("d") {
		t.Fatalf("expected one tombstone for d, got %+v", entries)
	}

	d2 := c.BuildDelta(context.Background(), fromV)
	var sawDeleted bool
	for _, r := range d2.Records {
		if r.Key == DatabaseKey("d") && r.Deleted {
			sawDeleted = true
		}
	}
	if !sawDeleted {
		t.Fatalf("expected a deleted record for d in second delta")
	}
}

// Cascade removal: database removal tombstones owned children in the same
// F.write section, all receiving distinct versions.
func TestScenario_CascadeRemoveDatabase(t *testing.T) {
	c := newTestCatalog()
	c.AddDatabase("d", "", "")
	c.AddTable("d", "t1")
	c.AddTable("d", "t2")
	c.AddFunction("d", "f1", "int()", "")

	_, children, err := c.RemoveDatabase("d")
	if err != nil {
		t.Fatalf("RemoveDatabase: %v", err)
	}
	if len(children) != 3 {
		t.Fatalf("expected 3 cascaded children, got %d", len(children))
	}
	seen := map[Version]bool{}
	for _, ch := range children {
		if seen[ch.Version] {
			t.Fatalf("duplicate version %d among cascaded tombstones", ch.Version)
		}
		seen[ch.Version] = true
	}
}

// Rename is atomic: old key absent, new key present, in one critical
// section (P6).
func TestScenario_RenameTableAtomic(t *testing.T) {
	c := newTestCatalog()
	c.AddDatabase("d", "", "")
	c.AddTable("d", "old")

	old, new, err := c.RenameTable("d", "old", "d", "new")
	if err != nil {
		t.Fatalf("RenameTable: %v", err)
	}
	if old.Key != TableKey("d", "old") || new.Key != TableKey("d", "new") {
		t.Fatalf("unexpected rename keys: old=%v new=%v", old.Key, new.Key)
	}
	if _, ok := c.GetObject(TableKey("d", "old")); ok {
		t.Fatal("old key should no longer be live")
	}
	if _, ok := c.GetObject(TableKey("d", "new")); !ok {
		t.Fatal("new key should be live")
	}
}

// SYNC_DDL: a caller blocks until the publish covering its updated set
// occurs, then observes the resulting object.
func TestScenario_SyncDDLWaitsForCoveringPublish(t *testing.T) {
	c := newTestCatalog()
	obj := c.AddDatabase("d", "", "")

	waitErrCh := make(chan error, 1)
	var waitV Version
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		v, err := c.WaitForSyncDDL(ctx, obj.Version, []SyncDDLRecord{{Key: obj.Key, Version: obj.Version}}, nil)
		waitV = v
		waitErrCh <- err
	}()

	// Give the waiter a moment to subscribe before the publish happens.
	time.Sleep(20 * time.Millisecond)

	d := c.BuildDelta(context.Background(), 0)
	c.CommitDelta(d)

	select {
	case err := <-waitErrCh:
		if err != nil {
			t.Fatalf("WaitForSyncDDL: %v", err)
		}
		if waitV != d.ToVersion {
			t.Fatalf("expected waitV=%d, got %d", d.ToVersion, waitV)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForSyncDDL never returned")
	}
}

// SYNC_DDL exhausts with a caller-visible error when no publish ever
// covers the requested set.
func TestScenario_SyncDDLTimeout(t *testing.T) {
	c := newTestCatalog()
	obj := c.AddDatabase("d", "", "")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.WaitForSyncDDL(ctx, obj.Version, []SyncDDLRecord{{Key: obj.Key, Version: obj.Version + 100}}, nil)
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if _, ok := err.(*SyncDDLTimeoutError); !ok {
		t.Fatalf("expected *SyncDDLTimeoutError, got %T", err)
	}
}

// P1: every version-returning call produces a strictly increasing value,
// and the registry-wide version counter strictly increases on every
// mutation (add or remove) regardless of what the call itself returns.
func TestProperty_VersionsStrictlyIncreasing(t *testing.T) {
	c := newTestCatalog()
	var last Version
	track := func() {
		v := c.CurrentVersion()
		if v <= last {
			t.Fatalf("current_version %d did not exceed prior %d", v, last)
		}
		last = v
	}

	dbObj := c.AddDatabase("d", "", "")
	if dbObj.Version <= last {
		t.Fatalf("add returned non-increasing version %d", dbObj.Version)
	}
	track()

	tbl, err := c.AddTable("d", "t")
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Version <= last {
		t.Fatalf("add returned non-increasing version %d", tbl.Version)
	}
	track()

	if _, err := c.RemoveTable("d", "t"); err != nil {
		t.Fatal(err)
	}
	track()
}

// P2: no key is simultaneously live and tombstoned with a later version.
func TestProperty_NoLiveAndStaleTombstone(t *testing.T) {
	c := newTestCatalog()
	c.AddDatabase("d", "", "")
	c.AddTable("d", "t")
	c.RemoveTable("d", "t")
	c.AddTable("d", "t") // re-add after removal

	live, ok := c.GetObject(TableKey("d", "t"))
	if !ok {
		t.Fatal("expected t to be live after re-add")
	}
	for _, ts := range c.DeleteLogEntries() {
		if ts.Key == TableKey("d", "t") && ts.Version > live.Version {
			t.Fatalf("tombstone version %d exceeds live version %d", ts.Version, live.Version)
		}
	}
}

// P5: ReplaceIfUnchanged is a no-op whenever the live version has moved on.
func TestProperty_ReplaceIfUnchangedNoOpOnStaleVersion(t *testing.T) {
	c := newTestCatalog()
	c.AddDatabase("d", "", "")
	obj, _ := c.AddTable("d", "t")

	staleVersion := obj.Version
	// Advance the object's version out from under the stale caller.
	current, _ := c.GetObject(obj.Key)
	c.ReplaceIfUnchanged(obj.Key, current.Version, Table{Database: "d", Name: "t", NumRows: 1})

	_, ok := c.ReplaceIfUnchanged(obj.Key, staleVersion, Table{Database: "d", Name: "t", NumRows: 999})
	if ok {
		t.Fatal("expected ReplaceIfUnchanged to reject a stale expected version")
	}
	after, _ := c.GetObject(obj.Key)
	if after.Payload.(Table).NumRows == 999 {
		t.Fatal("stale replace must not have taken effect")
	}
}

// P6: rename never exposes both K_old and K_new, nor neither.
func TestProperty_RenameNeverBothOrNeither(t *testing.T) {
	c := newTestCatalog()
	c.AddDatabase("d", "", "")
	c.AddTable("d", "old")

	c.RenameTable("d", "old", "d", "new")

	_, oldLive := c.GetObject(TableKey("d", "old"))
	_, newLive := c.GetObject(TableKey("d", "new"))
	if oldLive == newLive {
		t.Fatalf("expected exactly one of old/new live, got old=%v new=%v", oldLive, newLive)
	}
}

// Concurrency smoke test: concurrent mutators never corrupt the version
// counter's strict monotonicity (P1 under contention).
func TestConcurrentMutatorsPreserveMonotonicVersions(t *testing.T) {
	c := newTestCatalog()
	c.AddDatabase("d", "", "")

	var wg sync.WaitGroup
	versions := make(chan Version, 200)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				obj := c.AddDataSource("ds", "class", "uri")
				versions <- obj.Version
				c.RemoveDataSource("ds")
			}
		}(i)
	}
	wg.Wait()
	close(versions)

	seen := map[Version]bool{}
	for v := range versions {
		if seen[v] {
			t.Fatalf("version %d observed twice across concurrent mutators", v)
		}
		seen[v] = true
	}
}
