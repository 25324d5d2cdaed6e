package sink

import (
	"testing"

	"github.com/catalogd/catalogd/catalog"
	"github.com/catalogd/catalogd/encoding"
)

func sampleDelta() *catalog.Delta {
	return &catalog.Delta{
		FromVersion: 0,
		ToVersion:   2,
		Records: []catalog.DeltaRecord{
			{
				Key:     catalog.TableKey("d", "t"),
				Version: 1,
				Payload: catalog.Table{Database: "d", Name: "t"},
			},
			{
				Key:     catalog.Key{Kind: catalog.KindCatalog, Name: "svc"},
				Version: 2,
				Payload: catalog.CatalogIdentity{ServiceID: "svc", Version: 2},
			},
		},
	}
}

func TestPublishDeltaFullMode(t *testing.T) {
	full := NewLogSink()
	p := &Publisher{Mode: ModeFull, Full: full}

	if err := p.PublishDelta(sampleDelta()); err != nil {
		t.Fatalf("PublishDelta: %v", err)
	}

	records := full.Snapshot()
	if len(records) != 2 {
		t.Fatalf("expected 2 records published to the full sink, got %d", len(records))
	}
	if records[0].TopicKey != catalog.TableKey("d", "t").String() {
		t.Fatalf("unexpected topic key: %s", records[0].TopicKey)
	}
}

func TestPublishDeltaMinimalModeShapesPayload(t *testing.T) {
	minimal := NewLogSink()
	p := &Publisher{Mode: ModeMinimal, Minimal: minimal}

	if err := p.PublishDelta(sampleDelta()); err != nil {
		t.Fatalf("PublishDelta: %v", err)
	}

	records := minimal.Snapshot()
	if len(records) != 2 {
		t.Fatalf("expected 2 records published to the minimal sink, got %d", len(records))
	}
	var shaped catalog.MinimalPayload
	if err := encoding.Unmarshal(records[0].Payload, &shaped); err != nil {
		t.Fatalf("decoding minimal payload: %v", err)
	}
	if shaped.K != catalog.KindTable || len(shaped.Names) != 2 || shaped.Names[0] != "d" || shaped.Names[1] != "t" {
		t.Fatalf("expected minimal TABLE payload [d t], got %+v", shaped)
	}
}

func TestPublishDeltaMixedModeFansOutToBothSinks(t *testing.T) {
	full := NewLogSink()
	minimal := NewLogSink()
	p := &Publisher{Mode: ModeMixed, Full: full, Minimal: minimal}

	if err := p.PublishDelta(sampleDelta()); err != nil {
		t.Fatalf("PublishDelta: %v", err)
	}

	if len(full.Snapshot()) != 2 {
		t.Fatalf("expected full sink to receive 2 records, got %d", len(full.Snapshot()))
	}
	if len(minimal.Snapshot()) != 2 {
		t.Fatalf("expected minimal sink to receive 2 records, got %d", len(minimal.Snapshot()))
	}
}

func TestPublishDeltaAppliesGlobFilter(t *testing.T) {
	full := NewLogSink()
	filter, err := NewGlobFilter([]string{"other"}, nil)
	if err != nil {
		t.Fatalf("NewGlobFilter: %v", err)
	}
	p := &Publisher{Mode: ModeFull, Full: full, Filter: filter}

	if err := p.PublishDelta(sampleDelta()); err != nil {
		t.Fatalf("PublishDelta: %v", err)
	}

	records := full.Snapshot()
	if len(records) != 1 {
		t.Fatalf("expected only the unfiltered terminal CATALOG record, got %d", len(records))
	}
	if records[0].TopicKey != (catalog.Key{Kind: catalog.KindCatalog, Name: "svc"}).String() {
		t.Fatalf("expected the CATALOG record to survive filtering, got %s", records[0].TopicKey)
	}
}
