package sink

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/catalogd/catalogd/catalog"
	"github.com/catalogd/catalogd/encoding"
)

// Mode selects which topic namespace(s) a delta is published to
// (spec.md §6 "topic_mode").
type Mode string

const (
	ModeFull    Mode = "FULL"
	ModeMixed   Mode = "MIXED"
	ModeMinimal Mode = "MINIMAL"
)

// Publisher fans a Delta out to the FULL and/or MINIMAL sink depending on
// Mode. Either sink may be nil if its namespace isn't in use.
type Publisher struct {
	Mode    Mode
	Full    Sink
	Minimal Sink
	Filter  *GlobFilter
}

// PublishDelta serializes and publishes every record in d, skipping
// records the filter excludes. It returns the first error encountered but
// keeps publishing the remaining records so one bad object doesn't block
// the rest of the delta (spec.md §7 "Delta-builder serialization failures
// for a single object are logged and that object is omitted").
func (p *Publisher) PublishDelta(d *catalog.Delta) error {
	var firstErr error
	for _, rec := range d.Records {
		if p.Filter != nil && rec.Key.Kind != catalog.KindCatalog && !p.Filter.Match(rec.Key) {
			continue
		}
		if err := p.publishOne(rec); err != nil {
			log.Error().Err(err).Stringer("key", rec.Key).Msg("sink: publish failed, omitting record")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (p *Publisher) publishOne(rec catalog.DeltaRecord) error {
	if p.Mode == ModeFull || p.Mode == ModeMixed {
		if p.Full != nil {
			full, err := encoding.Marshal(rec.Payload)
			if err != nil {
				return fmt.Errorf("marshaling full payload for %s: %w", rec.Key, err)
			}
			if err := p.Full.Publish(rec.Key.String(), uint64(rec.Version), full, rec.Deleted); err != nil {
				return fmt.Errorf("publishing full record for %s: %w", rec.Key, err)
			}
		}
	}
	if p.Mode == ModeMinimal || p.Mode == ModeMixed {
		if p.Minimal != nil {
			shaped, ok := catalog.ShapeMinimal(rec.Payload)
			if ok {
				minimal, err := encoding.Marshal(shaped)
				if err != nil {
					return fmt.Errorf("marshaling minimal payload for %s: %w", rec.Key, err)
				}
				if err := p.Minimal.Publish(rec.Key.String(), uint64(rec.Version), minimal, rec.Deleted); err != nil {
					return fmt.Errorf("publishing minimal record for %s: %w", rec.Key, err)
				}
			}
		}
	}
	return nil
}
