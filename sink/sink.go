// Package sink implements the northbound publish surface (spec.md §6):
// an opaque publish(topic_key, version, payload, deleted) sink with a
// pluggable-backend factory registry, mirroring the teacher's publisher
// package's Sink interface and RegisterSink pattern.
package sink

import (
	"fmt"
	"sync"
)

// Sink is the opaque publish target the Delta Builder's output is handed
// to (spec.md §6 "Northbound").
type Sink interface {
	Publish(topicKey string, version uint64, payload []byte, deleted bool) error
	Close() error
}

// Config carries the settings any sink factory might need; individual
// factories read only the fields relevant to their backend.
type Config struct {
	Type       string
	NatsURL    string
	Brokers    []string
	BatchSize  int
	GlobFilter string
}

// Factory constructs a Sink from Config.
type Factory func(cfg Config) (Sink, error)

var (
	factoriesMu sync.Mutex
	factories   = make(map[string]Factory)
)

// RegisterSink registers a sink factory under name, called from each
// backend's init().
func RegisterSink(name string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = factory
}

// New builds the sink registered under cfg.Type.
func New(cfg Config) (Sink, error) {
	factoriesMu.Lock()
	factory, ok := factories[cfg.Type]
	factoriesMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("sink: no factory registered for type %q", cfg.Type)
	}
	return factory(cfg)
}
