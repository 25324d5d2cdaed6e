package sink

import "sync"

func init() {
	RegisterSink("log", func(cfg Config) (Sink, error) {
		return NewLogSink(), nil
	})
}

// LogRecord is one call captured by LogSink.
type LogRecord struct {
	TopicKey string
	Version  uint64
	Payload  []byte
	Deleted  bool
}

// LogSink is an in-process sink for tests: it records every call instead
// of publishing anywhere.
type LogSink struct {
	mu      sync.Mutex
	Records []LogRecord
	closed  bool
}

func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) Publish(topicKey string, version uint64, payload []byte, deleted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records = append(s.Records, LogRecord{TopicKey: topicKey, Version: version, Payload: payload, Deleted: deleted})
	return nil
}

func (s *LogSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *LogSink) Snapshot() []LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LogRecord, len(s.Records))
	copy(out, s.Records)
	return out
}
