package sink

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

func init() {
	RegisterSink("nats", func(cfg Config) (Sink, error) {
		if cfg.NatsURL == "" {
			return nil, fmt.Errorf("nats sink requires nats_url")
		}
		return NewNatsSink(cfg.NatsURL)
	})
}

// NatsSink publishes to NATS JetStream, one stream per topic key.
type NatsSink struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewNatsSink(url string) (*NatsSink, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats sink: connecting: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("nats sink: jetstream context: %w", err)
	}

	return &NatsSink{nc: nc, js: js}, nil
}

func (n *NatsSink) Publish(topicKey string, version uint64, payload []byte, deleted bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	streamName := sanitizeStreamName(topicKey)
	_, err := n.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  []string{topicKey},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("nats sink: ensuring stream %s: %w", streamName, err)
	}

	msg := &nats.Msg{
		Subject: topicKey,
		Data:    payload,
		Header: nats.Header{
			"version": []string{strconv.FormatUint(version, 10)},
			"deleted": []string{strconv.FormatBool(deleted)},
		},
	}
	if _, err := n.js.PublishMsg(ctx, msg); err != nil {
		return fmt.Errorf("nats sink: publishing to %s: %w", topicKey, err)
	}
	return nil
}

func (n *NatsSink) Close() error {
	if n.nc != nil {
		n.nc.Close()
	}
	return nil
}

// sanitizeStreamName replaces "." with "_"; JetStream stream names can't
// contain ".".
func sanitizeStreamName(topic string) string {
	out := make([]byte, len(topic))
	for i, c := range topic {
		if c == '.' {
			out[i] = '_'
		} else {
			out[i] = byte(c)
		}
	}
	return string(out)
}
