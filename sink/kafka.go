package sink

import (
	"context"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"
)

const (
	DefaultKafkaBatchSize  = 100
	DefaultKafkaBatchBytes = 1 << 20
)

func init() {
	RegisterSink("kafka", func(cfg Config) (Sink, error) {
		return NewKafkaSink(KafkaConfig{
			Brokers:          cfg.Brokers,
			BatchSize:        cfg.BatchSize,
			BatchBytes:       DefaultKafkaBatchBytes,
			RequiredAcks:     kafka.RequireAll,
			AutoCreateTopics: true,
		})
	})
}

// KafkaSink publishes one Kafka topic per topic key, using the key as the
// Kafka message key so records for the same object land on one partition.
type KafkaSink struct {
	writer *kafka.Writer
}

type KafkaConfig struct {
	Brokers          []string
	BatchSize        int
	BatchBytes       int64
	RequiredAcks     kafka.RequiredAcks
	AutoCreateTopics bool
}

func NewKafkaSink(cfg KafkaConfig) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka sink: requires at least one broker address")
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultKafkaBatchSize
	}
	if cfg.BatchBytes == 0 {
		cfg.BatchBytes = DefaultKafkaBatchBytes
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchSize:              cfg.BatchSize,
		BatchBytes:             cfg.BatchBytes,
		RequiredAcks:           cfg.RequiredAcks,
		Async:                  false,
		AllowAutoTopicCreation: cfg.AutoCreateTopics,
	}
	return &KafkaSink{writer: writer}, nil
}

// Publish writes payload under topicKey; deleted records carry a nil value
// (Kafka's conventional tombstone marker) with the version stamped on a
// header so consumers can still order/dedup deletes.
func (k *KafkaSink) Publish(topicKey string, version uint64, payload []byte, deleted bool) error {
	value := payload
	if deleted {
		value = nil
	}
	msg := kafka.Message{
		Topic: topicKey,
		Key:   []byte(topicKey),
		Value: value,
		Headers: []kafka.Header{
			{Key: "version", Value: []byte(strconv.FormatUint(version, 10))},
		},
	}
	return k.writer.WriteMessages(context.Background(), msg)
}

func (k *KafkaSink) Close() error {
	if k.writer == nil {
		return nil
	}
	return k.writer.Close()
}
