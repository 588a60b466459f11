package broker

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaWriter is the producing side of the activity topic.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, messages ...kafka.Message) error
	Close() error
}

// KafkaReader is the consuming side of the activity topic.
type KafkaReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaConfig holds the client settings shared by the publisher and the worker.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	GroupID      string        // consumer group of the worker
	WriteTimeout time.Duration // per produce request
	ReadTimeout  time.Duration // max wait for a fetch
}

func (c KafkaConfig) withDefaults() KafkaConfig {
	if len(c.Brokers) == 0 {
		c.Brokers = []string{"localhost:9092"}
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 10 * time.Second
	}
	return c
}

// NewKafkaWriter builds a producer that hashes message keys onto partitions,
// so events of one user stay ordered. Connections are opened lazily and
// re-established by the client after broker failures.
func NewKafkaWriter(cfg KafkaConfig) *kafka.Writer {
	cfg = cfg.withDefaults()
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.WriteTimeout,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// NewKafkaReader joins cfg.GroupID on cfg.Topic. Offsets are committed
// once per second.
func NewKafkaReader(cfg KafkaConfig) *kafka.Reader {
	cfg = cfg.withDefaults()
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.Topic,
		MinBytes:       1,
		MaxBytes:       1 << 20, // events are small JSON documents
		MaxWait:        cfg.ReadTimeout,
		CommitInterval: time.Second,
	})
}
