package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	config "example.com/miniter/internal/init"
	"example.com/miniter/internal/models"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	BrokerNone  = "none"
	BrokerKafka = "kafka"
	BrokerAMQP  = "amqp"
)

// Publisher sends activity events to a message broker.
type Publisher interface {
	Publish(ctx context.Context, event models.Event) error
	Close() error
}

// NewEvent builds an activity event with a fresh id and timestamp.
func NewEvent(eventType string, userID, targetID int64, tweet string) models.Event {
	return models.Event{
		ID:       uuid.NewString(),
		Type:     eventType,
		UserID:   userID,
		TargetID: targetID,
		Tweet:    tweet,
		Created:  time.Now().UTC(),
	}
}

// NewPublisher returns the publisher selected by EVENTS_BROKER.
func NewPublisher(cfg *config.Config) (Publisher, error) {
	switch cfg.EventsBroker {
	case "", BrokerNone:
		return NopPublisher{}, nil
	case BrokerKafka:
		return NewKafkaPublisher(NewKafkaWriter(KafkaConfigFrom(cfg))), nil
	case BrokerAMQP:
		p, err := DialAMQP(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown events broker %q", cfg.EventsBroker)
	}
}

// KafkaConfigFrom maps application config onto Kafka client parameters.
func KafkaConfigFrom(cfg *config.Config) KafkaConfig {
	return KafkaConfig{
		Brokers:      []string{cfg.KafkaBroker},
		Topic:        cfg.KafkaTopic,
		GroupID:      cfg.KafkaGroupID,
		WriteTimeout: cfg.KafkaWriteTO,
		ReadTimeout:  cfg.KafkaReadTO,
	}
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event models.Event) error { return nil }

func (NopPublisher) Close() error { return nil }

// KafkaPublisher writes events as JSON messages keyed by the acting user.
type KafkaPublisher struct {
	writer KafkaWriter
}

func NewKafkaPublisher(w KafkaWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event models.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(strconv.FormatInt(event.UserID, 10)),
		Value:   data,
		Time:    event.Created,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
