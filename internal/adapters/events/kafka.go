package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mygeone2/quotes-fake-api/internal/core/domain"
	"github.com/mygeone2/quotes-fake-api/internal/core/port"
)

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(brokers []string, topic string) port.OrderEventPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 5 * time.Second,
		},
	}
}

// PublishOrderCreated sends an order.created event keyed by order id.
func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, o domain.Order) error {
	value, err := json.Marshal(domain.OrderCreatedEvent{
		Type:  domain.EventOrderCreated,
		Order: o,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(o.ID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(domain.EventOrderCreated)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
