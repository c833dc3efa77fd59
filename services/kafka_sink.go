package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/signworks/orderflow-api/models"
)

// KafkaMessage is the record published for every outbox event
type KafkaMessage struct {
	EventID    string          `json:"eventId"`
	EventType  string          `json:"eventType"`
	OrderID    *uint           `json:"orderId,omitempty"`
	Version    uint            `json:"version"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// messageWriter is the subset of kafka.Writer the sink uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes outbox events to a topic keyed by order id, so a
// partition sees one order's events in commit order.
type KafkaSink struct {
	writer messageWriter
}

// NewKafkaSink creates a writer for brokers and topic
func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// Name identifies the sink in relay errors
func (k *KafkaSink) Name() string { return "kafka" }

// Deliver publishes one event
func (k *KafkaSink) Deliver(ctx context.Context, event *models.OutboxEvent) error {
	value, err := json.Marshal(KafkaMessage{
		EventID:    event.EventID,
		EventType:  event.EventType,
		OrderID:    event.OrderID,
		Version:    event.OrderVersion,
		OccurredAt: event.CreatedAt,
		Payload:    json.RawMessage(event.Payload),
	})
	if err != nil {
		return err
	}

	key := event.EventID
	if event.OrderID != nil {
		key = strconv.FormatUint(uint64(*event.OrderID), 10)
	}

	if err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close flushes and closes the writer
func (k *KafkaSink) Close() error {
	return k.writer.Close()
}
