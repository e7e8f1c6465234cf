package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// kafkaWriter is the slice of *kafka.Writer the adapters use. Tests
// substitute a recorder behind it.
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher emits lifecycle events onto Kafka, one topic per event
// kind. The writer is created without a fixed topic so a single connection
// serves all of them.
type KafkaPublisher struct {
	writer kafkaWriter
	logger *slog.Logger
}

// NewKafkaPublisher constructs a publisher over a connected writer.
func NewKafkaPublisher(writer kafkaWriter, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, logger: logger}
}

// Publish encodes payload as JSON and writes it to topic. The message key is
// the order or quotation ID when present, keeping per-entity ordering.
func (p *KafkaPublisher) Publish(ctx context.Context, topic string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := kafka.Message{Topic: topic, Value: body}
	if key := messageKey(payload); key != "" {
		msg.Key = []byte(key)
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	p.logger.Debug("event published", slog.String("topic", topic))
	return nil
}

// Close releases the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func messageKey(payload map[string]any) string {
	for _, field := range []string{"order_id", "quotation_id", "customer_id"} {
		if v, ok := payload[field].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
