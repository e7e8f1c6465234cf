package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

const notificationTopic = "notifications"

// KafkaNotifier delivers customer-facing notifications through the shared
// notifications topic. Delivery is best effort; failures are logged, never
// propagated into the calling transition.
type KafkaNotifier struct {
	writer kafkaWriter
	logger *slog.Logger
}

// NewKafkaNotifier constructs a notifier over a connected writer.
func NewKafkaNotifier(writer kafkaWriter, logger *slog.Logger) *KafkaNotifier {
	return &KafkaNotifier{writer: writer, logger: logger}
}

// Notify enqueues one notification for recipient.
func (n *KafkaNotifier) Notify(ctx context.Context, recipient, kind, message string) {
	body, err := json.Marshal(map[string]string{
		"recipient": recipient,
		"kind":      kind,
		"message":   message,
	})
	if err != nil {
		n.logger.Error("encode notification", slog.String("error", err.Error()))
		return
	}

	msg := kafka.Message{Topic: notificationTopic, Key: []byte(recipient), Value: body}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		n.logger.Error("send notification",
			slog.String("recipient", recipient),
			slog.String("error", err.Error()))
	}
}
