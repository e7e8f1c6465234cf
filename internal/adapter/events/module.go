package events

import (
	"context"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"

	"github.com/ialim/orderflow/internal/config"
	"github.com/ialim/orderflow/internal/usecase"
)

// Module wires the Kafka event adapters.
var Module = fx.Options(
	fx.Provide(newWriter),
	fx.Provide(
		func(w kafkaWriter, logger *slog.Logger) *KafkaPublisher { return NewKafkaPublisher(w, logger) },
		func(w kafkaWriter, logger *slog.Logger) *KafkaNotifier { return NewKafkaNotifier(w, logger) },
		func(p *KafkaPublisher) usecase.Publisher { return p },
		func(n *KafkaNotifier) usecase.Notifier { return n },
	),
	fx.Invoke(registerLifecycle),
)

func newWriter(cfg *config.Config) kafkaWriter {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

func registerLifecycle(lc fx.Lifecycle, w kafkaWriter) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return w.Close()
		},
	})
}
