package events

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/schoolpay/internal/config"
)

// Module provides the event publisher and closes it on shutdown.
var Module = fx.Options(
	fx.Provide(newPublisher),
	fx.Invoke(registerLifecycle),
)

type publisherParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newPublisher(p publisherParams) Publisher {
	if len(p.Config.KafkaBrokers) == 0 {
		p.Logger.Info("kafka disabled, payment events are not published")
		return NopPublisher{}
	}
	p.Logger.Info("kafka publisher configured", slog.Any("brokers", p.Config.KafkaBrokers), slog.String("topic", p.Config.KafkaTopic))
	return NewKafkaPublisher(p.Config.KafkaBrokers, p.Config.KafkaTopic, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, publisher Publisher) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	})
}
