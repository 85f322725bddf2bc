package redis

import (
	"context"
	"log/slog"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/schoolpay/internal/config"
)

// Module provides the idempotency store when Redis is configured and nil otherwise.
var Module = fx.Provide(newIdempotencyStore)

type storeParams struct {
	fx.In

	Lifecycle   fx.Lifecycle
	Config      *config.Config
	Logger      *slog.Logger
	NewRelicApp *newrelic.Application `optional:"true"`
}

func newIdempotencyStore(p storeParams) *IdempotencyStore {
	if p.Config.RedisAddr == "" {
		p.Logger.Info("redis disabled, idempotency keys are not honoured")
		return nil
	}

	client := NewClient(p.Config.RedisAddr, p.Config.RedisPassword, p.Config.RedisDB, p.NewRelicApp)
	registerLifecycle(p.Lifecycle, client, p.Logger)
	return NewIdempotencyStore(client, p.Config.IdempotencyTTL)
}

func registerLifecycle(lc fx.Lifecycle, client *redis.Client, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := Ping(ctx, client); err != nil {
				return err
			}
			logger.Info("connected to redis", slog.String("addr", client.Options().Addr))
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
}
