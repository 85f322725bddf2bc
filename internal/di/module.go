package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/schoolpay/internal/adapter/events"
	"github.com/polkiloo/schoolpay/internal/adapter/gateway"
	"github.com/polkiloo/schoolpay/internal/app"
	"github.com/polkiloo/schoolpay/internal/config"
	"github.com/polkiloo/schoolpay/internal/logger"
	"github.com/polkiloo/schoolpay/internal/pkg/auth"
	"github.com/polkiloo/schoolpay/internal/pkg/telemetry"
	"github.com/polkiloo/schoolpay/internal/server/http/handlers"
	"github.com/polkiloo/schoolpay/internal/server/http/router"
	"github.com/polkiloo/schoolpay/internal/storage/postgres"
	"github.com/polkiloo/schoolpay/internal/storage/redis"
	"github.com/polkiloo/schoolpay/internal/usecase"
)

// Module assembles the whole application graph. opts are appended last so
// tests can replace any provided value.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		telemetry.Module,
		auth.Module,
		postgres.Module,
		redis.Module,
		gateway.Module,
		events.Module,
		usecase.Module,
		fx.Provide(
			func(s *postgres.Storage) app.HealthChecker { return s },
			func(f *app.FeeFacade) handlers.FeeFacade { return f },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
