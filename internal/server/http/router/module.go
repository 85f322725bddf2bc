package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"go.uber.org/fx"

	"github.com/polkiloo/schoolpay/internal/config"
	"github.com/polkiloo/schoolpay/internal/server/http/handlers"
	redisstore "github.com/polkiloo/schoolpay/internal/storage/redis"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Provide(newEngine)

type engineParams struct {
	fx.In

	Facade      handlers.FeeFacade
	Logger      *slog.Logger
	Config      *config.Config
	NewRelicApp *newrelic.Application        `optional:"true"`
	Store       *redisstore.IdempotencyStore `optional:"true"`
}

func newEngine(p engineParams) *gin.Engine {
	opts := Options{
		Facade:         p.Facade,
		Logger:         p.Logger,
		Currency:       p.Config.Currency,
		AllowedOrigins: p.Config.AllowedOrigins,
		NewRelicApp:    p.NewRelicApp,
	}
	// keep the interface nil when redis is disabled
	if p.Store != nil {
		opts.Idempotency = p.Store
	}
	return Setup(opts)
}
