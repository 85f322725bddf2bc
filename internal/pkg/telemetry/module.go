package telemetry

import (
	"context"
	"log/slog"

	"github.com/newrelic/go-agent/v3/newrelic"
	"go.uber.org/fx"

	"github.com/polkiloo/schoolpay/internal/config"
)

// Module provides an optional *newrelic.Application.
var Module = fx.Options(
	fx.Provide(newApplication),
	fx.Invoke(registerLifecycle),
)

type applicationParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newApplication(p applicationParams) (*newrelic.Application, error) {
	return NewApplication(p.Config.NewRelicAppName, p.Config.NewRelicLicenseKey, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, app *newrelic.Application) {
	if app == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			app.Shutdown(shutdownTimeout)
			return nil
		},
	})
}
