package gateway

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/schoolpay/internal/config"
)

// Module exposes the payment gateway client to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) Client {
	return NewStripeClient(Options{
		SecretKey:     p.Config.StripeSecretKey,
		WebhookSecret: p.Config.StripeWebhookSecret,
		APIURL:        p.Config.StripeAPIURL,
	}, p.Logger)
}
