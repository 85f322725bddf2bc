package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"

	domainErrors "github.com/polkiloo/schoolpay/internal/domain/errors"
	"github.com/polkiloo/schoolpay/internal/domain/model"
)

const (
	metadataOrderID   = "order_id"
	requestTimeout    = 10 * time.Second
	maxNetworkRetries = 2
)

// Client exposes the payment gateway operations the service relies on.
type Client interface {
	CreateIntent(ctx context.Context, req model.IntentRequest) (*model.PaymentIntent, error)
	FetchIntent(ctx context.Context, ref string) (*model.PaymentIntent, error)
	// ParseEvent verifies the signature header over the raw payload and decodes the event.
	ParseEvent(payload []byte, signature string) (*model.GatewayEvent, error)
}

// Options configures StripeClient.
type Options struct {
	SecretKey     string
	WebhookSecret string
	// APIURL overrides the Stripe API base, e.g. for stripe-mock.
	APIURL string
}

// StripeClient implements Client with the Stripe payment intents API.
type StripeClient struct {
	intents       paymentintent.Client
	webhookSecret string
	logger        *slog.Logger
}

// NewStripeClient creates a client with its own backend so the global stripe.Key stays untouched.
func NewStripeClient(opts Options, logger *slog.Logger) *StripeClient {
	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: requestTimeout},
		LeveledLogger:     &leveledLogger{logger: logger},
		MaxNetworkRetries: stripe.Int64(maxNetworkRetries),
	}
	if opts.APIURL != "" {
		backendCfg.URL = stripe.String(opts.APIURL)
	}

	return &StripeClient{
		intents: paymentintent.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
			Key: opts.SecretKey,
		},
		webhookSecret: opts.WebhookSecret,
		logger:        logger,
	}
}

// CreateIntent requests a payment intent tagged with the order id. The order id
// doubles as idempotency key so a retried request never charges twice.
func (c *StripeClient) CreateIntent(ctx context.Context, req model.IntentRequest) (*model.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountMinor),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata(metadataOrderID, req.OrderID)
	params.SetIdempotencyKey("intent-" + req.OrderID)

	pi, err := c.intents.New(params)
	if err != nil {
		c.logger.Error("create payment intent failed", slog.String("order_id", req.OrderID), slog.Any("error", err))
		return nil, fmt.Errorf("%w: create intent: %v", domainErrors.ErrGateway, err)
	}
	return toIntent(pi), nil
}

// FetchIntent loads the current state of the intent ref.
func (c *StripeClient) FetchIntent(ctx context.Context, ref string) (*model.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := c.intents.Get(ref, params)
	if err != nil {
		c.logger.Error("fetch payment intent failed", slog.String("intent", ref), slog.Any("error", err))
		return nil, fmt.Errorf("%w: fetch intent: %v", domainErrors.ErrGateway, err)
	}
	return toIntent(pi), nil
}

func (c *StripeClient) ParseEvent(payload []byte, signature string) (*model.GatewayEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrInvalidSignature, err)
	}

	out := &model.GatewayEvent{
		ID:      event.ID,
		Type:    string(event.Type),
		Payload: payload,
	}
	if !strings.HasPrefix(out.Type, "payment_intent.") || event.Data == nil {
		return out, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("%w: decode payment intent: %v", domainErrors.ErrValidation, err)
	}
	out.IntentRef = pi.ID
	out.OrderID = pi.Metadata[metadataOrderID]
	out.AmountReceivedMinor = pi.AmountReceived
	return out, nil
}

func toIntent(pi *stripe.PaymentIntent) *model.PaymentIntent {
	return &model.PaymentIntent{
		Ref:                 pi.ID,
		ClientSecret:        pi.ClientSecret,
		Status:              model.IntentStatus(pi.Status),
		AmountMinor:         pi.Amount,
		AmountReceivedMinor: pi.AmountReceived,
		OrderID:             pi.Metadata[metadataOrderID],
	}
}

// leveledLogger routes stripe-go logs to slog.
type leveledLogger struct {
	logger *slog.Logger
}

func (l *leveledLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), slog.String("component", "stripe"))
}

func (l *leveledLogger) Infof(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), slog.String("component", "stripe"))
}

func (l *leveledLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, v...), slog.String("component", "stripe"))
}

func (l *leveledLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...), slog.String("component", "stripe"))
}
