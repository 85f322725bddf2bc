package repository

import (
	"context"

	"github.com/polkiloo/schoolpay/internal/domain/model"
)

// WebhookEventRepository keeps the log of gateway deliveries.
type WebhookEventRepository interface {
	// Begin records the delivery and reports whether it still needs processing.
	// Deliveries already applied or ignored return false.
	Begin(ctx context.Context, event model.GatewayEvent) (bool, error)
	Finish(ctx context.Context, eventID string, outcome model.WebhookOutcome) error
}
