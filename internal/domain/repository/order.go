package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/schoolpay/internal/domain/model"
)

// IntentIssuer obtains a gateway intent reference for an order that is being persisted.
// A returned error aborts the order creation.
type IntentIssuer func(ctx context.Context, order *model.Order) (string, error)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// CreatePending stores the order with a PENDING status and the intent reference
	// returned by issue, all or nothing.
	CreatePending(ctx context.Context, order *model.Order, amount decimal.Decimal, issue IntentIssuer) (*model.OrderStatus, error)
	// GetByID resolves an order by internal id or custom order id.
	GetByID(ctx context.Context, id string) (*model.Order, error)
	// ClaimPending returns pending orders not checked within staleAfter and stamps them as checked.
	ClaimPending(ctx context.Context, staleAfter time.Duration, limit int) ([]model.PendingPayment, error)
}
