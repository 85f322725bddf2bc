package repository

import (
	"context"

	"github.com/polkiloo/schoolpay/internal/domain/model"
)

// OrderStatusRepository owns order status records. The most recently created
// status of an order is authoritative.
type OrderStatusRepository interface {
	LatestFor(ctx context.Context, collectID string) (*model.OrderStatus, error)
	// Settle applies the settlement to the latest status of the order and returns
	// the resulting transaction view.
	Settle(ctx context.Context, settlement model.Settlement) (*model.Transaction, error)
}
