package handlers

import (
	"context"

	"github.com/polkiloo/schoolpay/internal/domain/model"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, email, password string) (*model.User, string, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, string, error)
	ParseToken(token string) (int64, error)
}

// TransactionFacade exposes the reporting side of the service.
type TransactionFacade interface {
	Transactions(ctx context.Context, query model.TransactionQuery) (*model.TransactionPage, error)
	SchoolTransactions(ctx context.Context, schoolID string, page model.Pagination) (*model.TransactionPage, error)
	TransactionStatus(ctx context.Context, orderID string) (*model.Transaction, error)
	TransactionStats(ctx context.Context, filter model.TransactionFilter) (*model.TransactionStats, error)
	ExportTransactions(ctx context.Context, query model.TransactionQuery) ([]model.Transaction, error)
}

// PaymentFacade covers payment creation, status checks and gateway callbacks.
type PaymentFacade interface {
	CreatePayment(ctx context.Context, req model.PaymentRequest) (*model.CreatedPayment, error)
	PaymentStatus(ctx context.Context, orderID string) (model.PaymentStatus, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// HealthFacade reports dependency health.
type HealthFacade interface {
	Ping(ctx context.Context) error
}

// FeeFacade aggregates the full set of operations used across handlers.
type FeeFacade interface {
	AuthFacade
	TransactionFacade
	PaymentFacade
	HealthFacade
}
