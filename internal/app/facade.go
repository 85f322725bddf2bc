package app

import (
	"context"

	"github.com/polkiloo/schoolpay/internal/domain/model"
	"github.com/polkiloo/schoolpay/internal/usecase"
)

// HealthChecker reports whether backing storage is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// FeeFacade is the single entry point the transport and worker layers use.
type FeeFacade struct {
	auth         *usecase.AuthUseCase
	transactions *usecase.TransactionUseCase
	payments     *usecase.PaymentUseCase
	health       HealthChecker
}

func NewFeeFacade(auth *usecase.AuthUseCase, transactions *usecase.TransactionUseCase, payments *usecase.PaymentUseCase, health HealthChecker) *FeeFacade {
	return &FeeFacade{auth: auth, transactions: transactions, payments: payments, health: health}
}

func (f *FeeFacade) Register(ctx context.Context, email, password string) (*model.User, string, error) {
	return f.auth.Register(ctx, email, password)
}

func (f *FeeFacade) Authenticate(ctx context.Context, email, password string) (*model.User, string, error) {
	return f.auth.Authenticate(ctx, email, password)
}

func (f *FeeFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *FeeFacade) Transactions(ctx context.Context, query model.TransactionQuery) (*model.TransactionPage, error) {
	return f.transactions.List(ctx, query)
}

func (f *FeeFacade) SchoolTransactions(ctx context.Context, schoolID string, page model.Pagination) (*model.TransactionPage, error) {
	return f.transactions.BySchool(ctx, schoolID, page)
}

func (f *FeeFacade) TransactionStatus(ctx context.Context, orderID string) (*model.Transaction, error) {
	return f.transactions.Status(ctx, orderID)
}

func (f *FeeFacade) TransactionStats(ctx context.Context, filter model.TransactionFilter) (*model.TransactionStats, error) {
	return f.transactions.Stats(ctx, filter)
}

func (f *FeeFacade) ExportTransactions(ctx context.Context, query model.TransactionQuery) ([]model.Transaction, error) {
	return f.transactions.Export(ctx, query)
}

func (f *FeeFacade) CreatePayment(ctx context.Context, req model.PaymentRequest) (*model.CreatedPayment, error) {
	return f.payments.CreatePayment(ctx, req)
}

func (f *FeeFacade) PaymentStatus(ctx context.Context, orderID string) (model.PaymentStatus, error) {
	return f.payments.PaymentStatus(ctx, orderID)
}

func (f *FeeFacade) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return f.payments.HandleWebhook(ctx, payload, signature)
}

func (f *FeeFacade) PendingPayments(ctx context.Context, limit int) ([]model.PendingPayment, error) {
	return f.payments.PendingPayments(ctx, limit)
}

func (f *FeeFacade) ReconcilePayment(ctx context.Context, payment model.PendingPayment) (model.PaymentStatus, error) {
	return f.payments.Reconcile(ctx, payment)
}

func (f *FeeFacade) Ping(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
