package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/schoolpay/internal/domain/model"
)

// TransactionFacadeStub provides controllable behaviour for reporting endpoints.
type TransactionFacadeStub struct {
	ListFn   func(context.Context, model.TransactionQuery) (*model.TransactionPage, error)
	SchoolFn func(context.Context, string, model.Pagination) (*model.TransactionPage, error)
	StatusFn func(context.Context, string) (*model.Transaction, error)
	StatsFn  func(context.Context, model.TransactionFilter) (*model.TransactionStats, error)
	ExportFn func(context.Context, model.TransactionQuery) ([]model.Transaction, error)
}

// SampleTransaction returns a settled transaction used as default fixture.
func SampleTransaction() model.Transaction {
	paid := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	return model.Transaction{
		CollectID:         "order-1",
		SchoolID:          "school-1",
		StudentName:       "Asha",
		StudentID:         "STU-1",
		StudentEmail:      "asha@example.com",
		Gateway:           model.GatewayStripe,
		OrderAmount:       decimal.NewFromInt(1500),
		TransactionAmount: decimal.NewNullDecimal(decimal.NewFromInt(1500)),
		Status:            model.PaymentStatusSuccess,
		CustomOrderID:     "custom-1",
		PaymentTime:       &paid,
	}
}

// Transactions delegates to override or returns a single-item page.
func (s TransactionFacadeStub) Transactions(ctx context.Context, query model.TransactionQuery) (*model.TransactionPage, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, query)
	}
	return &model.TransactionPage{Transactions: []model.Transaction{SampleTransaction()}, Page: query.Page.Page, Pages: 1, Total: 1}, nil
}

// SchoolTransactions delegates to override or returns a single-item page.
func (s TransactionFacadeStub) SchoolTransactions(ctx context.Context, schoolID string, page model.Pagination) (*model.TransactionPage, error) {
	if s.SchoolFn != nil {
		return s.SchoolFn(ctx, schoolID, page)
	}
	tx := SampleTransaction()
	tx.SchoolID = schoolID
	return &model.TransactionPage{Transactions: []model.Transaction{tx}, Page: page.Page, Pages: 1, Total: 1}, nil
}

// TransactionStatus returns the default fixture for any id.
func (s TransactionFacadeStub) TransactionStatus(ctx context.Context, orderID string) (*model.Transaction, error) {
	if s.StatusFn != nil {
		return s.StatusFn(ctx, orderID)
	}
	tx := SampleTransaction()
	return &tx, nil
}

// TransactionStats returns empty stats unless overridden.
func (s TransactionFacadeStub) TransactionStats(ctx context.Context, filter model.TransactionFilter) (*model.TransactionStats, error) {
	if s.StatsFn != nil {
		return s.StatsFn(ctx, filter)
	}
	return &model.TransactionStats{Monthly: []model.MonthlyStat{}, TopSchools: []model.SchoolStat{}}, nil
}

// ExportTransactions returns the default fixture.
func (s TransactionFacadeStub) ExportTransactions(ctx context.Context, query model.TransactionQuery) ([]model.Transaction, error) {
	if s.ExportFn != nil {
		return s.ExportFn(ctx, query)
	}
	return []model.Transaction{SampleTransaction()}, nil
}

// PaymentFacadeStub simulates payment operations.
type PaymentFacadeStub struct {
	CreateFn  func(context.Context, model.PaymentRequest) (*model.CreatedPayment, error)
	StatusFn  func(context.Context, string) (model.PaymentStatus, error)
	WebhookFn func(context.Context, []byte, string) error
}

// CreatePayment returns a fixed client secret unless overridden.
func (s PaymentFacadeStub) CreatePayment(ctx context.Context, req model.PaymentRequest) (*model.CreatedPayment, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, req)
	}
	return &model.CreatedPayment{ClientSecret: "secret", OrderID: "order-1", CustomOrderID: "custom-1"}, nil
}

// PaymentStatus returns PENDING unless overridden.
func (s PaymentFacadeStub) PaymentStatus(ctx context.Context, orderID string) (model.PaymentStatus, error) {
	if s.StatusFn != nil {
		return s.StatusFn(ctx, orderID)
	}
	return model.PaymentStatusPending, nil
}

// HandleWebhook accepts every delivery unless overridden.
func (s PaymentFacadeStub) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.WebhookFn != nil {
		return s.WebhookFn(ctx, payload, signature)
	}
	return nil
}

// HealthFacadeStub reports configured health.
type HealthFacadeStub struct {
	Err error
}

// Ping returns configured error.
func (s HealthFacadeStub) Ping(context.Context) error {
	return s.Err
}

// FeeFacadeStub aggregates facade dependencies for HTTP layer tests.
type FeeFacadeStub struct {
	AuthFacadeStub
	TransactionFacadeStub
	PaymentFacadeStub
	HealthFacadeStub
}

// WorkerFacadeStub mimics reconciler interactions with the payment facade.
type WorkerFacadeStub struct {
	Batches     [][]model.PendingPayment
	PendingFn   func(context.Context, int) ([]model.PendingPayment, error)
	ReconcileFn func(context.Context, model.PendingPayment) (model.PaymentStatus, error)
	Reconciled  []model.PendingPayment
	mu          sync.Mutex
	pendingCall int32
}

// Lock exposes internal mutex for external synchronization.
func (s *WorkerFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *WorkerFacadeStub) Unlock() { s.mu.Unlock() }

// PendingPayments returns batches from configured queue.
func (s *WorkerFacadeStub) PendingPayments(ctx context.Context, limit int) ([]model.PendingPayment, error) {
	if s.PendingFn != nil {
		return s.PendingFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.pendingCall, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	return nil, nil
}

// ReconcilePayment records reconcile requests.
func (s *WorkerFacadeStub) ReconcilePayment(ctx context.Context, payment model.PendingPayment) (model.PaymentStatus, error) {
	s.mu.Lock()
	s.Reconciled = append(s.Reconciled, payment)
	s.mu.Unlock()
	if s.ReconcileFn != nil {
		return s.ReconcileFn(ctx, payment)
	}
	return model.PaymentStatusSuccess, nil
}
