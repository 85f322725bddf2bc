package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/schoolpay/internal/config"
	"github.com/polkiloo/schoolpay/internal/domain/model"
	testhelpers "github.com/polkiloo/schoolpay/internal/test"
	"github.com/polkiloo/schoolpay/internal/usecase"
)

type healthStub struct{ err error }

func (h healthStub) HealthCheck(context.Context) error { return h.err }

type facadeFixture struct {
	facade       *FeeFacade
	users        *testhelpers.UserRepositoryStub
	transactions *testhelpers.TransactionRepositoryStub
	orders       *testhelpers.OrderRepositoryStub
	statuses     *testhelpers.OrderStatusRepositoryStub
	gateway      *testhelpers.GatewayStub
}

func newFacade(health HealthChecker) *facadeFixture {
	f := &facadeFixture{
		users:        testhelpers.NewUserRepositoryStub(),
		transactions: &testhelpers.TransactionRepositoryStub{},
		orders:       &testhelpers.OrderRepositoryStub{},
		statuses:     &testhelpers.OrderStatusRepositoryStub{Latest: map[string]*model.OrderStatus{}},
		gateway:      &testhelpers.GatewayStub{},
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	strategy := testhelpers.StrategyStub{ParseFn: func(string) (int64, error) { return 99, nil }}

	authUC := usecase.NewAuthUseCase(f.users, testhelpers.HasherStub{}, strategy)
	txUC := usecase.NewTransactionUseCase(f.transactions, f.orders, f.statuses)
	payUC := usecase.NewPaymentUseCase(
		f.orders, f.statuses, testhelpers.NewWebhookEventRepositoryStub(), f.gateway, &testhelpers.PublisherStub{},
		&config.Config{Currency: "inr", ReconcileAfter: time.Minute}, logger,
	)
	f.facade = NewFeeFacade(authUC, txUC, payUC, health)
	return f
}

func TestFeeFacadeAuth(t *testing.T) {
	f := newFacade(healthStub{})
	user, token, err := f.facade.Register(context.Background(), "admin@school.test", "password")
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if token != "token" || user.Email != "admin@school.test" {
		t.Fatalf("unexpected result %q %+v", token, user)
	}

	if _, _, err := f.facade.Authenticate(context.Background(), "admin@school.test", "password"); err != nil {
		t.Fatalf("authenticate returned error: %v", err)
	}

	id, err := f.facade.ParseToken("anything")
	if err != nil || id != 99 {
		t.Fatalf("expected id 99, got %d err=%v", id, err)
	}
}

func TestFeeFacadePaymentLifecycle(t *testing.T) {
	f := newFacade(healthStub{})
	ctx := context.Background()

	created, err := f.facade.CreatePayment(ctx, model.PaymentRequest{
		SchoolID: "school-1",
		Amount:   decimal.NewFromInt(250),
		Student:  model.StudentInfo{Name: "Ravi", ID: "STU-9", Email: "ravi@example.com"},
	})
	if err != nil {
		t.Fatalf("create payment returned error: %v", err)
	}
	f.statuses.Latest[created.OrderID] = &model.OrderStatus{
		CollectID:   created.OrderID,
		OrderAmount: decimal.NewFromInt(250),
		Status:      model.PaymentStatusPending,
	}

	status, err := f.facade.PaymentStatus(ctx, created.OrderID)
	if err != nil || status != model.PaymentStatusPending {
		t.Fatalf("expected PENDING, got %q err=%v", status, err)
	}

	tx, err := f.facade.TransactionStatus(ctx, created.CustomOrderID)
	if err != nil || tx.CollectID != created.OrderID {
		t.Fatalf("unexpected transaction %+v err=%v", tx, err)
	}

	f.gateway.ParseFn = func(payload []byte, _ string) (*model.GatewayEvent, error) {
		return &model.GatewayEvent{ID: "evt_1", Type: model.EventTypePaymentIntentSucceeded, OrderID: created.OrderID, AmountReceivedMinor: 25000}, nil
	}
	if err := f.facade.HandleWebhook(ctx, []byte("{}"), "sig"); err != nil {
		t.Fatalf("webhook returned error: %v", err)
	}
	status, _ = f.facade.PaymentStatus(ctx, created.OrderID)
	if status != model.PaymentStatusSuccess {
		t.Fatalf("expected SUCCESS after webhook, got %q", status)
	}
}

func TestFeeFacadeReconcile(t *testing.T) {
	f := newFacade(healthStub{})
	f.orders.Pending = []model.PendingPayment{{OrderID: "order-1", IntentRef: "pi_1"}}
	f.statuses.Latest["order-1"] = &model.OrderStatus{CollectID: "order-1", Status: model.PaymentStatusPending}
	f.gateway.FetchFn = func(_ context.Context, ref string) (*model.PaymentIntent, error) {
		return &model.PaymentIntent{Ref: ref, Status: model.IntentStatusCanceled}, nil
	}

	pending, err := f.facade.PendingPayments(context.Background(), 10)
	if err != nil || len(pending) != 1 {
		t.Fatalf("unexpected pending %+v err=%v", pending, err)
	}
	status, err := f.facade.ReconcilePayment(context.Background(), pending[0])
	if err != nil || status != model.PaymentStatusCancelled {
		t.Fatalf("expected CANCELLED, got %q err=%v", status, err)
	}
}

func TestFeeFacadeReporting(t *testing.T) {
	f := newFacade(healthStub{})
	f.transactions.Items = []model.Transaction{testhelpers.SampleTransaction()}
	ctx := context.Background()

	page, err := f.facade.Transactions(ctx, model.TransactionQuery{Page: model.Pagination{Page: 1, Limit: 10}})
	if err != nil || page.Total != 1 || page.Pages != 1 {
		t.Fatalf("unexpected page %+v err=%v", page, err)
	}
	if _, err := f.facade.SchoolTransactions(ctx, "school-1", model.Pagination{Page: 1, Limit: 10}); err != nil {
		t.Fatalf("school transactions returned error: %v", err)
	}
	if _, err := f.facade.TransactionStats(ctx, model.TransactionFilter{}); err != nil {
		t.Fatalf("stats returned error: %v", err)
	}
	rows, err := f.facade.ExportTransactions(ctx, model.TransactionQuery{})
	if err != nil || len(rows) != 1 {
		t.Fatalf("unexpected export %+v err=%v", rows, err)
	}
}

func TestFeeFacadePing(t *testing.T) {
	if err := newFacade(healthStub{}).facade.Ping(context.Background()); err != nil {
		t.Fatalf("expected healthy, got %v", err)
	}
	down := errors.New("db down")
	if err := newFacade(healthStub{err: down}).facade.Ping(context.Background()); !errors.Is(err, down) {
		t.Fatalf("expected db error, got %v", err)
	}
}
