package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/schoolpay/internal/adapter/events"
	"github.com/polkiloo/schoolpay/internal/adapter/gateway"
	"github.com/polkiloo/schoolpay/internal/config"
	domainErrors "github.com/polkiloo/schoolpay/internal/domain/errors"
	"github.com/polkiloo/schoolpay/internal/domain/model"
	"github.com/polkiloo/schoolpay/internal/domain/repository"
	testhelpers "github.com/polkiloo/schoolpay/internal/test"
)

var (
	_ gateway.Client   = (*testhelpers.GatewayStub)(nil)
	_ events.Publisher = (*testhelpers.PublisherStub)(nil)
)

type paymentFixture struct {
	uc        *PaymentUseCase
	orders    *testhelpers.OrderRepositoryStub
	statuses  *testhelpers.OrderStatusRepositoryStub
	webhooks  *testhelpers.WebhookEventRepositoryStub
	gateway   *testhelpers.GatewayStub
	publisher *testhelpers.PublisherStub
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		orders:    &testhelpers.OrderRepositoryStub{},
		statuses:  &testhelpers.OrderStatusRepositoryStub{Latest: map[string]*model.OrderStatus{}},
		webhooks:  testhelpers.NewWebhookEventRepositoryStub(),
		gateway:   &testhelpers.GatewayStub{},
		publisher: &testhelpers.PublisherStub{},
	}
	cfg := &config.Config{Currency: "inr", ReconcileAfter: 15 * time.Minute}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	f.uc = NewPaymentUseCase(f.orders, f.statuses, f.webhooks, f.gateway, f.publisher, cfg, logger)

	ids := 0
	f.uc.newID = func() string {
		ids++
		return fmt.Sprintf("id-%d", ids)
	}
	f.uc.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	return f
}

func validPaymentRequest() model.PaymentRequest {
	return model.PaymentRequest{
		SchoolID: "school-1",
		Amount:   decimal.RequireFromString("1500.50"),
		Student:  model.StudentInfo{Name: "Asha", ID: "STU-1", Email: "Asha@Example.com"},
	}
}

func pendingStatus(orderID string, amount int64) *model.OrderStatus {
	return &model.OrderStatus{CollectID: orderID, OrderAmount: decimal.NewFromInt(amount), Status: model.PaymentStatusPending}
}

func TestPaymentUseCaseCreatePayment(t *testing.T) {
	f := newPaymentFixture()

	created, err := f.uc.CreatePayment(context.Background(), validPaymentRequest())
	if err != nil {
		t.Fatalf("create payment returned error: %v", err)
	}
	if created.OrderID != "id-1" || created.CustomOrderID != "id-2" || created.ClientSecret != "pi_id-1_secret" {
		t.Fatalf("unexpected result %+v", created)
	}

	if len(f.gateway.Requests) != 1 {
		t.Fatalf("expected one intent request, got %d", len(f.gateway.Requests))
	}
	req := f.gateway.Requests[0]
	if req.AmountMinor != 150050 || req.Currency != "inr" || req.OrderID != "id-1" {
		t.Fatalf("unexpected intent request %+v", req)
	}

	if len(f.orders.Orders) != 1 {
		t.Fatalf("expected order to be stored")
	}
	order := f.orders.Orders[0]
	if order.PaymentIntentRef == nil || *order.PaymentIntentRef != "pi_id-1" {
		t.Fatalf("expected intent ref on order, got %v", order.PaymentIntentRef)
	}
	if order.Student.Email != "asha@example.com" || order.GatewayName != model.GatewayStripe {
		t.Fatalf("unexpected stored order %+v", order)
	}

	published := f.publisher.Published()
	if len(published) != 1 || published[0].Type != model.PaymentEventCreated || published[0].Status != model.PaymentStatusPending {
		t.Fatalf("unexpected events %+v", published)
	}
	if !published[0].Amount.Equal(decimal.RequireFromString("1500.50")) || published[0].OccurredAt.IsZero() {
		t.Fatalf("unexpected event payload %+v", published[0])
	}
}

func TestPaymentUseCaseCreatePaymentValidationHasNoSideEffects(t *testing.T) {
	f := newPaymentFixture()
	req := validPaymentRequest()
	req.Amount = decimal.Zero

	if _, err := f.uc.CreatePayment(context.Background(), req); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(f.gateway.Requests) != 0 || len(f.orders.Orders) != 0 || len(f.publisher.Published()) != 0 {
		t.Fatal("expected no side effects on invalid request")
	}
}

func TestPaymentUseCaseCreatePaymentGatewayFailureLeavesNoOrder(t *testing.T) {
	f := newPaymentFixture()
	f.gateway.CreateFn = func(context.Context, model.IntentRequest) (*model.PaymentIntent, error) {
		return nil, fmt.Errorf("%w: card declined", domainErrors.ErrGateway)
	}

	if _, err := f.uc.CreatePayment(context.Background(), validPaymentRequest()); !errors.Is(err, domainErrors.ErrGateway) {
		t.Fatalf("expected gateway error, got %v", err)
	}
	if len(f.orders.Orders) != 0 {
		t.Fatal("expected no order after gateway failure")
	}
	if len(f.publisher.Published()) != 0 {
		t.Fatal("expected no event after gateway failure")
	}
}

func TestPaymentUseCaseCreatePaymentConflict(t *testing.T) {
	f := newPaymentFixture()
	f.orders.CreatePendingFn = func(context.Context, *model.Order, decimal.Decimal, repository.IntentIssuer) (*model.OrderStatus, error) {
		return nil, domainErrors.ErrAlreadyExists
	}
	if _, err := f.uc.CreatePayment(context.Background(), validPaymentRequest()); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestPaymentUseCaseCreatePaymentPublishFailureIsNotSurfaced(t *testing.T) {
	f := newPaymentFixture()
	f.publisher.Err = errors.New("kafka down")
	if _, err := f.uc.CreatePayment(context.Background(), validPaymentRequest()); err != nil {
		t.Fatalf("expected publish failure to be swallowed, got %v", err)
	}
}

func TestPaymentUseCasePaymentStatus(t *testing.T) {
	f := newPaymentFixture()
	f.statuses.Latest["order-1"] = pendingStatus("order-1", 100)

	status, err := f.uc.PaymentStatus(context.Background(), "order-1")
	if err != nil || status != model.PaymentStatusPending {
		t.Fatalf("unexpected status %q err %v", status, err)
	}
	if _, err := f.uc.PaymentStatus(context.Background(), "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := f.uc.PaymentStatus(context.Background(), " "); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found for blank id, got %v", err)
	}
}

func succeededEvent(id, orderID string, amount int64) func([]byte, string) (*model.GatewayEvent, error) {
	return func(payload []byte, _ string) (*model.GatewayEvent, error) {
		return &model.GatewayEvent{
			ID:                  id,
			Type:                model.EventTypePaymentIntentSucceeded,
			IntentRef:           "pi_" + orderID,
			OrderID:             orderID,
			AmountReceivedMinor: amount,
			Payload:             payload,
		}, nil
	}
}

func TestPaymentUseCaseHandleWebhookSucceeded(t *testing.T) {
	f := newPaymentFixture()
	f.statuses.Latest["order-1"] = pendingStatus("order-1", 500)
	f.gateway.ParseFn = succeededEvent("evt_1", "order-1", 50000)

	if err := f.uc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("webhook returned error: %v", err)
	}

	status := f.statuses.Latest["order-1"]
	if status.Status != model.PaymentStatusSuccess || status.PaymentTime == nil {
		t.Fatalf("expected SUCCESS with payment time, got %+v", status)
	}
	if !status.TransactionAmount.Valid || !status.TransactionAmount.Decimal.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected transaction amount 500, got %+v", status.TransactionAmount)
	}
	if f.webhooks.Outcomes["evt_1"] != model.WebhookApplied {
		t.Fatalf("expected applied outcome, got %q", f.webhooks.Outcomes["evt_1"])
	}
	published := f.publisher.Published()
	if len(published) != 1 || published[0].Type != model.PaymentEventSucceeded || published[0].OrderID != "order-1" {
		t.Fatalf("unexpected events %+v", published)
	}
}

func TestPaymentUseCaseHandleWebhookReplayIsIdempotent(t *testing.T) {
	f := newPaymentFixture()
	f.statuses.Latest["order-1"] = pendingStatus("order-1", 500)
	f.gateway.ParseFn = succeededEvent("evt_1", "order-1", 50000)

	for i := 0; i < 3; i++ {
		if err := f.uc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
			t.Fatalf("delivery %d returned error: %v", i, err)
		}
	}
	if len(f.statuses.Settlements) != 1 {
		t.Fatalf("expected a single settlement, got %d", len(f.statuses.Settlements))
	}
	if f.webhooks.Attempts["evt_1"] != 3 {
		t.Fatalf("expected three recorded attempts, got %d", f.webhooks.Attempts["evt_1"])
	}
	if len(f.publisher.Published()) != 1 {
		t.Fatalf("expected a single event, got %d", len(f.publisher.Published()))
	}
}

func TestPaymentUseCaseHandleWebhookUnknownOrderIsNoop(t *testing.T) {
	f := newPaymentFixture()
	f.gateway.ParseFn = succeededEvent("evt_2", "ghost", 100)

	if err := f.uc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("expected unknown order to be acknowledged, got %v", err)
	}
	if f.webhooks.Outcomes["evt_2"] != model.WebhookIgnored {
		t.Fatalf("expected ignored outcome, got %q", f.webhooks.Outcomes["evt_2"])
	}
	if len(f.publisher.Published()) != 0 {
		t.Fatal("expected no event for unknown order")
	}
}

func TestPaymentUseCaseHandleWebhookOtherTypesIgnored(t *testing.T) {
	f := newPaymentFixture()
	f.gateway.ParseFn = func(payload []byte, _ string) (*model.GatewayEvent, error) {
		return &model.GatewayEvent{ID: "evt_3", Type: "charge.refunded", OrderID: "order-1"}, nil
	}
	f.statuses.Latest["order-1"] = pendingStatus("order-1", 500)

	if err := f.uc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.statuses.Settlements) != 0 {
		t.Fatal("expected no settlement for unrelated event")
	}
	if f.webhooks.Outcomes["evt_3"] != model.WebhookIgnored {
		t.Fatalf("expected ignored outcome, got %q", f.webhooks.Outcomes["evt_3"])
	}
}

func TestPaymentUseCaseHandleWebhookInvalidSignature(t *testing.T) {
	f := newPaymentFixture()
	f.gateway.ParseFn = func([]byte, string) (*model.GatewayEvent, error) {
		return nil, fmt.Errorf("%w: bad header", domainErrors.ErrInvalidSignature)
	}
	if err := f.uc.HandleWebhook(context.Background(), []byte("{}"), "bad"); !errors.Is(err, domainErrors.ErrInvalidSignature) {
		t.Fatalf("expected signature error, got %v", err)
	}
	if len(f.webhooks.Attempts) != 0 {
		t.Fatal("expected nothing recorded for forged delivery")
	}
}

func TestPaymentUseCaseHandleWebhookFailureStaysRetryable(t *testing.T) {
	f := newPaymentFixture()
	f.gateway.ParseFn = succeededEvent("evt_4", "order-1", 100)
	dbErr := errors.New("db down")
	f.statuses.SettleFn = func(context.Context, model.Settlement) (*model.Transaction, error) {
		return nil, dbErr
	}

	if err := f.uc.HandleWebhook(context.Background(), []byte("{}"), "sig"); !errors.Is(err, dbErr) {
		t.Fatalf("expected settle error, got %v", err)
	}
	if f.webhooks.Outcomes["evt_4"] != model.WebhookFailed {
		t.Fatalf("expected failed outcome, got %q", f.webhooks.Outcomes["evt_4"])
	}

	f.statuses.SettleFn = nil
	f.statuses.Latest["order-1"] = pendingStatus("order-1", 1)
	if err := f.uc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if f.webhooks.Outcomes["evt_4"] != model.WebhookApplied {
		t.Fatalf("expected applied outcome after retry, got %q", f.webhooks.Outcomes["evt_4"])
	}
}

func TestPaymentUseCaseHandleWebhookLogErrors(t *testing.T) {
	f := newPaymentFixture()
	f.gateway.ParseFn = succeededEvent("evt_5", "order-1", 100)
	f.webhooks.BeginErr = errors.New("insert failed")
	if err := f.uc.HandleWebhook(context.Background(), []byte("{}"), "sig"); err == nil {
		t.Fatal("expected begin error")
	}

	f.webhooks.BeginErr = nil
	f.webhooks.FinishErr = errors.New("update failed")
	f.statuses.Latest["order-1"] = pendingStatus("order-1", 1)
	if err := f.uc.HandleWebhook(context.Background(), []byte("{}"), "sig"); !errors.Is(err, f.webhooks.FinishErr) {
		t.Fatalf("expected finish error, got %v", err)
	}
}

func TestPaymentUseCasePendingPayments(t *testing.T) {
	f := newPaymentFixture()
	f.orders.Pending = []model.PendingPayment{{OrderID: "a"}, {OrderID: "b"}, {OrderID: "c"}}

	pending, err := f.uc.PendingPayments(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected batch of 2, got %d", len(pending))
	}
	if len(f.orders.Claims) != 1 || f.orders.Claims[0] != 15*time.Minute {
		t.Fatalf("expected reconcile window to be passed, got %v", f.orders.Claims)
	}
}

func TestPaymentUseCaseReconcile(t *testing.T) {
	tests := []struct {
		name       string
		intent     model.IntentStatus
		want       model.PaymentStatus
		wantEvent  model.PaymentEventType
		wantSettle bool
	}{
		{name: "succeeded", intent: model.IntentStatusSucceeded, want: model.PaymentStatusSuccess, wantEvent: model.PaymentEventSucceeded, wantSettle: true},
		{name: "canceled", intent: model.IntentStatusCanceled, want: model.PaymentStatusCancelled, wantEvent: model.PaymentEventCancelled, wantSettle: true},
		{name: "processing", intent: model.IntentStatusProcessing, want: model.PaymentStatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture()
			f.statuses.Latest["order-1"] = pendingStatus("order-1", 200)
			f.gateway.FetchFn = func(_ context.Context, ref string) (*model.PaymentIntent, error) {
				return &model.PaymentIntent{Ref: ref, Status: tt.intent, AmountReceivedMinor: 20000}, nil
			}

			got, err := f.uc.Reconcile(context.Background(), model.PendingPayment{OrderID: "order-1", IntentRef: "pi_1"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			if settled := len(f.statuses.Settlements) == 1; settled != tt.wantSettle {
				t.Fatalf("unexpected settlements %+v", f.statuses.Settlements)
			}
			published := f.publisher.Published()
			if tt.wantEvent == "" {
				if len(published) != 0 {
					t.Fatalf("expected no events, got %+v", published)
				}
				return
			}
			if len(published) != 1 || published[0].Type != tt.wantEvent {
				t.Fatalf("unexpected events %+v", published)
			}
		})
	}
}

func TestPaymentUseCaseReconcileErrors(t *testing.T) {
	f := newPaymentFixture()
	f.gateway.FetchFn = func(context.Context, string) (*model.PaymentIntent, error) {
		return nil, domainErrors.ErrGateway
	}
	if _, err := f.uc.Reconcile(context.Background(), model.PendingPayment{OrderID: "order-1", IntentRef: "pi_1"}); !errors.Is(err, domainErrors.ErrGateway) {
		t.Fatalf("expected gateway error, got %v", err)
	}

	f.gateway.FetchFn = func(_ context.Context, ref string) (*model.PaymentIntent, error) {
		return &model.PaymentIntent{Ref: ref, Status: model.IntentStatusSucceeded}, nil
	}
	status, err := f.uc.Reconcile(context.Background(), model.PendingPayment{OrderID: "settled-elsewhere", IntentRef: "pi_2"})
	if err != nil || status != "" {
		t.Fatalf("expected already settled order to be skipped, got %q %v", status, err)
	}

	f.statuses.SettleFn = func(context.Context, model.Settlement) (*model.Transaction, error) {
		return nil, errors.New("db down")
	}
	if _, err := f.uc.Reconcile(context.Background(), model.PendingPayment{OrderID: "order-1", IntentRef: "pi_1"}); err == nil {
		t.Fatal("expected settle error")
	}
}
