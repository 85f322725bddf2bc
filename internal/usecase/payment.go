package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/schoolpay/internal/adapter/events"
	"github.com/polkiloo/schoolpay/internal/adapter/gateway"
	"github.com/polkiloo/schoolpay/internal/config"
	domainErrors "github.com/polkiloo/schoolpay/internal/domain/errors"
	"github.com/polkiloo/schoolpay/internal/domain/model"
	"github.com/polkiloo/schoolpay/internal/domain/repository"
)

// PaymentUseCase creates payment intents and settles them from gateway feedback.
type PaymentUseCase struct {
	orders         repository.OrderRepository
	statuses       repository.OrderStatusRepository
	webhooks       repository.WebhookEventRepository
	gateway        gateway.Client
	publisher      events.Publisher
	currency       string
	reconcileAfter time.Duration
	logger         *slog.Logger

	newID func() string
	now   func() time.Time
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(
	orders repository.OrderRepository,
	statuses repository.OrderStatusRepository,
	webhooks repository.WebhookEventRepository,
	client gateway.Client,
	publisher events.Publisher,
	cfg *config.Config,
	logger *slog.Logger,
) *PaymentUseCase {
	return &PaymentUseCase{
		orders:         orders,
		statuses:       statuses,
		webhooks:       webhooks,
		gateway:        client,
		publisher:      publisher,
		currency:       cfg.Currency,
		reconcileAfter: cfg.ReconcileAfter,
		logger:         logger,
		newID:          uuid.NewString,
		now:            time.Now,
	}
}

// CreatePayment stores a pending order and opens a gateway intent for it. The
// order is only persisted when the intent was created.
func (u *PaymentUseCase) CreatePayment(ctx context.Context, req model.PaymentRequest) (*model.CreatedPayment, error) {
	req.SchoolID = strings.TrimSpace(req.SchoolID)
	req.Student = model.StudentInfo{
		Name:  strings.TrimSpace(req.Student.Name),
		ID:    strings.TrimSpace(req.Student.ID),
		Email: strings.ToLower(strings.TrimSpace(req.Student.Email)),
	}
	if err := ValidatePaymentRequest(req); err != nil {
		return nil, err
	}

	order := &model.Order{
		ID:            u.newID(),
		SchoolID:      req.SchoolID,
		Student:       req.Student,
		CustomOrderID: u.newID(),
		GatewayName:   model.GatewayStripe,
	}

	var intent *model.PaymentIntent
	issue := func(ctx context.Context, o *model.Order) (string, error) {
		var err error
		intent, err = u.gateway.CreateIntent(ctx, model.IntentRequest{
			OrderID:     o.ID,
			AmountMinor: model.ToMinorUnits(req.Amount),
			Currency:    u.currency,
		})
		if err != nil {
			return "", err
		}
		return intent.Ref, nil
	}

	status, err := u.orders.CreatePending(ctx, order, req.Amount, issue)
	if err != nil {
		return nil, err
	}

	u.publish(ctx, model.PaymentEvent{
		Type:     model.PaymentEventCreated,
		OrderID:  order.ID,
		SchoolID: order.SchoolID,
		Status:   status.Status,
		Amount:   status.OrderAmount,
	})

	return &model.CreatedPayment{
		ClientSecret:  intent.ClientSecret,
		OrderID:       order.ID,
		CustomOrderID: order.CustomOrderID,
	}, nil
}

// PaymentStatus returns the latest status of the order.
func (u *PaymentUseCase) PaymentStatus(ctx context.Context, orderID string) (model.PaymentStatus, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return "", domainErrors.ErrNotFound
	}
	status, err := u.statuses.LatestFor(ctx, orderID)
	if err != nil {
		return "", err
	}
	return status.Status, nil
}

// HandleWebhook verifies and applies a gateway delivery. Deliveries that were
// already applied or ignored are acknowledged without side effects.
func (u *PaymentUseCase) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := u.gateway.ParseEvent(payload, signature)
	if err != nil {
		return err
	}

	pending, err := u.webhooks.Begin(ctx, *event)
	if err != nil {
		return fmt.Errorf("record webhook event: %w", err)
	}
	if !pending {
		u.logger.Info("webhook event already processed", slog.String("event_id", event.ID), slog.String("type", event.Type))
		return nil
	}

	outcome, applyErr := u.applyEvent(ctx, event)
	if applyErr != nil {
		outcome = model.WebhookFailed
	}
	if err := u.webhooks.Finish(ctx, event.ID, outcome); err != nil {
		if applyErr != nil {
			return errors.Join(applyErr, err)
		}
		return fmt.Errorf("finish webhook event: %w", err)
	}
	return applyErr
}

func (u *PaymentUseCase) applyEvent(ctx context.Context, event *model.GatewayEvent) (model.WebhookOutcome, error) {
	if event.Type != model.EventTypePaymentIntentSucceeded || event.OrderID == "" {
		return model.WebhookIgnored, nil
	}

	tx, err := u.statuses.Settle(ctx, model.Settlement{
		OrderID:             event.OrderID,
		Status:              model.PaymentStatusSuccess,
		AmountReceivedMinor: event.AmountReceivedMinor,
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			u.logger.Warn("webhook for unknown or settled order", slog.String("order_id", event.OrderID), slog.String("event_id", event.ID))
			return model.WebhookIgnored, nil
		}
		return "", fmt.Errorf("settle order %s: %w", event.OrderID, err)
	}

	u.publish(ctx, settlementEvent(model.PaymentEventSucceeded, tx))
	return model.WebhookApplied, nil
}

// PendingPayments claims orders still pending at the gateway for a reconcile pass.
func (u *PaymentUseCase) PendingPayments(ctx context.Context, limit int) ([]model.PendingPayment, error) {
	return u.orders.ClaimPending(ctx, u.reconcileAfter, limit)
}

// Reconcile settles a pending order from the current state of its gateway intent.
// Intents that are still in progress leave the order untouched.
func (u *PaymentUseCase) Reconcile(ctx context.Context, payment model.PendingPayment) (model.PaymentStatus, error) {
	intent, err := u.gateway.FetchIntent(ctx, payment.IntentRef)
	if err != nil {
		return "", err
	}

	var (
		status    model.PaymentStatus
		eventType model.PaymentEventType
	)
	switch intent.Status {
	case model.IntentStatusSucceeded:
		status, eventType = model.PaymentStatusSuccess, model.PaymentEventSucceeded
	case model.IntentStatusCanceled:
		status, eventType = model.PaymentStatusCancelled, model.PaymentEventCancelled
	default:
		return model.PaymentStatusPending, nil
	}

	tx, err := u.statuses.Settle(ctx, model.Settlement{
		OrderID:             payment.OrderID,
		Status:              status,
		AmountReceivedMinor: intent.AmountReceivedMinor,
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("settle order %s: %w", payment.OrderID, err)
	}

	u.publish(ctx, settlementEvent(eventType, tx))
	return tx.Status, nil
}

func (u *PaymentUseCase) publish(ctx context.Context, event model.PaymentEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = u.now().UTC()
	}
	if err := u.publisher.Publish(ctx, event); err != nil {
		u.logger.Error("publish payment event failed",
			slog.String("type", string(event.Type)),
			slog.String("order_id", event.OrderID),
			slog.String("error", err.Error()),
		)
	}
}

func settlementEvent(eventType model.PaymentEventType, tx *model.Transaction) model.PaymentEvent {
	amount := tx.OrderAmount
	if tx.TransactionAmount.Valid {
		amount = tx.TransactionAmount.Decimal
	}
	event := model.PaymentEvent{
		Type:     eventType,
		OrderID:  tx.CollectID,
		SchoolID: tx.SchoolID,
		Status:   tx.Status,
		Amount:   amount,
	}
	if tx.PaymentTime != nil {
		event.OccurredAt = tx.PaymentTime.UTC()
	}
	return event
}
