package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventTypePaymentIntentSucceeded is the gateway event confirming a captured payment.
const EventTypePaymentIntentSucceeded = "payment_intent.succeeded"

// GatewayEvent is a verified webhook delivery.
type GatewayEvent struct {
	ID                  string
	Type                string
	IntentRef           string
	OrderID             string
	AmountReceivedMinor int64
	Payload             []byte
}

// WebhookOutcome records what happened to a webhook delivery.
type WebhookOutcome string

const (
	WebhookReceived WebhookOutcome = "RECEIVED"
	WebhookApplied  WebhookOutcome = "APPLIED"
	WebhookIgnored  WebhookOutcome = "IGNORED"
	WebhookFailed   WebhookOutcome = "FAILED"
)

// PaymentEventType names a published payment lifecycle event.
type PaymentEventType string

const (
	PaymentEventCreated   PaymentEventType = "payment.created"
	PaymentEventSucceeded PaymentEventType = "payment.succeeded"
	PaymentEventCancelled PaymentEventType = "payment.cancelled"
)

// PaymentEvent is published to downstream consumers.
type PaymentEvent struct {
	Type       PaymentEventType
	OrderID    string
	SchoolID   string
	Status     PaymentStatus
	Amount     decimal.Decimal
	OccurredAt time.Time
}
