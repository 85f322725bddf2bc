package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRequest is the input of a payment creation.
type PaymentRequest struct {
	SchoolID string
	Amount   decimal.Decimal
	Student  StudentInfo
}

// CreatedPayment is returned to the client to complete the payment.
type CreatedPayment struct {
	ClientSecret  string
	OrderID       string
	CustomOrderID string
}

// IntentStatus mirrors the gateway-side state of a payment intent.
type IntentStatus string

const (
	IntentStatusSucceeded      IntentStatus = "succeeded"
	IntentStatusCanceled       IntentStatus = "canceled"
	IntentStatusProcessing     IntentStatus = "processing"
	IntentStatusRequiresAction IntentStatus = "requires_action"
)

// IntentRequest asks the gateway for a new payment intent.
type IntentRequest struct {
	OrderID     string
	AmountMinor int64
	Currency    string
}

// PaymentIntent is the gateway view of a payment.
type PaymentIntent struct {
	Ref                 string
	ClientSecret        string
	Status              IntentStatus
	AmountMinor         int64
	AmountReceivedMinor int64
	OrderID             string
}

// PendingPayment is an order awaiting settlement that the reconciler checks against the gateway.
type PendingPayment struct {
	OrderID   string
	IntentRef string
	CreatedAt time.Time
}

// Settlement describes a status transition applied to the latest status of an order.
type Settlement struct {
	OrderID string
	Status  PaymentStatus
	// AmountReceivedMinor is stored as transaction_amount when positive.
	AmountReceivedMinor int64
}
