package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the settlement state of an order.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusSuccess   PaymentStatus = "SUCCESS"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// NormalizePaymentStatus upper-cases and trims raw status input.
func NormalizePaymentStatus(raw string) PaymentStatus {
	return PaymentStatus(strings.ToUpper(strings.TrimSpace(raw)))
}

// OrderStatus tracks amounts and settlement state of an order.
type OrderStatus struct {
	ID                int64
	CollectID         string
	OrderAmount       decimal.Decimal
	TransactionAmount decimal.NullDecimal
	Status            PaymentStatus
	PaymentTime       *time.Time
	CreatedAt         time.Time
}
