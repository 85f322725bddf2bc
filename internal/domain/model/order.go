package model

import "time"

// GatewayStripe is the gateway name recorded on orders created through Stripe.
const GatewayStripe = "stripe"

// StudentInfo identifies the student an order is paid for.
type StudentInfo struct {
	Name  string
	ID    string
	Email string
}

// Order is a payment request initiated for a student at a school.
type Order struct {
	ID               string
	SchoolID         string
	Student          StudentInfo
	CustomOrderID    string
	PaymentIntentRef *string
	GatewayName      string
	// StatusRefs lists status ids ordered by creation time.
	StatusRefs []int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
