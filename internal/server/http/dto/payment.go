package dto

import "github.com/shopspring/decimal"

// StudentInfo identifies the student a fee is paid for.
type StudentInfo struct {
	Name  string `json:"name"`
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CreatePaymentRequest starts a new fee payment.
type CreatePaymentRequest struct {
	SchoolID    string           `json:"school_id"`
	Amount      *decimal.Decimal `json:"amount"`
	StudentInfo *StudentInfo     `json:"student_info"`
}

// CreatePaymentResponse carries what the client needs to confirm the payment.
type CreatePaymentResponse struct {
	ClientSecret  string `json:"clientSecret"`
	OrderID       string `json:"orderId"`
	CustomOrderID string `json:"customOrderId"`
}

// PaymentStatusResponse reports the latest status of an order.
type PaymentStatusResponse struct {
	Status string `json:"status"`
}

// WebhookResponse acknowledges a gateway event delivery.
type WebhookResponse struct {
	Received bool `json:"received"`
}
