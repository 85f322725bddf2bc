package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the flattened view of an order joined with its latest status.
type Transaction struct {
	CollectID         string
	SchoolID          string
	StudentName       string
	StudentID         string
	StudentEmail      string
	Gateway           string
	OrderAmount       decimal.Decimal
	TransactionAmount decimal.NullDecimal
	Status            PaymentStatus
	CustomOrderID     string
	PaymentTime       *time.Time
}

// FlattenTransaction projects an order and one of its statuses into a Transaction.
func FlattenTransaction(order Order, status OrderStatus) Transaction {
	return Transaction{
		CollectID:         status.CollectID,
		SchoolID:          order.SchoolID,
		StudentName:       order.Student.Name,
		StudentID:         order.Student.ID,
		StudentEmail:      order.Student.Email,
		Gateway:           order.GatewayName,
		OrderAmount:       status.OrderAmount,
		TransactionAmount: status.TransactionAmount,
		Status:            status.Status,
		CustomOrderID:     order.CustomOrderID,
		PaymentTime:       status.PaymentTime,
	}
}

// TransactionPage is a single page of transactions with totals.
type TransactionPage struct {
	Transactions []Transaction
	Page         int
	Pages        int
	Total        int64
}

// PageCount returns ceil(total/limit), zero when there is nothing to page.
func PageCount(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	l := int64(limit)
	return int((total + l - 1) / l)
}

// TransactionSummary aggregates totals over a filtered transaction set.
type TransactionSummary struct {
	Transactions int64
	TotalAmount  decimal.Decimal
	SuccessCount int64
	MinAmount    decimal.Decimal
	MaxAmount    decimal.Decimal
	Schools      int64
}

// SuccessRate returns the share of successful transactions in percent.
func (s TransactionSummary) SuccessRate() float64 {
	if s.Transactions == 0 {
		return 0
	}
	return float64(s.SuccessCount) * 100 / float64(s.Transactions)
}

// MonthlyStat groups transactions created in one calendar month.
type MonthlyStat struct {
	Month        time.Time
	Transactions int64
	Amount       decimal.Decimal
	Success      int64
	Pending      int64
	Failed       int64
}

// SchoolStat is a per-school amount total.
type SchoolStat struct {
	SchoolID     string
	Transactions int64
	Amount       decimal.Decimal
}

// TransactionStats is the dashboard report over a filtered transaction set.
type TransactionStats struct {
	Summary    TransactionSummary
	Monthly    []MonthlyStat
	TopSchools []SchoolStat
}
