package dto

import "time"

// TransactionResponse is a flattened order with its latest status.
type TransactionResponse struct {
	CollectID         string     `json:"collect_id"`
	SchoolID          string     `json:"school_id"`
	StudentName       string     `json:"student_name"`
	StudentID         string     `json:"student_id"`
	StudentEmail      string     `json:"student_email"`
	Gateway           string     `json:"gateway"`
	OrderAmount       float64    `json:"order_amount"`
	TransactionAmount *float64   `json:"transaction_amount"`
	Status            string     `json:"status"`
	CustomOrderID     string     `json:"custom_order_id"`
	PaymentTime       *time.Time `json:"payment_time"`
}

// TransactionPageResponse is one page of the transaction list.
type TransactionPageResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Page         int                   `json:"page"`
	Pages        int                   `json:"pages"`
	Total        int64                 `json:"total"`
}

// SummaryResponse aggregates the filtered transaction set.
type SummaryResponse struct {
	Transactions int64   `json:"transactions"`
	TotalAmount  float64 `json:"total_amount"`
	SuccessCount int64   `json:"success_count"`
	SuccessRate  float64 `json:"success_rate"`
	MinAmount    float64 `json:"min_amount"`
	MaxAmount    float64 `json:"max_amount"`
	Schools      int64   `json:"schools"`
}

// MonthlyStatResponse is one month of the breakdown.
type MonthlyStatResponse struct {
	Month        string  `json:"month"`
	Transactions int64   `json:"transactions"`
	Amount       float64 `json:"amount"`
	Success      int64   `json:"success"`
	Pending      int64   `json:"pending"`
	Failed       int64   `json:"failed"`
}

// SchoolStatResponse is one entry of the top schools ranking.
type SchoolStatResponse struct {
	SchoolID     string  `json:"school_id"`
	Transactions int64   `json:"transactions"`
	Amount       float64 `json:"amount"`
}

// StatsResponse is the dashboard report.
type StatsResponse struct {
	Summary    SummaryResponse       `json:"summary"`
	Monthly    []MonthlyStatResponse `json:"monthly"`
	TopSchools []SchoolStatResponse  `json:"top_schools"`
}
