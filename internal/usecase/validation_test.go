package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/schoolpay/internal/domain/errors"
	"github.com/polkiloo/schoolpay/internal/domain/model"
)

func TestParseTransactionQueryDefaults(t *testing.T) {
	q, err := ParseTransactionQuery(model.TransactionQueryParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Page.Page != 1 || q.Page.Limit != 10 {
		t.Fatalf("unexpected pagination %+v", q.Page)
	}
	if q.Sort.Field != model.SortByPaymentTime || q.Sort.Order != model.SortDesc {
		t.Fatalf("unexpected sort %+v", q.Sort)
	}
	if q.Filter.Statuses != nil || q.Filter.SchoolID != "" || q.Filter.From != nil || q.Filter.To != nil {
		t.Fatalf("expected empty filter, got %+v", q.Filter)
	}
}

func TestParseTransactionQueryValues(t *testing.T) {
	q, err := ParseTransactionQuery(model.TransactionQueryParams{
		Page:      "3",
		Limit:     "5000",
		Sort:      "order_amount",
		Order:     "ASC",
		Status:    "success, ,pending,",
		SchoolID:  " school-1 ",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Page.Page != 3 || q.Page.Limit != model.MaxPageLimit {
		t.Fatalf("unexpected pagination %+v", q.Page)
	}
	if q.Sort.Field != model.SortByOrderAmount || q.Sort.Order != model.SortAsc {
		t.Fatalf("unexpected sort %+v", q.Sort)
	}
	if len(q.Filter.Statuses) != 2 || q.Filter.Statuses[0] != model.PaymentStatusSuccess || q.Filter.Statuses[1] != model.PaymentStatusPending {
		t.Fatalf("unexpected statuses %v", q.Filter.Statuses)
	}
	if q.Filter.SchoolID != "school-1" {
		t.Fatalf("unexpected school %q", q.Filter.SchoolID)
	}
	if !q.Filter.From.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from %v", q.Filter.From)
	}
	wantTo := time.Date(2024, 1, 31, 23, 59, 59, 999999999, time.UTC)
	if !q.Filter.To.Equal(wantTo) {
		t.Fatalf("expected end date to cover the whole day, got %v", q.Filter.To)
	}
}

func TestParseTransactionQueryRFC3339EndDateIsExact(t *testing.T) {
	q, err := ParseTransactionQuery(model.TransactionQueryParams{EndDate: "2024-01-31T12:00:00Z"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.Filter.To.Equal(time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected to %v", q.Filter.To)
	}
}

func TestParseTransactionQueryRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		params model.TransactionQueryParams
	}{
		{name: "page not numeric", params: model.TransactionQueryParams{Page: "abc"}},
		{name: "page zero", params: model.TransactionQueryParams{Page: "0"}},
		{name: "limit negative", params: model.TransactionQueryParams{Limit: "-1"}},
		{name: "unknown sort", params: model.TransactionQueryParams{Sort: "password"}},
		{name: "unknown order", params: model.TransactionQueryParams{Order: "sideways"}},
		{name: "bad start date", params: model.TransactionQueryParams{StartDate: "yesterday"}},
		{name: "bad end date", params: model.TransactionQueryParams{EndDate: "2024-13-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTransactionQuery(tt.params); !errors.Is(err, domainErrors.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestParsePaginationHugePage(t *testing.T) {
	page, err := ParsePagination("9223372036854775807", "10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Offset() < 0 {
		t.Fatalf("expected non-negative offset, got %d", page.Offset())
	}
}

func TestValidatePaymentRequest(t *testing.T) {
	valid := model.PaymentRequest{
		SchoolID: "school-1",
		Amount:   decimal.NewFromInt(500),
		Student:  model.StudentInfo{Name: "Asha", ID: "STU-1", Email: "asha@example.com"},
	}
	if err := ValidatePaymentRequest(valid); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
	largest := valid
	largest.Amount = decimal.RequireFromString("999999.99")
	if err := ValidatePaymentRequest(largest); err != nil {
		t.Fatalf("expected maximum amount to be accepted, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*model.PaymentRequest)
	}{
		{name: "missing school", mutate: func(r *model.PaymentRequest) { r.SchoolID = " " }},
		{name: "zero amount", mutate: func(r *model.PaymentRequest) { r.Amount = decimal.Zero }},
		{name: "negative amount", mutate: func(r *model.PaymentRequest) { r.Amount = decimal.NewFromInt(-5) }},
		{name: "sub-unit amount", mutate: func(r *model.PaymentRequest) { r.Amount = decimal.RequireFromString("0.001") }},
		{name: "amount above gateway maximum", mutate: func(r *model.PaymentRequest) { r.Amount = decimal.RequireFromString("1000000") }},
		{name: "amount overflowing minor units", mutate: func(r *model.PaymentRequest) {
			r.Amount = decimal.RequireFromString("184467440737095516.21")
		}},
		{name: "missing student name", mutate: func(r *model.PaymentRequest) { r.Student.Name = "" }},
		{name: "missing student id", mutate: func(r *model.PaymentRequest) { r.Student.ID = "" }},
		{name: "invalid student email", mutate: func(r *model.PaymentRequest) { r.Student.Email = "nope" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			if err := ValidatePaymentRequest(req); !errors.Is(err, domainErrors.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}
