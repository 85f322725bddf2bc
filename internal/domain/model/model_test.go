package model

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestPageCount(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 5, 5},
		{5, 0, 0},
	}
	for _, tc := range cases {
		if got := PageCount(tc.total, tc.limit); got != tc.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}

func TestPaginationOffset(t *testing.T) {
	if got := (Pagination{Page: 1, Limit: 10}).Offset(); got != 0 {
		t.Fatalf("expected offset 0, got %d", got)
	}
	if got := (Pagination{Page: 3, Limit: 10}).Offset(); got != 20 {
		t.Fatalf("expected offset 20, got %d", got)
	}
	if got := (Pagination{Page: 0, Limit: 10}).Offset(); got != 0 {
		t.Fatalf("expected offset 0 for page 0, got %d", got)
	}
	if got := (Pagination{Page: math.MaxInt, Limit: 10}).Offset(); got != math.MaxInt {
		t.Fatalf("expected saturated offset, got %d", got)
	}
}

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		amount string
		want   int64
	}{
		{"500", 50000},
		{"10.5", 1050},
		{"0.015", 2},
		{"99.99", 9999},
	}
	for _, tc := range cases {
		if got := ToMinorUnits(decimal.RequireFromString(tc.amount)); got != tc.want {
			t.Errorf("ToMinorUnits(%s) = %d, want %d", tc.amount, got, tc.want)
		}
	}

	if ExceedsMaxAmount(decimal.RequireFromString("999999.99")) {
		t.Fatal("expected 999999.99 to fit")
	}
	for _, amount := range []string{"999999.995", "1000000", "184467440737095516.21"} {
		if !ExceedsMaxAmount(decimal.RequireFromString(amount)) {
			t.Errorf("expected %s to exceed the maximum", amount)
		}
	}

	if got := FromMinorUnits(1050); !got.Equal(decimal.RequireFromString("10.5")) {
		t.Fatalf("expected 10.5, got %s", got)
	}
}

func TestSortFieldValid(t *testing.T) {
	for _, f := range SortFields {
		if !f.Valid() {
			t.Errorf("expected %q to be valid", f)
		}
	}
	if SortField("password_hash").Valid() {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestNormalizePaymentStatus(t *testing.T) {
	if got := NormalizePaymentStatus(" success "); got != PaymentStatusSuccess {
		t.Fatalf("expected SUCCESS, got %q", got)
	}
}

func TestSuccessRate(t *testing.T) {
	if rate := (TransactionSummary{}).SuccessRate(); rate != 0 {
		t.Fatalf("expected zero rate, got %v", rate)
	}
	if rate := (TransactionSummary{Transactions: 4, SuccessCount: 1}).SuccessRate(); rate != 25 {
		t.Fatalf("expected 25, got %v", rate)
	}
}

func TestFlattenTransaction(t *testing.T) {
	paid := time.Unix(1700000000, 0).UTC()
	order := Order{
		ID:            "o1",
		SchoolID:      "S1",
		Student:       StudentInfo{Name: "A", ID: "ID1", Email: "a@x.com"},
		CustomOrderID: "c1",
		GatewayName:   GatewayStripe,
	}
	status := OrderStatus{
		CollectID:   "o1",
		OrderAmount: decimal.NewFromInt(500),
		Status:      PaymentStatusSuccess,
		PaymentTime: &paid,
	}

	tx := FlattenTransaction(order, status)
	if tx.CollectID != "o1" || tx.CustomOrderID != "c1" || tx.StudentEmail != "a@x.com" || tx.Gateway != GatewayStripe {
		t.Fatalf("unexpected projection: %+v", tx)
	}
	if tx.PaymentTime == nil || !tx.PaymentTime.Equal(paid) {
		t.Fatalf("unexpected payment time: %v", tx.PaymentTime)
	}
}
