package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/polkiloo/schoolpay/internal/domain/model"
)

func sampleTransactions() []model.Transaction {
	paid := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	return []model.Transaction{
		{
			CollectID:         "order-1",
			CustomOrderID:     "custom-1",
			SchoolID:          "school-1",
			StudentName:       "Asha",
			StudentID:         "STU-1",
			StudentEmail:      "asha@example.com",
			Gateway:           model.GatewayStripe,
			OrderAmount:       decimal.RequireFromString("1500.5"),
			TransactionAmount: decimal.NewNullDecimal(decimal.RequireFromString("1500.5")),
			Status:            model.PaymentStatusSuccess,
			PaymentTime:       &paid,
		},
		{
			CollectID:     "order-2",
			CustomOrderID: "custom-2",
			SchoolID:      "school-2",
			StudentName:   "Ravi",
			Gateway:       model.GatewayStripe,
			OrderAmount:   decimal.NewFromInt(700),
			Status:        model.PaymentStatusPending,
		},
	}
}

func TestWriteTransactionsXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTransactionsXLSX(&buf, sampleTransactions()); err != nil {
		t.Fatalf("export returned error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(transactionSheet)
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and two rows, got %d", len(rows))
	}
	if rows[0][0] != "Collect ID" || rows[0][len(transactionHeader)-1] != "Payment Time" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "order-1" || rows[1][9] != "SUCCESS" || rows[1][10] != "2024-03-15T10:30:00Z" {
		t.Fatalf("unexpected first row %v", rows[1])
	}
	if rows[2][1] != "custom-2" || rows[2][9] != "PENDING" {
		t.Fatalf("unexpected second row %v", rows[2])
	}
}

func TestWriteTransactionsXLSXEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTransactionsXLSX(&buf, nil); err != nil {
		t.Fatalf("export returned error: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(transactionSheet)
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
}

func TestWriteReceiptPDF(t *testing.T) {
	for _, tx := range sampleTransactions() {
		var buf bytes.Buffer
		if err := WriteReceiptPDF(&buf, tx, "inr"); err != nil {
			t.Fatalf("receipt returned error: %v", err)
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
			t.Fatalf("expected PDF output for %s", tx.CollectID)
		}
	}
}

func TestReceiptLines(t *testing.T) {
	txs := sampleTransactions()
	lines := receiptLines(txs[0], "INR")
	got := map[string]string{}
	for _, l := range lines {
		got[l[0]] = l[1]
	}
	if got["Order Amount"] != "1500.50 INR" || got["Amount Paid"] != "1500.50 INR" {
		t.Fatalf("unexpected amounts %v", got)
	}

	lines = receiptLines(txs[1], "INR")
	for _, l := range lines {
		if (l[0] == "Amount Paid" || l[0] == "Payment Time") && l[1] != "-" {
			t.Fatalf("expected placeholder for %s, got %q", l[0], l[1])
		}
	}
}
