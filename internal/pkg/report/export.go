package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/polkiloo/schoolpay/internal/domain/model"
)

const (
	// XLSXContentType is the media type of exported workbooks.
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	transactionSheet = "Transactions"
)

var transactionHeader = []interface{}{
	"Collect ID",
	"Custom Order ID",
	"School ID",
	"Student Name",
	"Student ID",
	"Student Email",
	"Gateway",
	"Order Amount",
	"Transaction Amount",
	"Status",
	"Payment Time",
}

// WriteTransactionsXLSX renders transactions as a single-sheet workbook.
func WriteTransactionsXLSX(w io.Writer, transactions []model.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", transactionSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(transactionSheet)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}
	if err := sw.SetRow("A1", transactionHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, tx := range transactions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, transactionRow(tx)); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush rows: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func transactionRow(tx model.Transaction) []interface{} {
	var captured interface{} = ""
	if tx.TransactionAmount.Valid {
		captured = tx.TransactionAmount.Decimal.InexactFloat64()
	}
	return []interface{}{
		tx.CollectID,
		tx.CustomOrderID,
		tx.SchoolID,
		tx.StudentName,
		tx.StudentID,
		tx.StudentEmail,
		tx.Gateway,
		tx.OrderAmount.InexactFloat64(),
		captured,
		string(tx.Status),
		formatTime(tx.PaymentTime),
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
