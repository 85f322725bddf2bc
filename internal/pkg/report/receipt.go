package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/polkiloo/schoolpay/internal/domain/model"
)

// PDFContentType is the media type of rendered receipts.
const PDFContentType = "application/pdf"

// WriteReceiptPDF renders a one-page payment receipt for the transaction.
func WriteReceiptPDF(w io.Writer, tx model.Transaction, currency string) error {
	currency = strings.ToUpper(currency)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payment receipt "+tx.CustomOrderID, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Payment Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range receiptLines(tx, currency) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(55, 8, line[0], "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, line[1], "1", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "This receipt reflects the latest recorded status of the payment.", "", "L", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}
	return nil
}

func receiptLines(tx model.Transaction, currency string) [][2]string {
	captured := "-"
	if tx.TransactionAmount.Valid {
		captured = tx.TransactionAmount.Decimal.StringFixed(2) + " " + currency
	}
	paidAt := formatTime(tx.PaymentTime)
	if paidAt == "" {
		paidAt = "-"
	}
	return [][2]string{
		{"Order ID", tx.CustomOrderID},
		{"Collect ID", tx.CollectID},
		{"School ID", tx.SchoolID},
		{"Student", tx.StudentName},
		{"Student ID", tx.StudentID},
		{"Student Email", tx.StudentEmail},
		{"Gateway", tx.Gateway},
		{"Order Amount", tx.OrderAmount.StringFixed(2) + " " + currency},
		{"Amount Paid", captured},
		{"Status", string(tx.Status)},
		{"Payment Time", paidAt},
	}
}
