package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/schoolpay/internal/domain/errors"
	"github.com/polkiloo/schoolpay/internal/domain/model"
	"github.com/polkiloo/schoolpay/internal/pkg/report"
	"github.com/polkiloo/schoolpay/internal/server/http/dto"
	"github.com/polkiloo/schoolpay/internal/usecase"
)

// TransactionHandler serves the reporting endpoints.
type TransactionHandler struct {
	facade   TransactionFacade
	currency string
}

// NewTransactionHandler constructs TransactionHandler. currency labels amounts on receipts.
func NewTransactionHandler(facade TransactionFacade, currency string) *TransactionHandler {
	return &TransactionHandler{facade: facade, currency: currency}
}

// List handles GET /api/orders/transactions.
func (h *TransactionHandler) List(c *gin.Context) {
	query, err := usecase.ParseTransactionQuery(queryParams(c))
	if err != nil {
		respondError(c, err, "failed to fetch transactions")
		return
	}

	page, err := h.facade.Transactions(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "failed to fetch transactions")
		return
	}
	c.JSON(http.StatusOK, toPageResponse(page))
}

// BySchool handles GET /api/orders/school/:schoolId.
func (h *TransactionHandler) BySchool(c *gin.Context) {
	pagination, err := usecase.ParsePagination(c.Query("page"), c.Query("limit"))
	if err != nil {
		respondError(c, err, "failed to fetch school transactions")
		return
	}

	page, err := h.facade.SchoolTransactions(c.Request.Context(), c.Param("schoolId"), pagination)
	if err != nil {
		respondError(c, err, "failed to fetch school transactions")
		return
	}
	c.JSON(http.StatusOK, toPageResponse(page))
}

// Status handles GET /api/orders/status/:custom_order_id.
func (h *TransactionHandler) Status(c *gin.Context) {
	tx, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toTransactionResponse(*tx))
}

// Receipt handles GET /api/orders/status/:custom_order_id/receipt.
func (h *TransactionHandler) Receipt(c *gin.Context) {
	tx, ok := h.lookup(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteReceiptPDF(&buf, *tx, h.currency); err != nil {
		respondError(c, err, "failed to render receipt")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "receipt-"+tx.CustomOrderID+".pdf"))
	c.Data(http.StatusOK, report.PDFContentType, buf.Bytes())
}

// Stats handles GET /api/orders/stats.
func (h *TransactionHandler) Stats(c *gin.Context) {
	query, err := usecase.ParseTransactionQuery(queryParams(c))
	if err != nil {
		respondError(c, err, "failed to compute transaction stats")
		return
	}

	stats, err := h.facade.TransactionStats(c.Request.Context(), query.Filter)
	if err != nil {
		respondError(c, err, "failed to compute transaction stats")
		return
	}
	c.JSON(http.StatusOK, toStatsResponse(stats))
}

// Export handles GET /api/orders/transactions/export.
func (h *TransactionHandler) Export(c *gin.Context) {
	query, err := usecase.ParseTransactionQuery(queryParams(c))
	if err != nil {
		respondError(c, err, "failed to export transactions")
		return
	}

	rows, err := h.facade.ExportTransactions(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "failed to export transactions")
		return
	}

	var buf bytes.Buffer
	if err := report.WriteTransactionsXLSX(&buf, rows); err != nil {
		respondError(c, err, "failed to export transactions")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="transactions.xlsx"`)
	c.Data(http.StatusOK, report.XLSXContentType, buf.Bytes())
}

func (h *TransactionHandler) lookup(c *gin.Context) (*model.Transaction, bool) {
	tx, err := h.facade.TransactionStatus(c.Request.Context(), c.Param("custom_order_id"))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			_ = c.Error(err)
			respondMessage(c, http.StatusNotFound, "order status not found")
			return nil, false
		}
		respondError(c, err, "failed to fetch transaction status")
		return nil, false
	}
	return tx, true
}

func queryParams(c *gin.Context) model.TransactionQueryParams {
	return model.TransactionQueryParams{
		Page:      c.Query("page"),
		Limit:     c.Query("limit"),
		Sort:      c.Query("sort"),
		Order:     c.Query("order"),
		Status:    c.Query("status"),
		SchoolID:  c.Query("school_id"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}
}

func toPageResponse(page *model.TransactionPage) dto.TransactionPageResponse {
	items := make([]dto.TransactionResponse, 0, len(page.Transactions))
	for _, tx := range page.Transactions {
		items = append(items, toTransactionResponse(tx))
	}
	return dto.TransactionPageResponse{
		Transactions: items,
		Page:         page.Page,
		Pages:        page.Pages,
		Total:        page.Total,
	}
}

func toTransactionResponse(tx model.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		CollectID:     tx.CollectID,
		SchoolID:      tx.SchoolID,
		StudentName:   tx.StudentName,
		StudentID:     tx.StudentID,
		StudentEmail:  tx.StudentEmail,
		Gateway:       tx.Gateway,
		OrderAmount:   tx.OrderAmount.InexactFloat64(),
		Status:        string(tx.Status),
		CustomOrderID: tx.CustomOrderID,
		PaymentTime:   tx.PaymentTime,
	}
	if tx.TransactionAmount.Valid {
		amount := tx.TransactionAmount.Decimal.InexactFloat64()
		resp.TransactionAmount = &amount
	}
	return resp
}

func toStatsResponse(stats *model.TransactionStats) dto.StatsResponse {
	s := stats.Summary
	resp := dto.StatsResponse{
		Summary: dto.SummaryResponse{
			Transactions: s.Transactions,
			TotalAmount:  s.TotalAmount.InexactFloat64(),
			SuccessCount: s.SuccessCount,
			SuccessRate:  s.SuccessRate(),
			MinAmount:    s.MinAmount.InexactFloat64(),
			MaxAmount:    s.MaxAmount.InexactFloat64(),
			Schools:      s.Schools,
		},
		Monthly:    make([]dto.MonthlyStatResponse, 0, len(stats.Monthly)),
		TopSchools: make([]dto.SchoolStatResponse, 0, len(stats.TopSchools)),
	}
	for _, m := range stats.Monthly {
		resp.Monthly = append(resp.Monthly, dto.MonthlyStatResponse{
			Month:        m.Month.Format("2006-01"),
			Transactions: m.Transactions,
			Amount:       m.Amount.InexactFloat64(),
			Success:      m.Success,
			Pending:      m.Pending,
			Failed:       m.Failed,
		})
	}
	for _, school := range stats.TopSchools {
		resp.TopSchools = append(resp.TopSchools, dto.SchoolStatResponse{
			SchoolID:     school.SchoolID,
			Transactions: school.Transactions,
			Amount:       school.Amount.InexactFloat64(),
		})
	}
	return resp
}
