package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/schoolpay/internal/domain/errors"
	"github.com/polkiloo/schoolpay/internal/domain/model"
	"github.com/polkiloo/schoolpay/internal/server/http/dto"
)

const (
	signatureHeader = "Stripe-Signature"
	maxWebhookBody  = 64 << 10
)

// PaymentHandler serves payment creation, status checks and gateway webhooks.
type PaymentHandler struct {
	facade PaymentFacade
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade) *PaymentHandler {
	return &PaymentHandler{facade: facade}
}

// Create handles POST /api/payments/create-payment.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.facade.CreatePayment(c.Request.Context(), toPaymentRequest(req))
	if err != nil {
		respondError(c, err, "failed to create payment")
		return
	}

	c.JSON(http.StatusOK, dto.CreatePaymentResponse{
		ClientSecret:  created.ClientSecret,
		OrderID:       created.OrderID,
		CustomOrderID: created.CustomOrderID,
	})
}

// Status handles GET /api/payments/status/:order_id.
func (h *PaymentHandler) Status(c *gin.Context) {
	status, err := h.facade.PaymentStatus(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			_ = c.Error(err)
			respondMessage(c, http.StatusNotFound, "order status not found")
			return
		}
		respondError(c, err, "failed to fetch payment status")
		return
	}
	c.JSON(http.StatusOK, dto.PaymentStatusResponse{Status: string(status)})
}

// Webhook handles POST /api/webhook. The raw body is needed for signature
// verification, so it is read before any binding.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		_ = c.Error(err)
		respondMessage(c, http.StatusBadRequest, "unreadable webhook payload")
		return
	}

	if err := h.facade.HandleWebhook(c.Request.Context(), payload, c.GetHeader(signatureHeader)); err != nil {
		respondError(c, err, "failed to process webhook")
		return
	}
	c.JSON(http.StatusOK, dto.WebhookResponse{Received: true})
}

func toPaymentRequest(req dto.CreatePaymentRequest) model.PaymentRequest {
	out := model.PaymentRequest{SchoolID: req.SchoolID, Amount: decimal.Zero}
	if req.Amount != nil {
		out.Amount = *req.Amount
	}
	if req.StudentInfo != nil {
		out.Student = model.StudentInfo{
			Name:  req.StudentInfo.Name,
			ID:    req.StudentInfo.ID,
			Email: req.StudentInfo.Email,
		}
	}
	return out
}
