package handlers

import (
	"io"
	"net/http"

	"bookinghub/models"
	"bookinghub/services/payment"
	"bookinghub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxWebhookBytes bounds a webhook body; the processor's events are far smaller.
const maxWebhookBytes = 65536

type PaymentHandler struct {
	svc *payment.Service
}

func NewPaymentHandler(svc *payment.Service) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// CreateIntentHandler handles POST /api/payments/intent.
func (h *PaymentHandler) CreateIntentHandler(c *gin.Context) {
	var req models.PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewValidationError("", "invalid request body"))
		return
	}
	res, err := h.svc.CreateIntent(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"clientSecret":    res.ClientSecret,
		"paymentIntentId": res.PaymentIntentID,
		"amount":          res.Amount,
		"currency":        res.Currency,
	})
}

// CreateCheckoutSessionHandler handles POST /api/payments/checkout-session.
func (h *PaymentHandler) CreateCheckoutSessionHandler(c *gin.Context) {
	var req models.CheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewValidationError("", "invalid request body"))
		return
	}
	res, err := h.svc.CreateCheckoutSession(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"sessionId": res.SessionID, "url": res.URL})
}

// WebhookHandler handles POST /api/webhooks/stripe. The body is read raw
// because the signature covers the exact bytes.
func (h *PaymentHandler) WebhookHandler(c *gin.Context) {
	payload, err := readWebhookBody(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	res, err := h.svc.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	getLogger(c).Info("Payment webhook handled",
		zap.String("eventId", res.EventID), zap.String("type", res.Type), zap.Bool("applied", res.Applied))
	utils.JSONSuccess(c, http.StatusOK, gin.H{"received": true, "result": res})
}

func readWebhookBody(c *gin.Context) ([]byte, error) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes))
	if err != nil {
		return nil, utils.NewValidationError("", "unreadable webhook body")
	}
	return payload, nil
}
