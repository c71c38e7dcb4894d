package handlers

import (
	"net/http"

	"bookinghub/middleware"
	"bookinghub/services/identity"
	"bookinghub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type IdentityHandler struct {
	svc *identity.Service
}

func NewIdentityHandler(svc *identity.Service) *IdentityHandler {
	return &IdentityHandler{svc: svc}
}

// CreateSessionHandler handles POST /api/identity/verification-session.
func (h *IdentityHandler) CreateSessionHandler(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	var req identity.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewValidationError("", "invalid request body"))
		return
	}
	res, err := h.svc.CreateSession(c.Request.Context(), user, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"id":            res.ID,
		"client_secret": res.ClientSecret,
		"url":           res.URL,
		"status":        res.Status,
		"resumed":       res.Resumed,
	})
}

// WebhookHandler handles POST /api/webhooks/identity.
func (h *IdentityHandler) WebhookHandler(c *gin.Context) {
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
	getLogger(c).Info("Identity webhook handled",
		zap.String("eventId", res.EventID), zap.String("status", res.Status), zap.Bool("applied", res.Applied))
	utils.JSONSuccess(c, http.StatusOK, gin.H{"received": true, "result": res})
}
