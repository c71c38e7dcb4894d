package handlers

import (
	"net/http"

	"bookinghub/middleware"
	"bookinghub/services/banking"
	"bookinghub/utils"

	"github.com/gin-gonic/gin"
)

type BankingHandler struct {
	svc *banking.Service
}

func NewBankingHandler(svc *banking.Service) *BankingHandler {
	return &BankingHandler{svc: svc}
}

// LinkTokenHandler handles POST /api/banking/link-token.
func (h *BankingHandler) LinkTokenHandler(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	token, err := h.svc.CreateLinkToken(c.Request.Context(), user)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"link_token": token.LinkToken, "expiration": token.Expiration})
}

// ExchangeHandler handles POST /api/banking/exchange.
func (h *BankingHandler) ExchangeHandler(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	var req banking.ExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewValidationError("", "invalid request body"))
		return
	}
	link, err := h.svc.Exchange(c.Request.Context(), user, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"link": link})
}

// LinksHandler handles GET /api/banking/links.
func (h *BankingHandler) LinksHandler(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	links, err := h.svc.Links(c.Request.Context(), user)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"links": links})
}
