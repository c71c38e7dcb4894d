package handlers

import (
	"net/http"

	"bookinghub/services/contact"
	"bookinghub/utils"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	svc *contact.Service
}

func NewContactHandler(svc *contact.Service) *ContactHandler {
	return &ContactHandler{svc: svc}
}

// SubmitHandler handles POST /api/contact.
func (h *ContactHandler) SubmitHandler(c *gin.Context) {
	var req contact.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewValidationError("", "invalid request body"))
		return
	}
	sub, err := h.svc.Submit(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, gin.H{"id": sub.ID, "delivered": sub.Delivered})
}
