package handlers

import (
	"net/http"
	"strconv"

	"bookinghub/middleware"
	"bookinghub/models"
	"bookinghub/services/booking"
	"bookinghub/utils"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	svc booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// RecentHandler handles GET /api/bookings?role=&limit=.
func (h *BookingHandler) RecentHandler(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	rows, err := h.svc.Recent(c.Request.Context(), user, models.ListenerRole(c.Query("role")), limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"bookings": rows})
}

// ReassignHandler handles PATCH /api/bookings/:id/reassign.
func (h *BookingHandler) ReassignHandler(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	var req struct {
		ProviderID string `json:"provider_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewValidationError("", "invalid request body"))
		return
	}
	updated, err := h.svc.Reassign(c.Request.Context(), user, c.Param("id"), req.ProviderID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"booking": updated})
}
