package handlers

import (
	"net/http"

	"bookinghub/middleware"
	"bookinghub/services/messaging"
	"bookinghub/utils"

	"github.com/gin-gonic/gin"
)

type MessagingHandler struct {
	bridge *messaging.Bridge
}

func NewMessagingHandler(bridge *messaging.Bridge) *MessagingHandler {
	return &MessagingHandler{bridge: bridge}
}

// DispatchHandler handles POST /api/messaging. The body's action selects the
// operation.
func (h *MessagingHandler) DispatchHandler(c *gin.Context) {
	var req messaging.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewValidationError("", "invalid request body"))
		return
	}
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.RespondError(c, utils.Unauthorized("authentication required"))
		return
	}
	if req.UserName == "" {
		req.UserName = user.FullName()
	}

	cmd, err := req.Command()
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	// Callers act only as their own account, provider or business identity.
	for _, identity := range req.ActingIdentities() {
		if !messaging.IdentityOwnedBy(identity, user.ID, user.ProviderID, user.BusinessID) {
			utils.RespondError(c, utils.Forbidden("identity does not belong to the caller"))
			return
		}
	}
	res, err := h.bridge.Dispatch(c.Request.Context(), cmd)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"action": cmd.Action(), "data": res})
}
