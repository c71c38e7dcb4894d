package handlers

import (
	"context"
	"net/http"
	"strings"

	"bookinghub/middleware"
	"bookinghub/services/auth"
	"bookinghub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionService is the session store as the auth endpoints use it.
type SessionService interface {
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
	SignOut(ctx context.Context, token string) error
}

// DeviceRegistry stores a push token on the account.
type DeviceRegistry interface {
	SetDeviceToken(ctx context.Context, id, token string) error
}

type AuthHandler struct {
	sessions SessionService
	devices  DeviceRegistry
}

func NewAuthHandler(sessions SessionService, devices DeviceRegistry) *AuthHandler {
	return &AuthHandler{sessions: sessions, devices: devices}
}

// SignInHandler handles POST /api/auth/signin.
func (h *AuthHandler) SignInHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewValidationError("", "invalid request body"))
		return
	}
	session, err := h.sessions.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	getLogger(c).Info("Signed in", zap.String("userID", session.User.ID))
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"token":       session.Token,
		"expiresAt":   session.ExpiresAt,
		"user":        session.User,
		"permissions": auth.PermissionsFor(auth.Role(session.User.ProviderRole)),
	})
}

// SignOutHandler handles POST /api/auth/signout.
func (h *AuthHandler) SignOutHandler(c *gin.Context) {
	if err := h.sessions.SignOut(c.Request.Context(), middleware.SessionToken(c)); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, nil)
}

// MeHandler handles GET /api/auth/me.
func (h *AuthHandler) MeHandler(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.RespondError(c, utils.Unauthorized("authentication required"))
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"user":        user,
		"permissions": auth.PermissionsFor(auth.Role(user.ProviderRole)),
	})
}

// RegisterDeviceHandler handles POST /api/auth/device.
func (h *AuthHandler) RegisterDeviceHandler(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.RespondError(c, utils.Unauthorized("authentication required"))
		return
	}
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		utils.RespondError(c, utils.NewValidationError("token", "token is required"))
		return
	}
	if err := h.devices.SetDeviceToken(c.Request.Context(), user.ID, strings.TrimSpace(req.Token)); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, nil)
}
