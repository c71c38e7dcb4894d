package middleware

import (
	"context"
	"strings"

	"bookinghub/models"
	"bookinghub/services/auth"
	"bookinghub/utils"

	"github.com/gin-gonic/gin"
)

const (
	// ContextUserKey holds the *models.AuthUser of an authenticated request.
	ContextUserKey = "authUser"
	// ContextTokenKey holds the raw session token.
	ContextTokenKey = "sessionToken"
)

// SessionLookup resolves a session token to its signed-in user.
type SessionLookup interface {
	Lookup(ctx context.Context, token string) (*models.AuthUser, error)
}

// SessionAuthMiddleware requires a live session. With allowQuery the token
// may also come from the access_token query parameter, which is how browser
// websocket clients authenticate.
func SessionAuthMiddleware(sessions SessionLookup, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c, allowQuery)
		if token == "" {
			utils.RespondError(c, utils.Unauthorized("Missing or invalid Authorization header"))
			return
		}

		user, err := sessions.Lookup(c.Request.Context(), token)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextTokenKey, token)
		c.Request = c.Request.WithContext(auth.WithUser(c.Request.Context(), user))
		c.Next()
	}
}

func bearerToken(c *gin.Context, allowQuery bool) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if allowQuery {
		return c.Query("access_token")
	}
	return ""
}

// CurrentUser returns the user set by SessionAuthMiddleware.
func CurrentUser(c *gin.Context) (*models.AuthUser, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.AuthUser)
	return user, ok && user != nil
}

// SessionToken returns the raw token of the current session.
func SessionToken(c *gin.Context) string {
	return c.GetString(ContextTokenKey)
}

// RequirePermission rejects callers whose role lacks p. It must run after
// SessionAuthMiddleware.
func RequirePermission(p auth.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			utils.RespondError(c, utils.Unauthorized("authentication required"))
			return
		}
		if !auth.HasPermission(auth.Role(user.ProviderRole), p) {
			utils.RespondError(c, utils.Forbidden("missing permission "+string(p)))
			return
		}
		c.Next()
	}
}
