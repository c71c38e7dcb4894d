package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// getClientIP keys rate limits and request logs. The first X-Forwarded-For
// hop wins, then X-Real-IP, then gin's own view of the peer.
func getClientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); realIP != "" {
		return realIP
	}
	return c.ClientIP()
}
