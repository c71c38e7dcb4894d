package handlers

import (
	"net/http"

	"bookinghub/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles GET /health with the latest dependency snapshot.
// Any unhealthy dependency or registered component turns the response into a 503.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	healthy := status.Healthy()
	code := http.StatusOK
	state := "ok"
	if !healthy {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "checks": status})
}
