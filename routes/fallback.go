package routes

import (
	"net/http"

	"bookinghub/utils"

	"github.com/gin-gonic/gin"
)

func methodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, utils.ErrorResponse{Error: "Method not allowed"})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, utils.ErrorResponse{Error: "Not found"})
}
