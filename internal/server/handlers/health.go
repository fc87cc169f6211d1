package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleHealthCheck returns the basic health status of the service
func (h *Handlers) HandleHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "repertoire",
	})
}
