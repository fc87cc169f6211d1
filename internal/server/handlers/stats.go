package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleStats returns collection-level counts.
func (h *Handlers) HandleStats(c *gin.Context) {
	stats, err := h.store.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to compute stats",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_recordings": stats.TotalRecordings,
		"in_library":       stats.InLibrary,
		"unique_composers": stats.UniqueComposers,
	})
}
