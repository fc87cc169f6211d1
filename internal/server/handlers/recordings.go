package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/arjenvw/repertoire/internal/catalog"
)

// HandleListRecordings returns recordings matching the query filters. All
// filters are case-insensitive substring matches and are combined with AND.
func (h *Handlers) HandleListRecordings(c *gin.Context) {
	filter := catalog.Filter{
		Composer: c.Query("composer"),
		Work:     c.Query("work"),
		Label:    c.Query("label"),
	}

	if library := c.Query("library"); library != "" {
		inLibrary, err := strconv.ParseBool(library)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid library filter, expected true or false",
			})
			return
		}
		filter.InLibrary = &inLibrary
	}

	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid limit, expected a positive integer",
			})
			return
		}
		filter.Limit = n
	}

	recordings, err := h.store.Recordings(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve recordings",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recordings": recordings,
		"count":      len(recordings),
	})
}

type setLibraryRequest struct {
	InLibrary *bool `json:"in_library" binding:"required"`
}

// HandleSetLibrary toggles the in-library flag on one recording.
func (h *Handlers) HandleSetLibrary(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid recording ID",
		})
		return
	}

	var req setLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.store.SetInLibrary(c.Request.Context(), uint(id), *req.InLibrary); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Recording not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update recording",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         id,
		"in_library": *req.InLibrary,
	})
}
