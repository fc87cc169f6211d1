package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arjenvw/repertoire/internal/extraction"
)

type ingestRecordingsRequest struct {
	Recordings []extraction.Candidate `json:"recordings"`
}

type ingestRawRequest struct {
	Text string `json:"text"`
}

// HandleIngestRecordings accepts pre-structured candidate recordings, e.g.
// from the browser extension, and runs them through enrichment and
// persistence.
func (h *Handlers) HandleIngestRecordings(c *gin.Context) {
	var req ingestRecordingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	// An empty array is a valid "no recordings found" batch, not an error.
	result := h.pipeline.IngestCandidates(c.Request.Context(), req.Recordings)
	c.JSON(http.StatusOK, gin.H{
		"result":  result,
		"message": result.Summary(),
	})
}

// HandleIngestRaw accepts raw AI-assistant output and runs the full
// extract, enrich, persist pipeline. An unreadable batch is reported as
// 422 with the parse outcome so the caller can distinguish "no recordings
// found" from "could not read the response".
func (h *Handlers) HandleIngestRaw(c *gin.Context) {
	var req ingestRawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Empty text",
		})
		return
	}

	result := h.pipeline.IngestText(c.Request.Context(), req.Text)
	if result.Failed() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Could not extract recordings from text",
			"result": result,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result":  result,
		"message": result.Summary(),
	})
}
