package api

import (
	"errors"
	"net/http"

	"transcriptdedup/deduplication"
	"transcriptdedup/types"

	"github.com/gin-gonic/gin"
)

// RegisterDeduplicationRoutes registers deduplication service endpoints.
func RegisterDeduplicationRoutes(r *gin.Engine, deps Dependencies) {
	dc := &deduplicationController{dedup: deps.Dedup}
	g := r.Group("/api/deduplication")
	g.POST("/check", dc.handleCheckDuplicate)
	g.POST("/add", dc.handleAddTranscript)
	g.POST("/process", dc.handleProcessTranscript)
	g.POST("/cleanup", dc.handleCleanup)
	g.DELETE("/clear", dc.handleClear)
	g.GET("/count", dc.handleGetCount)
}

// TranscriptRequest wraps the transcript for check, add and process.
type TranscriptRequest struct {
	Transcript *types.Transcript `json:"transcript" binding:"required"`
}

// ProcessTranscriptResponse represents the response from processing a transcript
type ProcessTranscriptResponse struct {
	Status              string                `json:"status"` // "new", "duplicate", "error"
	TranscriptID        string                `json:"transcript_id,omitempty"`
	DeduplicationResult *deduplication.Result `json:"deduplication_result,omitempty"`
	Error               string                `json:"error,omitempty"`
}

type deduplicationController struct {
	dedup *deduplication.Deduplicator
}

// handleCheckDuplicate checks if a transcript is a duplicate without storing it
func (dc *deduplicationController) handleCheckDuplicate(c *gin.Context) {
	var req TranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := dc.dedup.CheckForDuplicates(c.Request.Context(), req.Transcript)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check duplicates: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleAddTranscript stores a transcript unconditionally
func (dc *deduplicationController) handleAddTranscript(c *gin.Context) {
	var req TranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := dc.dedup.AddTranscript(c.Request.Context(), req.Transcript); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, deduplication.ErrEmptyTranscript) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": "failed to add transcript: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "added",
		"transcript_id": req.Transcript.ID,
	})
}

// handleProcessTranscript checks for duplicates and stores the transcript if new
func (dc *deduplicationController) handleProcessTranscript(c *gin.Context) {
	var req TranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(processTranscript(c, dc.dedup, req.Transcript))
}

// processTranscript runs ProcessTranscript and maps the outcome to a status code and body.
func processTranscript(c *gin.Context, dedup *deduplication.Deduplicator, t *types.Transcript) (int, ProcessTranscriptResponse) {
	result, err := dedup.ProcessTranscript(c.Request.Context(), t)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, deduplication.ErrEmptyTranscript) {
			status = http.StatusBadRequest
		}
		return status, ProcessTranscriptResponse{
			Status: "error",
			Error:  err.Error(),
		}
	}

	status := "new"
	if result.IsDuplicate {
		status = "duplicate"
	}
	return http.StatusOK, ProcessTranscriptResponse{
		Status:              status,
		TranscriptID:        t.ID,
		DeduplicationResult: result,
	}
}

// handleCleanup removes transcripts past their TTL
func (dc *deduplicationController) handleCleanup(c *gin.Context) {
	removed, err := dc.dedup.CleanupStale(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clean up: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// handleClear removes every stored transcript
func (dc *deduplicationController) handleClear(c *gin.Context) {
	if err := dc.dedup.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear store: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// handleGetCount returns the number of stored transcripts
func (dc *deduplicationController) handleGetCount(c *gin.Context) {
	count, err := dc.dedup.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get count: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
