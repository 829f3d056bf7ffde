package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"transcriptdedup/deduplication"
	"transcriptdedup/transcript"
	"transcriptdedup/types"

	"github.com/gin-gonic/gin"
)

// maxTranscriptBody bounds provider response bodies accepted by the transcript endpoints.
const maxTranscriptBody = 8 << 20

// RegisterTranscriptRoutes registers endpoints that accept raw transcript-provider responses.
func RegisterTranscriptRoutes(r *gin.Engine, deps Dependencies) {
	tc := &transcriptController{dedup: deps.Dedup}
	g := r.Group("/api/transcripts")
	g.POST("/summary", tc.handleSummary)
	g.POST("/video-id", tc.handleVideoID)
	g.POST("/process", tc.handleProcess)
}

// VideoIDRequest carries a YouTube watch or short URL.
type VideoIDRequest struct {
	URL string `json:"url" binding:"required"`
}

type transcriptController struct {
	dedup *deduplication.Deduplicator
}

// handleSummary parses a provider response and returns its summary
func (tc *transcriptController) handleSummary(c *gin.Context) {
	resp, ok := readProviderResponse(c)
	if !ok {
		return
	}

	summary, err := resp.Summary()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// handleVideoID extracts the video id and the stable transcript id for a URL
func (tc *transcriptController) handleVideoID(c *gin.Context) {
	var req VideoIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := transcript.ExtractVideoID(req.URL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"video_id":  id,
		"stable_id": transcript.StableID(req.URL),
	})
}

// handleProcess runs a provider response through deduplication
func (tc *transcriptController) handleProcess(c *gin.Context) {
	resp, ok := readProviderResponse(c)
	if !ok {
		return
	}
	if !resp.IsSuccess() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provider response not successful: " + resp.Message})
		return
	}

	text := resp.Data.Transcripts.EnAuto.FullText()
	if err := transcript.ValidateForArticle(text); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t := &types.Transcript{
		ID:        types.GenerateID(resp.Data.VideoURL()),
		VideoID:   resp.Data.VideoID,
		URL:       resp.Data.VideoURL(),
		Title:     resp.Data.VideoInfo.Name,
		Text:      text,
		FetchedAt: time.Now(),
	}
	c.JSON(processTranscript(c, tc.dedup, t))
}

func readProviderResponse(c *gin.Context) (*transcript.Response, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxTranscriptBody))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return nil, false
	}

	resp, err := transcript.Parse(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return resp, true
}
