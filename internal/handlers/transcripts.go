// transcripts.go handles all transcript-related HTTP endpoints.
package handlers

import (
	"log"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clipdigest/clipdigest-api/internal/models"
	"github.com/clipdigest/clipdigest-api/internal/services/transcript"
	"github.com/clipdigest/clipdigest-api/internal/services/worker"
)

// CreateTranscript starts transcript extraction for a YouTube video.
// POST /api/v1/transcripts
//
// Request body:
//
//	{"url": "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}
//	  or
//	{"video_id": "dQw4w9WgXcQ"}
//
// Response: the created transcript record (status "pending"). Extraction
// happens in the background; clients poll GET /transcripts/:id for status.
func (h *Handler) CreateTranscript(c *gin.Context) {
	var req models.CreateTranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Provide either 'url' or 'video_id' in the request body",
			Code:    http.StatusBadRequest,
		})
		return
	}

	input := req.URL
	if input == "" {
		input = req.VideoID
	}
	youtubeURL, videoID, err := transcript.ParseYouTubeURL(input)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_url",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
		return
	}

	// Already extracted? Return the existing record instead of re-running
	// yt-dlp for the same video.
	existing, _ := h.DB.GetTranscriptByYouTubeID(c.Request.Context(), videoID)
	if existing != nil && existing.Status == models.StatusCompleted {
		c.JSON(http.StatusOK, existing)
		return
	}

	t := &models.Transcript{
		YouTubeURL: youtubeURL,
		YouTubeID:  videoID,
		Status:     models.StatusPending,
	}

	if err := h.DB.CreateTranscript(c.Request.Context(), t); err != nil {
		log.Printf("❌ Failed to create transcript record: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to create transcript record",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	job := worker.Job{ID: t.ID, CreatedAt: time.Now()}
	if err := h.Worker.Submit(job); err != nil {
		log.Printf("⚠️  Failed to queue extraction job: %v", err)
		// The record exists but extraction didn't start; the client can
		// retry and the dedupe above will pick the record back up.
	}

	// 202 Accepted — the work is happening in the background
	c.JSON(http.StatusAccepted, t)
}

// GetTranscript retrieves a single transcript by ID.
// GET /api/v1/transcripts/:id
func (h *Handler) GetTranscript(c *gin.Context) {
	id := c.Param("id")

	t, err := h.DB.GetTranscript(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Transcript not found",
			Code:    http.StatusNotFound,
		})
		return
	}

	c.JSON(http.StatusOK, t)
}

// ListTranscripts returns a paginated list of transcripts.
// GET /api/v1/transcripts?page=1&per_page=20&status=completed&search=golang
func (h *Handler) ListTranscripts(c *gin.Context) {
	var params models.TranscriptListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_params",
			Message: "Invalid query parameters: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
		return
	}

	transcripts, total, err := h.DB.ListTranscripts(c.Request.Context(), params)
	if err != nil {
		log.Printf("❌ Failed to list transcripts: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to list transcripts",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	// Ensure we return an empty array, not null
	if transcripts == nil {
		transcripts = []models.Transcript{}
	}

	perPage := params.PerPage
	if perPage < 1 {
		perPage = 20
	}
	page := params.Page
	if page < 1 {
		page = 1
	}

	c.JSON(http.StatusOK, models.PaginatedResponse[models.Transcript]{
		Data:       transcripts,
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	})
}

// ListSummariesForTranscript returns the cached summary entries for a
// transcript's video — one per personalization parameter combination.
// GET /api/v1/transcripts/:id/summaries
func (h *Handler) ListSummariesForTranscript(c *gin.Context) {
	t, err := h.DB.GetTranscript(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Transcript not found",
			Code:    http.StatusNotFound,
		})
		return
	}

	entries, err := h.DB.ListCachedSummaries(c.Request.Context(), t.YouTubeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch summaries",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	if entries == nil {
		entries = []models.SummaryCacheEntry{}
	}

	c.JSON(http.StatusOK, entries)
}

// DeleteTranscript removes a transcript by ID.
// DELETE /api/v1/transcripts/:id
func (h *Handler) DeleteTranscript(c *gin.Context) {
	if err := h.DB.DeleteTranscript(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Transcript not found",
			Code:    http.StatusNotFound,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transcript deleted"})
}
