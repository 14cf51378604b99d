// summaries.go handles summary generation requests.
package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipdigest/clipdigest-api/internal/models"
	"github.com/clipdigest/clipdigest-api/internal/services/summarize"
	"github.com/clipdigest/clipdigest-api/internal/services/transcript"
)

// CreateSummary generates (or fetches from cache) a structured summary for a
// video whose transcript has already been extracted.
// POST /api/v1/summaries
//
// Request body:
//
//	{
//	  "video_id": "dQw4w9WgXcQ",
//	  "mode": "indepth",
//	  "start_time": "05:00",
//	  "end_time": "25:00",
//	  "tone": "Skeptical"
//	}
//
// All fields except the video reference are optional. The call is synchronous:
// a cache hit returns immediately, a miss blocks on the LLM round trip.
func (h *Handler) CreateSummary(c *gin.Context) {
	var req models.CreateSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
		return
	}

	input := req.URL
	if input == "" {
		input = req.VideoID
	}
	if input == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Provide either 'url' or 'video_id' in the request body",
			Code:    http.StatusBadRequest,
		})
		return
	}

	_, videoID, err := transcript.ParseYouTubeURL(input)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_url",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
		return
	}

	t, err := h.DB.GetTranscriptByYouTubeID(c.Request.Context(), videoID)
	if err != nil || t == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "transcript_not_found",
			Message: "No transcript for this video — extract it first via POST /api/v1/transcripts",
			Code:    http.StatusNotFound,
		})
		return
	}
	if t.Status != models.StatusCompleted {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "transcript_not_ready",
			Message: "Transcript status is '" + string(t.Status) + "' — wait for extraction to complete",
			Code:    http.StatusConflict,
		})
		return
	}

	source := summarize.Transcript{
		Text:  t.TranscriptText,
		Title: t.Title,
	}
	if len(t.Segments) > 0 {
		var segments []models.Segment
		if err := json.Unmarshal(t.Segments, &segments); err != nil {
			// Corrupt segment data is survivable: fall back to word-rate slicing
			log.Printf("⚠️  Corrupt segments for transcript %s: %v", t.ID, err)
		} else {
			source.Segments = segments
		}
	}

	result, err := h.Orchestrator.Process(c.Request.Context(), summarize.Request{
		VideoID:   t.YouTubeID,
		Mode:      req.Mode,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Tone:      req.Tone,
	}, source)
	if err != nil {
		if verr, ok := summarize.AsValidationError(err); ok {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   string(verr.Kind),
				Message: verr.Message,
				Code:    http.StatusBadRequest,
			})
			return
		}
		log.Printf("❌ Summary generation failed for %s: %v", t.YouTubeID, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "summarization_failed",
			Message: "Failed to generate summary",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, summaryResponse(result))
}

// summaryResponse maps an orchestrator result onto the API response DTO.
func summaryResponse(result *summarize.Result) models.SummaryResponse {
	return models.SummaryResponse{
		Summary:     result.Summary,
		Mode:        string(result.Mode),
		StartTime:   result.StartTime,
		EndTime:     result.EndTime,
		Tone:        string(result.Tone),
		CacheHit:    result.CacheHit,
		Fallback:    result.Fallback,
		Approximate: result.Approximate,
	}
}
