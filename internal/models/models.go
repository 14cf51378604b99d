// Package models defines the data structures used throughout the application.
//
// Go Pattern: Models are plain structs with JSON tags for serialization.
// The `db` tags work with sqlx for database column mapping — the database
// package handles persistence, these are just data containers.
package models

import (
	"encoding/json"
	"time"
)

// TranscriptStatus represents the processing state of a transcript.
// Go Pattern: We use string constants instead of enums (Go doesn't have enums).
type TranscriptStatus string

const (
	StatusPending    TranscriptStatus = "pending"
	StatusProcessing TranscriptStatus = "processing"
	StatusCompleted  TranscriptStatus = "completed"
	StatusFailed     TranscriptStatus = "failed"
)

// Segment is one time-aligned piece of a transcript. Segments are sorted by
// Start, non-overlapping, and cover the video wherever captions exist.
type Segment struct {
	Start float64 `json:"start"` // seconds from the beginning of the video
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript represents a YouTube video transcript stored in the database.
// Segments is NULL when the extractor could only produce plain text — the
// summarizer then falls back to approximate word-rate slicing.
type Transcript struct {
	ID             string           `json:"id" db:"id"`
	YouTubeURL     string           `json:"youtube_url" db:"youtube_url"`
	YouTubeID      string           `json:"youtube_id" db:"youtube_id"`
	Title          string           `json:"title" db:"title"`
	ChannelName    string           `json:"channel_name" db:"channel_name"`
	Duration       int              `json:"duration" db:"duration"` // seconds
	Language       string           `json:"language" db:"language"`
	TranscriptText string           `json:"transcript_text" db:"transcript_text"`
	Segments       json.RawMessage  `json:"segments,omitempty" db:"segments"` // JSONB array of Segment
	WordCount      int              `json:"word_count" db:"word_count"`
	Status         TranscriptStatus `json:"status" db:"status"`
	ErrorMessage   string           `json:"error_message,omitempty" db:"error_message"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
}

// --- Structured summaries ---

// TopicRef names a topic covered by the video and points at the summary
// section where it is discussed.
type TopicRef struct {
	Name      string `json:"name"`
	SectionID int    `json:"section_id"`
}

// TimestampRef is a notable moment in the video.
type TimestampRef struct {
	Time        string `json:"time"` // MM:SS or HH:MM:SS
	Description string `json:"description"`
}

// SummaryParagraph is one ordered section of the full summary.
type SummaryParagraph struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
}

// SummarySections is the common section prefix shared by both summary modes.
type SummarySections struct {
	QuickTakeaway string             `json:"quick_takeaway"` // max 150 chars
	KeyPoints     []string           `json:"key_points"`
	Topics        []TopicRef         `json:"topics"`
	Timestamps    []TimestampRef     `json:"timestamps"`
	FullSummary   []SummaryParagraph `json:"full_summary"`
}

// IndepthSections holds the extra sections produced only in indepth mode.
type IndepthSections struct {
	DetailedAnalysis string   `json:"detailed_analysis"`
	KeyQuotes        []string `json:"key_quotes"`
	Arguments        []string `json:"arguments"`
}

// StructuredSummary is the final summary document. Mode is the discriminator:
// Indepth is nil for quick summaries and always set for indepth ones — the
// summarize package's validator enforces this, so an ambiguous half-populated
// value never reaches the cache or the API response.
type StructuredSummary struct {
	Mode string `json:"mode"` // "quick" or "indepth"
	SummarySections
	Indepth *IndepthSections `json:"indepth,omitempty"`
}

// SummaryCacheEntry is one cached summary, keyed by the personalization
// cache key. Entries are immutable once written; a prompt-version bump or a
// different parameter combination produces a new key, never a mutation.
type SummaryCacheEntry struct {
	ID            string          `json:"id" db:"id"`
	CacheKey      string          `json:"cache_key" db:"cache_key"`
	VideoID       string          `json:"video_id" db:"video_id"`
	Mode          string          `json:"mode" db:"mode"`
	StartTime     string          `json:"start_time" db:"start_time"`
	EndTime       string          `json:"end_time" db:"end_time"`
	Tone          string          `json:"tone" db:"tone"`
	PromptVersion string          `json:"prompt_version" db:"prompt_version"`
	Summary       json.RawMessage `json:"summary" db:"summary"` // JSONB StructuredSummary
	Fallback      bool            `json:"fallback" db:"fallback"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// --- Request/Response DTOs (Data Transfer Objects) ---
// Go Pattern: Separate structs for API input/output vs database models.
// This keeps the API contract independent of the database schema.

// CreateTranscriptRequest is the JSON body for POST /api/v1/transcripts.
type CreateTranscriptRequest struct {
	// Accept either a full YouTube URL or just the video ID
	URL     string `json:"url" binding:"required_without=VideoID"`
	VideoID string `json:"video_id" binding:"required_without=URL"`
}

// CreateSummaryRequest is the JSON body for POST /api/v1/summaries.
// All personalization fields are optional; defaults are mode=quick,
// start_time=00:00, end_time=end, tone=Objective.
type CreateSummaryRequest struct {
	URL       string `json:"url,omitempty"`
	VideoID   string `json:"video_id,omitempty"`
	Mode      string `json:"mode,omitempty"`       // "quick" or "indepth"
	StartTime string `json:"start_time,omitempty"` // MM:SS or HH:MM:SS
	EndTime   string `json:"end_time,omitempty"`   // MM:SS, HH:MM:SS or "end"
	Tone      string `json:"tone,omitempty"`       // Objective, Academic, Casual, Skeptical, Provocative
}

// SummaryResponse is the API response for POST /api/v1/summaries: the
// summary plus the resolved personalization metadata.
type SummaryResponse struct {
	Summary     *StructuredSummary `json:"summary"`
	Mode        string             `json:"mode"`
	StartTime   string             `json:"start_time"`
	EndTime     string             `json:"end_time"`
	Tone        string             `json:"tone"`
	CacheHit    bool               `json:"cache_hit"`
	Fallback    bool               `json:"fallback"`
	Approximate bool               `json:"approximate"`
}

// TranscriptListParams holds query parameters for listing transcripts.
type TranscriptListParams struct {
	Page    int              `form:"page"`     // Page number (1-indexed)
	PerPage int              `form:"per_page"` // Items per page
	Status  TranscriptStatus `form:"status"`   // Filter by status
	Search  string           `form:"search"`   // Search in title/channel
	SortBy  string           `form:"sort_by"`  // "created_at", "title", "word_count"
	SortDir string           `form:"sort_dir"` // "asc" or "desc"
}

// PaginatedResponse wraps a list response with pagination metadata.
type PaginatedResponse[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// ErrorResponse is a standard error format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
	Workers  int    `json:"workers"`
}
