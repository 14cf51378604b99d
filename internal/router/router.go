// Package router sets up all HTTP routes for the API.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/clipdigest/clipdigest-api/internal/database"
	"github.com/clipdigest/clipdigest-api/internal/handlers"
	"github.com/clipdigest/clipdigest-api/internal/middleware"
	"github.com/clipdigest/clipdigest-api/internal/services/summarize"
	"github.com/clipdigest/clipdigest-api/internal/services/worker"
)

// Setup creates and configures the Gin router with all routes.
func Setup(db *database.DB, wp *worker.Pool, orch *summarize.Orchestrator, rateLimitPerMinute int, allowedOrigins []string) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORS(allowedOrigins))

	h := handlers.NewHandler(db, wp, orch)
	rateLimiter := middleware.NewRateLimiter(rateLimitPerMinute)

	// Health check stays outside the rate limiter so load balancers can
	// probe as often as they like.
	r.GET("/api/v1/health", h.HealthCheck)

	api := r.Group("/api/v1")
	api.Use(rateLimiter.RateLimit())
	{
		// Transcript endpoints
		api.POST("/transcripts", h.CreateTranscript)
		api.GET("/transcripts", h.ListTranscripts)
		api.GET("/transcripts/:id", h.GetTranscript)
		api.GET("/transcripts/:id/summaries", h.ListSummariesForTranscript)
		api.DELETE("/transcripts/:id", h.DeleteTranscript)

		// Summary endpoints
		api.POST("/summaries", h.CreateSummary)
	}

	return r
}
