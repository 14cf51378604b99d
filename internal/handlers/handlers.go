// Package handlers contains HTTP handler functions for the API.
//
// Go Pattern: Handlers in Gin receive a *gin.Context which provides request
// data, response methods and middleware values. Related handlers share
// dependencies through the Handler struct — explicit dependency injection,
// no globals, easy to construct with fakes in tests.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipdigest/clipdigest-api/internal/database"
	"github.com/clipdigest/clipdigest-api/internal/models"
	"github.com/clipdigest/clipdigest-api/internal/services/summarize"
	"github.com/clipdigest/clipdigest-api/internal/services/worker"
)

// Handler holds shared dependencies for all HTTP handlers.
type Handler struct {
	DB           *database.DB
	Worker       *worker.Pool
	Orchestrator *summarize.Orchestrator
}

// NewHandler creates a new handler with all dependencies.
func NewHandler(db *database.DB, wp *worker.Pool, orch *summarize.Orchestrator) *Handler {
	return &Handler{
		DB:           db,
		Worker:       wp,
		Orchestrator: orch,
	}
}

// HealthCheck returns the API health status.
// GET /api/v1/health
func (h *Handler) HealthCheck(c *gin.Context) {
	dbStatus := "healthy"
	if err := h.DB.HealthCheck(c.Request.Context()); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:   "ok",
		Version:  "1.0.0",
		Database: dbStatus,
		Workers:  h.Worker.WorkerCount(),
	})
}
