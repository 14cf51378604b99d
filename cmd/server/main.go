// Package main is the entry point for the ClipDigest API server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clipdigest/clipdigest-api/internal/config"
	"github.com/clipdigest/clipdigest-api/internal/database"
	"github.com/clipdigest/clipdigest-api/internal/router"
	"github.com/clipdigest/clipdigest-api/internal/services/llm"
	"github.com/clipdigest/clipdigest-api/internal/services/summarize"
	"github.com/clipdigest/clipdigest-api/internal/services/transcript"
	"github.com/clipdigest/clipdigest-api/internal/services/worker"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("🚀 ClipDigest API %s starting...", Version)

	// Step 1: Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	log.Printf("📋 Config loaded: port=%s, workers=%d, gin_mode=%s", cfg.Port, cfg.WorkerCount, cfg.GinMode)
	log.Printf("🔧 yt-dlp path: %s", cfg.YtDlpPath)

	os.Setenv("GIN_MODE", cfg.GinMode)

	// Step 2: Connect to Database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("✅ Database connected")

	// Run migrations
	if err := db.RunMigrations("migrations"); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	// Step 3: Create Services
	extractor := transcript.NewExtractor(cfg.YtDlpPath)

	// Configure YouTube proxy if provided (residential proxy to bypass IP blocks)
	if cfg.YouTubeProxy != "" {
		extractor.SetProxy(cfg.YouTubeProxy)
		log.Println("✅ YouTube proxy configured (residential proxy for yt-dlp)")
	} else {
		log.Println("⚠️  No YouTube proxy configured (set YOUTUBE_PROXY for reliable YouTube access)")
	}

	llmClient := llm.New(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.OpenRouterModel)
	if llmClient.IsConfigured() {
		log.Printf("✅ LLM summarization enabled (model: %s, prompt %s)", cfg.OpenRouterModel, cfg.PromptVersion)
	} else {
		log.Println("⚠️  LLM summarization disabled (set OPENROUTER_API_KEY — requests will get fallback summaries)")
	}

	orch := summarize.NewOrchestrator(llmClient, db, cfg.PromptVersion, cfg.PersonalizationEnabled)
	if !cfg.PersonalizationEnabled {
		log.Println("⚠️  Personalization disabled — all requests collapse to default parameters")
	}

	// Step 4: Create and Start Worker Pool
	wp := worker.NewPool(cfg.WorkerCount, cfg.JobQueueSize, db, extractor)
	wp.Start()
	defer wp.Stop()

	// Step 5: Setup HTTP Router
	r := router.Setup(db, wp, orch, cfg.RateLimitPerMinute, cfg.AllowedOrigins)

	// Step 6: Start the HTTP Server
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// Summary generation is synchronous and may chain several LLM calls
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🌐 Server listening on http://localhost:%s", cfg.Port)
		log.Printf("📖 Health check: http://localhost:%s/api/v1/health", cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	// Step 7: Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("🛑 Received signal %v, shutting down gracefully...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Server forced to shutdown: %v", err)
	}

	log.Println("👋 Server stopped. Goodbye!")
}
