// Package worker provides background transcript extraction using goroutines.
//
// The pattern: a buffered channel is the job queue, N worker goroutines read
// from it, and HTTP handlers submit jobs without blocking. Extraction shells
// out to yt-dlp and can take tens of seconds, so it never runs inside a
// request handler — clients get a pending record back and poll for status.
//
// Summary generation is NOT queued here: the orchestrator's contract returns
// the summary directly, and with a warm cache that is instant.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/clipdigest/clipdigest-api/internal/database"
	"github.com/clipdigest/clipdigest-api/internal/models"
	"github.com/clipdigest/clipdigest-api/internal/services/transcript"
)

// Job is one transcript-extraction work item. ID is the transcripts row.
type Job struct {
	ID        string
	CreatedAt time.Time
}

// Pool manages a pool of worker goroutines.
type Pool struct {
	jobs      chan Job
	workers   int
	db        *database.DB
	extractor transcript.Extractor

	// Go Pattern: sync.WaitGroup tracks running goroutines; Wait blocks
	// until every worker has drained, which is what graceful shutdown needs.
	wg sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// NewPool creates a new worker pool.
func NewPool(workers, queueSize int, db *database.DB, ext transcript.Extractor) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		jobs:      make(chan Job, queueSize), // Buffered channel
		workers:   workers,
		db:        db,
		extractor: ext,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	log.Printf("🚀 Starting %d background workers", p.workers)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop gracefully shuts down all workers: cancel, close, drain, wait.
func (p *Pool) Stop() {
	log.Println("⏹️  Stopping workers...")
	p.cancel()
	close(p.jobs)
	p.wg.Wait()
	log.Println("✅ All workers stopped")
}

// Submit adds a job to the queue.
// Returns an error if the queue is full (non-blocking).
func (p *Pool) Submit(job Job) error {
	// Go Pattern: `select` with `default` makes channel sends non-blocking,
	// so a full queue rejects instead of stalling the HTTP handler.
	select {
	case p.jobs <- job:
		log.Printf("📥 Extraction job queued: %s", job.ID)
		return nil
	default:
		return fmt.Errorf("job queue is full; try again later")
	}
}

// QueueSize returns the current number of jobs in the queue.
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}

// WorkerCount returns the number of workers.
func (p *Pool) WorkerCount() int {
	return p.workers
}

// worker is the main loop for each worker goroutine.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	log.Printf("👷 Worker %d started", id)

	for job := range p.jobs {
		select {
		case <-p.ctx.Done():
			log.Printf("👷 Worker %d shutting down", id)
			return
		default:
		}

		log.Printf("👷 Worker %d processing extraction: %s", id, job.ID)
		if err := p.processTranscript(job); err != nil {
			log.Printf("❌ Worker %d: job %s failed: %v", id, job.ID, err)
		} else {
			log.Printf("✅ Worker %d: job %s completed", id, job.ID)
		}
	}

	log.Printf("👷 Worker %d stopped", id)
}

// processTranscript runs one extraction and persists the outcome, including
// the time-aligned segments the summarizer's slicer needs.
func (p *Pool) processTranscript(job Job) error {
	ctx := p.ctx

	t, err := p.db.GetTranscript(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("failed to get transcript: %w", err)
	}

	t.Status = models.StatusProcessing
	if err := p.db.UpdateTranscript(ctx, t); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	result, err := p.extractor.Extract(ctx, t.YouTubeID)
	if err != nil {
		t.Status = models.StatusFailed
		t.ErrorMessage = err.Error()
		p.db.UpdateTranscript(ctx, t)
		return fmt.Errorf("extraction failed: %w", err)
	}

	var segmentsJSON json.RawMessage
	if len(result.Segments) > 0 {
		segmentsJSON, err = json.Marshal(result.Segments)
		if err != nil {
			return fmt.Errorf("failed to encode segments: %w", err)
		}
	}

	t.Title = result.Title
	t.ChannelName = result.Channel
	t.Duration = result.Duration
	t.Language = result.Language
	t.TranscriptText = result.Transcript
	t.Segments = segmentsJSON
	t.WordCount = result.WordCount
	t.Status = models.StatusCompleted
	t.ErrorMessage = ""

	if err := p.db.UpdateTranscript(ctx, t); err != nil {
		return fmt.Errorf("failed to save transcript: %w", err)
	}

	return nil
}
