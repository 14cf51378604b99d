// orchestrator.go composes the whole pipeline: validate → cache key → cache
// check → slice → pick strategy → generate → validate → cache write.
//
// Each request moves forward through those steps exactly once; there is no
// retry loop here. Generation failures resolve to the fallback summary,
// which is cached like any other result so a broken video doesn't burn an
// LLM call on every request for the lifetime of the cache entry.
package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/clipdigest/clipdigest-api/internal/models"
)

// Store is the summary cache. A nil entry with a nil error is a miss.
// Go Pattern: the interface is declared here, where it's used — the database
// package satisfies it implicitly, and tests plug in an in-memory map.
type Store interface {
	GetCachedSummary(ctx context.Context, cacheKey string) (*models.SummaryCacheEntry, error)
	PutCachedSummary(ctx context.Context, entry *models.SummaryCacheEntry) error
}

// Request is one incoming summary request. Empty fields take their defaults
// (mode=quick, start=00:00, end=end, tone=Objective).
type Request struct {
	VideoID   string
	Mode      string
	StartTime string
	EndTime   string
	Tone      string
}

// Result is the completed summary plus its resolved metadata.
type Result struct {
	Summary     *models.StructuredSummary
	CacheKey    string
	Mode        Mode
	StartTime   string // canonical form
	EndTime     string // canonical form, or "end"
	Tone        Tone
	CacheHit    bool
	Fallback    bool
	Approximate bool
}

// Orchestrator owns a StructuredSummary's lifecycle from creation to cache
// insertion. Prompt version and the personalization flag are explicit
// construction-time configuration, not ambient globals: bumping the version
// is the cache-invalidation mechanism, and disabling personalization forces
// every request onto the default parameters.
type Orchestrator struct {
	llm             Generator
	store           Store
	promptVersion   string
	personalization bool
}

// NewOrchestrator wires the pipeline together.
func NewOrchestrator(llm Generator, store Store, promptVersion string, personalization bool) *Orchestrator {
	return &Orchestrator{
		llm:             llm,
		store:           store,
		promptVersion:   promptVersion,
		personalization: personalization,
	}
}

// Process runs one summary request against an already-extracted transcript.
// It returns an error only for the validation taxonomy (bad timestamp, bad
// range, unknown mode/tone); every other failure degrades to the fallback
// summary and still completes.
//
// Concurrent requests for the same key may both generate and both write —
// the cache store is last-writer-wins per key, and a duplicate generation is
// an accepted cost. Cache read errors are treated as misses, write errors as
// no-ops: the pipeline stays correct with caching entirely unavailable.
func (o *Orchestrator) Process(ctx context.Context, req Request, t Transcript) (*Result, error) {
	mode := DefaultMode
	if req.Mode != "" {
		mode = Mode(req.Mode)
	}
	start, end, tone := req.StartTime, req.EndTime, DefaultTone
	if req.Tone != "" {
		tone = Tone(req.Tone)
	}
	if !o.personalization {
		// Personalization disabled: every request for a video collapses
		// onto one cache entry per mode.
		start, end, tone = DefaultStartTime, DefaultEndTime, DefaultTone
	}

	// Validate mode and tone before anything that could cost money.
	cfg, err := ConfigForMode(mode)
	if err != nil {
		return nil, err
	}
	if _, err := ToneInstruction(tone); err != nil {
		return nil, err
	}

	canonStart, canonEnd, err := CanonicalRange(start, end)
	if err != nil {
		return nil, err
	}

	key, err := BuildKey(req.VideoID, mode, canonStart, canonEnd, tone, o.promptVersion)
	if err != nil {
		return nil, err
	}

	if entry, err := o.store.GetCachedSummary(ctx, key); err != nil {
		log.Printf("⚠️  Cache read failed for %s: %v — treating as miss", key[:12], err)
	} else if entry != nil {
		var cached models.StructuredSummary
		if err := json.Unmarshal(entry.Summary, &cached); err != nil {
			log.Printf("⚠️  Corrupt cache entry %s: %v — regenerating", key[:12], err)
		} else {
			return &Result{
				Summary:   &cached,
				CacheKey:  key,
				Mode:      mode,
				StartTime: canonStart,
				EndTime:   canonEnd,
				Tone:      tone,
				CacheHit:  true,
				Fallback:  entry.Fallback,
			}, nil
		}
	}

	sliced, err := SliceTranscript(t, canonStart, canonEnd)
	if err != nil {
		return nil, err
	}

	var summary *models.StructuredSummary
	var fellBack bool
	if EstimateMinutes(wordCount(sliced.Text)) > cfg.ChunkThresholdMinutes {
		summary, fellBack = generateChunked(ctx, o.llm, sliced.Text, t.Title, mode, tone)
	} else {
		summary, fellBack = generateStructured(ctx, o.llm, sliced.Text, t.Title, mode, tone)
	}

	raw, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to encode summary: %w", err)
	}

	entry := &models.SummaryCacheEntry{
		CacheKey:      key,
		VideoID:       req.VideoID,
		Mode:          string(mode),
		StartTime:     canonStart,
		EndTime:       canonEnd,
		Tone:          string(tone),
		PromptVersion: o.promptVersion,
		Summary:       raw,
		Fallback:      fellBack,
	}
	if err := o.store.PutCachedSummary(ctx, entry); err != nil {
		log.Printf("⚠️  Cache write failed for %s: %v — continuing without caching", key[:12], err)
	}

	return &Result{
		Summary:     summary,
		CacheKey:    key,
		Mode:        mode,
		StartTime:   canonStart,
		EndTime:     canonEnd,
		Tone:        tone,
		Fallback:    fellBack,
		Approximate: sliced.Approximate,
	}, nil
}
