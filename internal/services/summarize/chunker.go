// chunker.go is the hierarchical summarizer for long transcripts: split into
// word-count chunks, summarize each chunk into plain text, then feed the
// stitched-together chunk summaries through the single-pass structured
// summarizer as a "meta-transcript".
package summarize

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/clipdigest/clipdigest-api/internal/models"
)

const (
	// chunkDivider separates chunk summaries inside the meta-transcript.
	chunkDivider = "\n\n---\n\n"

	// chunkSummaryMaxTokens bounds each plain-text chunk summary.
	chunkSummaryMaxTokens = 1000

	// chunkExcerptChars is how much raw text stands in for a chunk whose
	// summarization failed.
	chunkExcerptChars = 500

	// maxConcurrentChunks bounds in-flight chunk generation calls. Chunks
	// are independent, so this is purely a latency/courtesy knob — results
	// are reassembled by position, never by completion order.
	maxConcurrentChunks = 3
)

// generateChunked produces a structured summary via hierarchical reduction.
// The bool reports whether the final reduce fell back.
func generateChunked(ctx context.Context, llm Generator, text, title string, mode Mode, tone Tone) (*models.StructuredSummary, bool) {
	cfg := modeConfigs[mode]
	chunks := splitIntoChunks(text, cfg.ChunkWordSize)
	if len(chunks) <= 1 {
		return generateStructured(ctx, llm, text, title, mode, tone)
	}

	log.Printf("📚 Chunking transcript: %d chunks of ≤%d words (%s mode)", len(chunks), cfg.ChunkWordSize, mode)

	parts := summarizeChunks(ctx, llm, chunks, title, tone)
	meta := strings.Join(parts, chunkDivider)

	return generateStructured(ctx, llm, meta, title, mode, tone)
}

// splitIntoChunks cuts text into contiguous word-count chunks. The final
// chunk may be shorter; no words are dropped.
func splitIntoChunks(text string, chunkWordSize int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	for start := 0; start < len(words); start += chunkWordSize {
		end := start + chunkWordSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}

// summarizeChunks runs the per-chunk plain-text summarizations, at most
// maxConcurrentChunks at a time. The result slice is indexed by chunk
// position, so original chronological order survives any completion order.
// A failed chunk contributes a truncated raw excerpt instead of aborting
// the pipeline.
func summarizeChunks(ctx context.Context, llm Generator, chunks []string, title string, tone Tone) []string {
	instr := toneInstructions[tone]
	results := make([]string, len(chunks))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrentChunks)

	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			subtitle := fmt.Sprintf("%s (Part %d/%d)", title, i+1, len(chunks))
			prompt := fmt.Sprintf(chunkPromptTemplate, subtitle, instr, chunk)

			out, err := llm.Generate(ctx, prompt, chunkSummaryMaxTokens)
			if err != nil || strings.TrimSpace(out) == "" {
				log.Printf("⚠️  Chunk %d/%d summarization failed: %v — substituting raw excerpt", i+1, len(chunks), err)
				results[i] = chunkExcerpt(chunk)
				return
			}
			results[i] = strings.TrimSpace(out)
		}(i, chunk)
	}

	wg.Wait()
	return results
}

// chunkExcerpt returns roughly the first chunkExcerptChars characters of a
// chunk, cut at a word boundary.
func chunkExcerpt(chunk string) string {
	if len(chunk) <= chunkExcerptChars {
		return chunk
	}
	cut := chunk[:chunkExcerptChars]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + " …"
}
