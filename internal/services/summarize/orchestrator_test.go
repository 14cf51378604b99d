package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/clipdigest/clipdigest-api/internal/models"
)

// fakeStore is an in-memory Store keyed exactly like the real cache table.
type fakeStore struct {
	mu      sync.Mutex
	entries map[string]*models.SummaryCacheEntry
	getErr  error
	putErr  error
	puts    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]*models.SummaryCacheEntry)}
}

func (s *fakeStore) GetCachedSummary(_ context.Context, cacheKey string) (*models.SummaryCacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.entries[cacheKey], nil
}

func (s *fakeStore) PutCachedSummary(_ context.Context, entry *models.SummaryCacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	s.entries[entry.CacheKey] = entry
	return nil
}

func quickLLM() *fakeLLM {
	return &fakeLLM{fn: func(string, int) (string, error) { return validQuickJSON, nil }}
}

func TestProcess_MissThenHit(t *testing.T) {
	llm := quickLLM()
	store := newFakeStore()
	orch := NewOrchestrator(llm, store, testPromptVersion, true)
	tr := segmentedTranscript()

	first, err := orch.Process(context.Background(), Request{VideoID: "vid"}, tr)
	if err != nil {
		t.Fatalf("first Process failed: %v", err)
	}
	if first.CacheHit {
		t.Error("first request should be a cache miss")
	}
	if first.Mode != ModeQuick || first.StartTime != "00:00" || first.EndTime != "end" || first.Tone != ToneObjective {
		t.Errorf("defaults not resolved: %+v", first)
	}
	if first.Summary == nil || first.Summary.QuickTakeaway == "" {
		t.Fatal("first request returned no summary")
	}
	if llm.callCount() != 1 {
		t.Errorf("LLM calls after miss = %d, want 1", llm.callCount())
	}

	second, err := orch.Process(context.Background(), Request{VideoID: "vid"}, tr)
	if err != nil {
		t.Fatalf("second Process failed: %v", err)
	}
	if !second.CacheHit {
		t.Error("second request should be a cache hit")
	}
	if llm.callCount() != 1 {
		t.Errorf("cache hit still called the LLM (%d calls)", llm.callCount())
	}
	if second.Summary.QuickTakeaway != first.Summary.QuickTakeaway {
		t.Error("cached summary differs from generated one")
	}
	if second.CacheKey != first.CacheKey {
		t.Error("same request produced different cache keys")
	}
}

func TestProcess_ExplicitDefaultsShareEntry(t *testing.T) {
	llm := quickLLM()
	store := newFakeStore()
	orch := NewOrchestrator(llm, store, testPromptVersion, true)
	tr := segmentedTranscript()

	if _, err := orch.Process(context.Background(), Request{VideoID: "vid"}, tr); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	explicit := Request{
		VideoID:   "vid",
		Mode:      "quick",
		StartTime: "00:00",
		EndTime:   "end",
		Tone:      "Objective",
	}
	res, err := orch.Process(context.Background(), explicit, tr)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !res.CacheHit {
		t.Error("explicit defaults should hit the entry written for omitted defaults")
	}
}

func TestProcess_FallbackIsCached(t *testing.T) {
	llm := &fakeLLM{fn: func(string, int) (string, error) { return "", errors.New("llm down") }}
	store := newFakeStore()
	orch := NewOrchestrator(llm, store, testPromptVersion, true)
	tr := segmentedTranscript()

	first, err := orch.Process(context.Background(), Request{VideoID: "vid"}, tr)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !first.Fallback {
		t.Error("expected fallback result")
	}
	if err := ValidateSummary(first.Summary); err != nil {
		t.Errorf("fallback summary fails validation: %v", err)
	}

	entry := store.entries[first.CacheKey]
	if entry == nil {
		t.Fatal("fallback was not cached")
	}
	if !entry.Fallback {
		t.Error("cached entry not marked as fallback")
	}

	second, err := orch.Process(context.Background(), Request{VideoID: "vid"}, tr)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !second.CacheHit || !second.Fallback {
		t.Errorf("cached fallback should return CacheHit+Fallback, got %+v", second)
	}
	if llm.callCount() != 1 {
		t.Errorf("cached fallback still called the LLM (%d calls)", llm.callCount())
	}
}

func TestProcess_CacheUnavailable(t *testing.T) {
	llm := quickLLM()
	store := newFakeStore()
	store.getErr = errors.New("connection refused")
	store.putErr = errors.New("connection refused")
	orch := NewOrchestrator(llm, store, testPromptVersion, true)

	res, err := orch.Process(context.Background(), Request{VideoID: "vid"}, segmentedTranscript())
	if err != nil {
		t.Fatalf("Process should survive a dead cache: %v", err)
	}
	if res.CacheHit {
		t.Error("read errors must be treated as misses")
	}
	if res.Summary == nil {
		t.Fatal("no summary returned")
	}
	if store.puts != 1 {
		t.Errorf("write attempts = %d, want 1", store.puts)
	}
}

func TestProcess_CorruptEntryRegenerated(t *testing.T) {
	llm := quickLLM()
	store := newFakeStore()
	orch := NewOrchestrator(llm, store, testPromptVersion, true)
	tr := segmentedTranscript()

	first, err := orch.Process(context.Background(), Request{VideoID: "vid"}, tr)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	store.entries[first.CacheKey].Summary = []byte("{corrupt")

	second, err := orch.Process(context.Background(), Request{VideoID: "vid"}, tr)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if second.CacheHit {
		t.Error("corrupt entry must not count as a hit")
	}
	if llm.callCount() != 2 {
		t.Errorf("LLM calls = %d, want 2 (regeneration)", llm.callCount())
	}
	// The corrupt entry gets overwritten by the fresh result.
	var replaced models.StructuredSummary
	if entry := store.entries[first.CacheKey]; entry == nil || len(entry.Summary) == 0 {
		t.Fatal("regenerated summary was not re-cached")
	} else if err := json.Unmarshal(entry.Summary, &replaced); err != nil {
		t.Errorf("re-cached summary is not valid JSON: %v", err)
	}
}

func TestProcess_PersonalizationDisabled(t *testing.T) {
	llm := quickLLM()
	store := newFakeStore()
	orch := NewOrchestrator(llm, store, testPromptVersion, false)
	tr := segmentedTranscript()

	custom := Request{
		VideoID:   "vid",
		StartTime: "00:30",
		EndTime:   "02:00",
		Tone:      "Provocative",
	}
	res, err := orch.Process(context.Background(), custom, tr)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if res.StartTime != "00:00" || res.EndTime != "end" || res.Tone != ToneObjective {
		t.Errorf("personalization off should force defaults, got %+v", res)
	}

	// A plain default request lands on the same entry.
	again, err := orch.Process(context.Background(), Request{VideoID: "vid"}, tr)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !again.CacheHit {
		t.Error("default request should hit the collapsed entry")
	}
}

func TestProcess_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		wantKind ErrorKind
	}{
		{
			name:     "unknown mode",
			req:      Request{VideoID: "vid", Mode: "thorough"},
			wantKind: KindInvalidMode,
		},
		{
			name:     "unknown tone",
			req:      Request{VideoID: "vid", Tone: "Sarcastic"},
			wantKind: KindInvalidTone,
		},
		{
			name:     "malformed timestamp",
			req:      Request{VideoID: "vid", StartTime: "five minutes"},
			wantKind: KindInvalidFormat,
		},
		{
			name:     "range under a minute",
			req:      Request{VideoID: "vid", StartTime: "10:00", EndTime: "10:30"},
			wantKind: KindRangeError,
		},
		{
			name:     "start past transcript",
			req:      Request{VideoID: "vid", StartTime: "03:00"},
			wantKind: KindOutOfBounds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := quickLLM()
			store := newFakeStore()
			orch := NewOrchestrator(llm, store, testPromptVersion, true)

			_, err := orch.Process(context.Background(), tt.req, segmentedTranscript())
			verr, ok := AsValidationError(err)
			if !ok {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if verr.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", verr.Kind, tt.wantKind)
			}
			if llm.callCount() != 0 {
				t.Errorf("rejected request still called the LLM (%d calls)", llm.callCount())
			}
			if len(store.entries) != 0 {
				t.Error("rejected request wrote to the cache")
			}
		})
	}
}

// TestProcess_LongVideoChunks verifies the strategy choice: a quick-mode
// request over a transcript estimated past 60 minutes takes the chunked
// path, visible as multiple LLM calls.
func TestProcess_LongVideoChunks(t *testing.T) {
	// 70 estimated minutes, no segment timings
	text := strings.TrimSpace(strings.Repeat("word ", 70*wordsPerMinute))
	tr := Transcript{Title: "Marathon", Text: text}

	llm := &fakeLLM{fn: func(prompt string, _ int) (string, error) {
		if strings.Contains(prompt, "Respond with valid JSON") {
			return validQuickJSON, nil
		}
		return "chunk summary", nil
	}}
	store := newFakeStore()
	orch := NewOrchestrator(llm, store, testPromptVersion, true)

	res, err := orch.Process(context.Background(), Request{VideoID: "vid"}, tr)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if !res.Approximate {
		t.Error("word-rate slicing should mark the result approximate")
	}
	// 10500 words / 3000-word chunks = 4 chunk calls, plus the final reduce.
	if got := llm.callCount(); got != 5 {
		t.Errorf("LLM calls = %d, want 5", got)
	}
	if err := ValidateSummary(res.Summary); err != nil {
		t.Errorf("summary fails validation: %v", err)
	}
}
