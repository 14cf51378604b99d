// generator.go is the single-pass structured summarizer: format the mode's
// prompt, call the LLM, parse and validate the JSON response, and fall back
// to a deterministic schema-valid summary when anything goes wrong.
//
// The fallback is a first-class terminal state, not an error path: transport
// failures, unparseable output and missing keys all land there, get logged,
// and the request still completes with degraded content.
package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/clipdigest/clipdigest-api/internal/models"
)

// Generator is the external LLM call: prompt in, raw text out. May fail with
// a transport error or return malformed text — both are handled identically.
// Go Pattern: the interface lives here, where it's consumed, so tests can
// substitute fakes and the llm package satisfies it implicitly.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

const (
	maxTakeawayChars     = 150
	fallbackExcerptWords = 500
)

// generateStructured runs one full structured-summary generation.
// The second return value reports whether the fallback was substituted.
func generateStructured(ctx context.Context, llm Generator, text, title string, mode Mode, tone Tone) (*models.StructuredSummary, bool) {
	cfg := modeConfigs[mode]
	instr := toneInstructions[tone]
	prompt := fmt.Sprintf(cfg.PromptTemplate, title, instr, text)

	raw, err := llm.Generate(ctx, prompt, cfg.MaxOutputTokens)
	if err != nil {
		log.Printf("⚠️  Generation call failed (%s/%s): %v — using fallback summary", mode, tone, err)
		return fallbackSummary(title, text, mode), true
	}

	summary, err := parseSummary(raw, mode)
	if err != nil {
		log.Printf("⚠️  Unusable generation output (%s/%s): %v — using fallback summary", mode, tone, err)
		return fallbackSummary(title, text, mode), true
	}

	return summary, false
}

// Required top-level keys per mode: 5 for quick, 8 for indepth.
var (
	commonKeys  = []string{"quick_takeaway", "key_points", "topics", "timestamps", "full_summary"}
	indepthKeys = []string{"detailed_analysis", "key_quotes", "arguments"}
)

// parseSummary extracts the JSON object from a raw LLM response and decodes
// it into a validated StructuredSummary.
func parseSummary(raw string, mode Mode) (*models.StructuredSummary, error) {
	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		return nil, fmt.Errorf("no JSON object in response")
	}

	// Explicit schema check on the raw keys before decoding, so a response
	// missing required sections is rejected whole rather than decoded into
	// a half-populated struct.
	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &keys); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}

	required := commonKeys
	if mode == ModeIndepth {
		required = append(append([]string{}, commonKeys...), indepthKeys...)
	}
	for _, k := range required {
		if _, ok := keys[k]; !ok {
			return nil, fmt.Errorf("response missing required key %q", k)
		}
	}

	// The LLM returns all keys flat; decode the two section groups and
	// assemble the tagged summary.
	var decoded struct {
		models.SummarySections
		models.IndepthSections
	}
	if err := json.Unmarshal([]byte(jsonStr), &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode summary sections: %w", err)
	}

	summary := &models.StructuredSummary{
		Mode:            string(mode),
		SummarySections: decoded.SummarySections,
	}
	if mode == ModeIndepth {
		indepth := decoded.IndepthSections
		summary.Indepth = &indepth
	}

	normalizeSummary(summary)
	if err := ValidateSummary(summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// extractJSON finds the first balanced {...} object in content. Models often
// wrap their JSON in markdown fences or prose, so a plain Unmarshal of the
// whole response is not enough. Braces inside string values don't count
// toward nesting, so a summary containing a literal "}" stays intact.
func extractJSON(content string) string {
	start, depth := -1, 0
	inString, escaped := false, false
	for i, c := range content {
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			if depth > 0 {
				inString = !inString
			}
		case '{':
			if !inString {
				if depth == 0 {
					start = i
				}
				depth++
			}
		case '}':
			if !inString && depth > 0 {
				depth--
				if depth == 0 {
					return content[start : i+1]
				}
			}
		}
	}
	return ""
}

// normalizeSummary enforces the takeaway length cap and replaces nil slices
// with empty ones so the cached JSON always carries every required key.
func normalizeSummary(s *models.StructuredSummary) {
	s.QuickTakeaway = truncateRunes(strings.TrimSpace(s.QuickTakeaway), maxTakeawayChars)
	if s.KeyPoints == nil {
		s.KeyPoints = []string{}
	}
	if s.Topics == nil {
		s.Topics = []models.TopicRef{}
	}
	if s.Timestamps == nil {
		s.Timestamps = []models.TimestampRef{}
	}
	if s.FullSummary == nil {
		s.FullSummary = []models.SummaryParagraph{}
	}
	if s.Indepth != nil {
		if s.Indepth.KeyQuotes == nil {
			s.Indepth.KeyQuotes = []string{}
		}
		if s.Indepth.Arguments == nil {
			s.Indepth.Arguments = []string{}
		}
	}
}

// ValidateSummary checks that s satisfies the schema for its mode: the
// common sections present, and the indepth block set exactly when the mode
// requires it.
func ValidateSummary(s *models.StructuredSummary) error {
	switch Mode(s.Mode) {
	case ModeQuick:
		if s.Indepth != nil {
			return fmt.Errorf("quick summary carries indepth sections")
		}
	case ModeIndepth:
		if s.Indepth == nil {
			return fmt.Errorf("indepth summary missing indepth sections")
		}
	default:
		return fmt.Errorf("unknown summary mode %q", s.Mode)
	}

	if s.QuickTakeaway == "" {
		return fmt.Errorf("summary missing quick_takeaway")
	}
	if utf8.RuneCountInString(s.QuickTakeaway) > maxTakeawayChars {
		return fmt.Errorf("quick_takeaway exceeds %d characters", maxTakeawayChars)
	}
	if s.KeyPoints == nil || s.Topics == nil || s.Timestamps == nil || s.FullSummary == nil {
		return fmt.Errorf("summary has missing section lists")
	}
	return nil
}

// fallbackSummary builds the deterministic degraded summary: takeaway from
// the title, a notice key point, and one paragraph from the start of the
// raw transcript. It is schema-valid for either mode.
func fallbackSummary(title, text string, mode Mode) *models.StructuredSummary {
	takeaway := "Summary unavailable; transcript excerpt shown instead."
	if strings.TrimSpace(title) != "" {
		takeaway = truncateRunes("Summary of "+strings.TrimSpace(title), maxTakeawayChars)
	}

	words := strings.Fields(text)
	if len(words) > fallbackExcerptWords {
		words = words[:fallbackExcerptWords]
	}
	excerpt := strings.Join(words, " ")
	if excerpt == "" {
		excerpt = "No transcript text was available."
	}

	s := &models.StructuredSummary{
		Mode: string(mode),
		SummarySections: models.SummarySections{
			QuickTakeaway: takeaway,
			KeyPoints: []string{
				"Automatic summarization was unavailable for this video; a transcript excerpt is shown instead.",
			},
			Topics:     []models.TopicRef{},
			Timestamps: []models.TimestampRef{},
			FullSummary: []models.SummaryParagraph{
				{ID: 1, Content: excerpt},
			},
		},
	}

	if mode == ModeIndepth {
		s.Indepth = &models.IndepthSections{
			DetailedAnalysis: "Detailed analysis was unavailable because summary generation failed.",
			KeyQuotes:        []string{},
			Arguments:        []string{},
		}
	}

	return s
}

// truncateRunes shortens s to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
