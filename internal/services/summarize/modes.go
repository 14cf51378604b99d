// modes.go holds the mode and tone registries: which prompt template, token
// budget and chunking parameters each summary mode uses, and the textual
// constraint each tone injects into the prompt.
package summarize

// Mode selects a summarization profile.
type Mode string

const (
	ModeQuick   Mode = "quick"   // fast, concise; optimized for speed
	ModeIndepth Mode = "indepth" // comprehensive; optimized for completeness
)

// Tone is a stylistic constraint injected into the generation prompt.
// It never changes token budgets or chunking parameters.
type Tone string

const (
	ToneObjective   Tone = "Objective"
	ToneAcademic    Tone = "Academic"
	ToneCasual      Tone = "Casual"
	ToneSkeptical   Tone = "Skeptical"
	ToneProvocative Tone = "Provocative"
)

// Defaults applied to omitted request fields.
const (
	DefaultMode      = ModeQuick
	DefaultStartTime = "00:00"
	DefaultEndTime   = EndLiteral
	DefaultTone      = ToneObjective
)

// ModeConfig is the generation profile for one mode.
type ModeConfig struct {
	PromptTemplate        string
	MaxOutputTokens       int
	ChunkWordSize         int     // words per chunk when the chunked path engages
	ChunkThresholdMinutes float64 // estimated minutes above which chunking engages
}

var modeConfigs = map[Mode]ModeConfig{
	// quick: smaller output, bigger chunks, higher threshold — most videos
	// go through in a single pass.
	ModeQuick: {
		PromptTemplate:        quickPromptTemplate,
		MaxOutputTokens:       2500,
		ChunkWordSize:         3000,
		ChunkThresholdMinutes: 60,
	},
	// indepth: larger output, smaller chunks, lower threshold — long videos
	// get finer-grained coverage before the final reduce.
	ModeIndepth: {
		PromptTemplate:        indepthPromptTemplate,
		MaxOutputTokens:       8000,
		ChunkWordSize:         1500,
		ChunkThresholdMinutes: 30,
	},
}

var toneInstructions = map[Tone]string{
	ToneObjective:   "Tone: neutral and objective. Report only what the transcript supports.",
	ToneAcademic:    "Tone: formal academic register with precise terminology and structured analysis.",
	ToneCasual:      "Tone: relaxed and conversational, as if explaining the video to a friend.",
	ToneSkeptical:   "Tone: skeptical. Question the claims made and flag weak or unsupported arguments.",
	ToneProvocative: "Tone: provocative. Take a bold angle and sharpen the most debatable claims.",
}

// ConfigForMode returns the generation profile for mode.
// Unknown modes are rejected before any external call is attempted.
func ConfigForMode(mode Mode) (ModeConfig, error) {
	cfg, ok := modeConfigs[mode]
	if !ok {
		return ModeConfig{}, validationErrorf(KindInvalidMode,
			"unknown mode %q: use %q or %q", mode, ModeQuick, ModeIndepth)
	}
	return cfg, nil
}

// ToneInstruction returns the prompt constraint for tone.
func ToneInstruction(tone Tone) (string, error) {
	instr, ok := toneInstructions[tone]
	if !ok {
		return "", validationErrorf(KindInvalidTone,
			"unknown tone %q: use Objective, Academic, Casual, Skeptical or Provocative", tone)
	}
	return instr, nil
}

// --- Prompt templates ---
// Placeholders, in order: video title, tone instruction, transcript text.

const quickPromptTemplate = `Summarize the following YouTube video transcript.

Video title: %s

%s

Respond with valid JSON in this exact format, nothing else:
{
  "quick_takeaway": "One-sentence takeaway, 150 characters maximum",
  "key_points": ["Point 1", "Point 2", "Point 3"],
  "topics": [{"name": "Topic name", "section_id": 1}],
  "timestamps": [{"time": "05:30", "description": "What happens around here"}],
  "full_summary": [{"id": 1, "content": "First section of the summary"}]
}

Order topics, timestamps and full_summary sections chronologically.

Transcript:
%s`

const indepthPromptTemplate = `Produce a comprehensive structured analysis of the following YouTube video transcript.

Video title: %s

%s

Respond with valid JSON in this exact format, nothing else:
{
  "quick_takeaway": "One-sentence takeaway, 150 characters maximum",
  "key_points": ["Point 1", "Point 2", "Point 3"],
  "topics": [{"name": "Topic name", "section_id": 1}],
  "timestamps": [{"time": "05:30", "description": "What happens around here"}],
  "full_summary": [{"id": 1, "content": "First section of the summary"}],
  "detailed_analysis": "Several paragraphs of deeper analysis",
  "key_quotes": ["Notable quote from the video"],
  "arguments": ["Main argument the video makes, with its supporting evidence"]
}

Be thorough: cover every substantial point the transcript makes.
Order topics, timestamps and full_summary sections chronologically.

Transcript:
%s`

// chunkPromptTemplate produces the plain-text per-chunk summaries used
// during hierarchical reduction. Placeholders: segment subtitle, tone
// instruction, chunk text.
const chunkPromptTemplate = `Summarize this portion of a longer video transcript in plain prose.
Keep every substantive point; skip headers, lists and other formatting.

Segment: %s

%s

Transcript portion:
%s`
