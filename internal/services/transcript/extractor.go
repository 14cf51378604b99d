// Package transcript handles YouTube transcript extraction using yt-dlp.
//
// Unlike a plain subtitle-to-text dump, the parser here keeps the cue
// timings: every VTT cue becomes a time-aligned segment, which is what lets
// the summarizer slice a video by start/end time instead of guessing from
// word counts. Plain text remains the fallback when a video has no usable
// cue timings.
package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/clipdigest/clipdigest-api/internal/models"
)

// Extractor defines the interface for transcript extraction.
// The worker pool depends on this rather than the concrete yt-dlp type, so
// tests can substitute a fake.
type Extractor interface {
	Extract(ctx context.Context, videoID string) (*Result, error)
}

// Result holds the extracted transcript and video metadata. Segments is
// empty when the subtitle file had no parseable cue timings.
type Result struct {
	VideoID    string
	Title      string
	Channel    string
	Duration   int // seconds
	Language   string
	Transcript string
	Segments   []models.Segment
	WordCount  int
}

// YtDlpExtractor uses the yt-dlp CLI tool to extract transcripts.
type YtDlpExtractor struct {
	ytDlpPath string
	proxy     string
	workDir   string
}

// NewExtractor creates a new yt-dlp based extractor.
func NewExtractor(ytDlpPath string) *YtDlpExtractor {
	return &YtDlpExtractor{ytDlpPath: ytDlpPath, workDir: os.TempDir()}
}

// SetProxy routes yt-dlp traffic through a proxy (e.g. a residential proxy
// for YouTube access from datacenter IPs).
func (e *YtDlpExtractor) SetProxy(proxy string) {
	e.proxy = proxy
}

// ytDlpMetadata represents the JSON output from yt-dlp --dump-json.
type ytDlpMetadata struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Channel  string  `json:"channel"`
	Duration float64 `json:"duration"`
}

// Extract downloads the transcript for a YouTube video.
// It first tries manual subtitles, then falls back to auto-generated captions.
func (e *YtDlpExtractor) Extract(ctx context.Context, videoID string) (*Result, error) {
	url := fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)

	log.Printf("🎬 Extracting metadata for video: %s", videoID)
	metadata, err := e.getMetadata(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get video metadata: %w", err)
	}

	log.Printf("📝 Extracting transcript for: %s", metadata.Title)
	vtt, lang, err := e.getSubtitles(ctx, url, videoID)
	if err != nil {
		return nil, fmt.Errorf("no transcript available: %w", err)
	}

	text, segments := ParseVTT(vtt)
	cleaned := cleanTranscript(text)
	if cleaned == "" {
		return nil, fmt.Errorf("subtitle file contained no text")
	}

	return &Result{
		VideoID:    videoID,
		Title:      metadata.Title,
		Channel:    metadata.Channel,
		Duration:   int(metadata.Duration),
		Language:   lang,
		Transcript: cleaned,
		Segments:   segments,
		WordCount:  countWords(cleaned),
	}, nil
}

// getMetadata fetches video info using yt-dlp --dump-json.
func (e *YtDlpExtractor) getMetadata(ctx context.Context, url string) (*ytDlpMetadata, error) {
	args := []string{
		"--dump-json",   // Output video info as JSON
		"--no-download", // Don't download the video itself
		"--no-warnings",
	}
	if e.proxy != "" {
		args = append(args, "--proxy", e.proxy)
	}
	args = append(args, url)

	// exec.CommandContext cancels the command if the context is cancelled,
	// so a dropped request doesn't leave a runaway yt-dlp behind.
	cmd := exec.CommandContext(ctx, e.ytDlpPath, args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("yt-dlp metadata failed: %w", err)
	}

	var meta ytDlpMetadata
	if err := json.Unmarshal(output, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}

	return &meta, nil
}

// getSubtitles downloads the WebVTT subtitle file and returns its content
// and language code. Manual subtitles are tried before auto-captions.
func (e *YtDlpExtractor) getSubtitles(ctx context.Context, url, videoID string) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	outputPattern := filepath.Join(e.workDir, "cd-"+videoID)

	for _, subType := range []string{"--write-subs", "--write-auto-subs"} {
		args := []string{
			"--skip-download",
			subType,
			"--sub-langs", "en.*,en", // Prefer English
			"--sub-format", "vtt",
			"--output", outputPattern,
			"--no-warnings",
		}
		if e.proxy != "" {
			args = append(args, "--proxy", e.proxy)
		}
		args = append(args, url)

		cmd := exec.CommandContext(ctx, e.ytDlpPath, args...)
		if output, err := cmd.CombinedOutput(); err != nil {
			log.Printf("⚠️  Subtitle extraction (%s) failed: %s", subType, string(output))
			continue
		}

		matches, err := filepath.Glob(outputPattern + "*.vtt")
		if err != nil || len(matches) == 0 {
			continue
		}
		subtitleFile := matches[0]

		content, err := os.ReadFile(subtitleFile)
		os.Remove(subtitleFile)
		if err != nil {
			continue
		}

		// Language code from the filename, e.g. cd-abc123.en.vtt
		lang := "en"
		parts := strings.Split(filepath.Base(subtitleFile), ".")
		if len(parts) >= 3 {
			lang = parts[len(parts)-2]
		}

		if strings.TrimSpace(string(content)) != "" {
			return string(content), lang, nil
		}
	}

	return "", "", fmt.Errorf("no subtitles available for this video")
}

// cueTimePattern matches a VTT cue timing line like
// "00:00:01.000 --> 00:00:04.000" and captures both offsets.
var cueTimePattern = regexp.MustCompile(
	`^(\d{2}):(\d{2}):(\d{2})\.(\d{3})\s+-->\s+(\d{2}):(\d{2}):(\d{2})\.(\d{3})`)

// vttTagPattern matches inline VTT tags like <c> and <00:00:01.000>.
var vttTagPattern = regexp.MustCompile(`<[^>]+>`)

var cueIDPattern = regexp.MustCompile(`^\d+$`)

// ParseVTT extracts plain text and time-aligned segments from a WebVTT
// subtitle file. YouTube auto-captions repeat lines across rolling cues, so
// text is deduplicated; a cue whose text was entirely seen before produces
// no segment.
//
//	WEBVTT
//
//	00:00:01.000 --> 00:00:04.000
//	Hello, welcome to the video.
func ParseVTT(vtt string) (string, []models.Segment) {
	var (
		textLines []string
		segments  []models.Segment
		seen      = make(map[string]bool)

		inCue    bool
		cueStart float64
		cueEnd   float64
		cueText  []string
	)

	flush := func() {
		if inCue && len(cueText) > 0 {
			segments = append(segments, models.Segment{
				Start: cueStart,
				End:   cueEnd,
				Text:  strings.Join(cueText, " "),
			})
		}
		inCue = false
		cueText = nil
	}

	for _, line := range strings.Split(vtt, "\n") {
		line = strings.TrimSpace(line)

		if m := cueTimePattern.FindStringSubmatch(line); m != nil {
			flush()
			inCue = true
			cueStart = cueSeconds(m[1], m[2], m[3], m[4])
			cueEnd = cueSeconds(m[5], m[6], m[7], m[8])
			continue
		}

		// Skip headers, metadata, blank separators and numeric cue IDs.
		if line == "" || line == "WEBVTT" || strings.HasPrefix(line, "Kind:") ||
			strings.HasPrefix(line, "Language:") || strings.HasPrefix(line, "NOTE") ||
			cueIDPattern.MatchString(line) {
			if line == "" {
				flush()
			}
			continue
		}

		line = strings.TrimSpace(vttTagPattern.ReplaceAllString(line, ""))
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		textLines = append(textLines, line)
		if inCue {
			cueText = append(cueText, line)
		}
	}
	flush()

	return strings.Join(textLines, " "), segments
}

// cueSeconds converts captured HH, MM, SS, mmm strings to seconds.
func cueSeconds(hh, mm, ss, ms string) float64 {
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	s, _ := strconv.Atoi(ss)
	milli, _ := strconv.Atoi(ms)
	return float64(h*3600+m*60+s) + float64(milli)/1000.0
}

// cleanTranscript removes common transcript artifacts and normalizes
// whitespace. Artifact tags go first, so the gap they leave behind is
// collapsed rather than preserved as a double space.
func cleanTranscript(text string) string {
	text = strings.ReplaceAll(text, "[Music]", "")
	text = strings.ReplaceAll(text, "[Applause]", "")
	text = strings.ReplaceAll(text, "[Laughter]", "")

	spaceRegex := regexp.MustCompile(`\s+`)
	text = spaceRegex.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// countWords counts the number of words in a text string.
func countWords(text string) int {
	if text == "" {
		return 0
	}
	return len(strings.Fields(text))
}

// ParseYouTubeURL extracts the video ID from various YouTube URL formats.
// Supports:
//   - https://www.youtube.com/watch?v=VIDEO_ID
//   - https://youtu.be/VIDEO_ID
//   - https://youtube.com/watch?v=VIDEO_ID&list=...
//   - Just the video ID itself (11 characters)
func ParseYouTubeURL(input string) (string, string, error) {
	input = strings.TrimSpace(input)

	// If it looks like a plain video ID (11 alphanumeric chars + - and _)
	videoIDRegex := regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	if videoIDRegex.MatchString(input) {
		return fmt.Sprintf("https://www.youtube.com/watch?v=%s", input), input, nil
	}

	patterns := []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/v/)([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`(?:youtube\.com/shorts/)([a-zA-Z0-9_-]{11})`),
	}

	for _, pattern := range patterns {
		matches := pattern.FindStringSubmatch(input)
		if len(matches) >= 2 {
			videoID := matches[1]
			return fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID), videoID, nil
		}
	}

	return "", "", fmt.Errorf("invalid YouTube URL or video ID: %s", input)
}
