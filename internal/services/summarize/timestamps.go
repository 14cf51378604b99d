// timestamps.go parses human-entered time ranges and slices transcripts.
//
// Two slicing modes exist: exact (the extractor gave us time-aligned
// segments, so we take every segment overlapping [start, end)) and
// approximate (plain text only — we map time offsets onto word indexes at an
// assumed 150 words/minute speaking rate and flag the result).
package summarize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/clipdigest/clipdigest-api/internal/models"
)

// wordsPerMinute is the assumed speaking rate used for duration estimation
// and for approximate word-index slicing. It is a heuristic: transcripts
// with music or many speakers will map less accurately, which is why sliced
// results carry the Approximate flag.
const wordsPerMinute = 150

// minRangeSeconds is the smallest time range worth summarizing.
const minRangeSeconds = 60

// EndLiteral is the sentinel end_time meaning "until the end of the video".
const EndLiteral = "end"

var (
	mmssPattern   = regexp.MustCompile(`^(\d{1,3}):([0-5]\d)$`)
	hhmmssPattern = regexp.MustCompile(`^(\d{1,2}):([0-5]\d):([0-5]\d)$`)
)

// ParseTimestamp converts "MM:SS" or "HH:MM:SS" into whole seconds.
// The literal "end" is NOT accepted here — callers resolve it against the
// transcript, since its value depends on the video's length.
func ParseTimestamp(s string) (int, error) {
	s = strings.TrimSpace(s)

	if m := mmssPattern.FindStringSubmatch(s); m != nil {
		return atoi(m[1])*60 + atoi(m[2]), nil
	}
	if m := hhmmssPattern.FindStringSubmatch(s); m != nil {
		return atoi(m[1])*3600 + atoi(m[2])*60 + atoi(m[3]), nil
	}

	return 0, validationErrorf(KindInvalidFormat,
		"invalid timestamp %q: use MM:SS or HH:MM:SS", s)
}

// FormatTimestamp renders whole seconds in the canonical form used for cache
// keys: "MM:SS" under an hour, "HH:MM:SS" from an hour up.
func FormatTimestamp(seconds int) string {
	if seconds >= 3600 {
		return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// atoi parses digits already matched by a \d pattern; it cannot fail.
func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

// Transcript is the summarizer's view of an extracted video transcript.
// Segments may be empty when only plain text was available.
type Transcript struct {
	Text     string
	Title    string
	Segments []models.Segment
}

// SliceResult is a time-sliced transcript plus the resolved offsets.
type SliceResult struct {
	Text         string
	StartSeconds float64
	EndSeconds   float64
	// Approximate is true when the slice was computed from word counts
	// rather than real segment timings.
	Approximate bool
}

// SliceTranscript resolves startTime/endTime against t and returns the text
// covering [start, end).
//
// Policy on out-of-range requests: an end past the transcript is clamped to
// the transcript's end; a start past the transcript is rejected outright.
// The resolved range must cover at least 60 seconds.
func SliceTranscript(t Transcript, startTime, endTime string) (*SliceResult, error) {
	if strings.TrimSpace(startTime) == EndLiteral {
		return nil, validationErrorf(KindInvalidFormat, `"end" is only valid as an end time`)
	}

	startSec, err := ParseTimestamp(startTime)
	if err != nil {
		return nil, err
	}
	if startSec < 0 {
		return nil, validationErrorf(KindRangeError, "start time cannot be negative")
	}

	endSec := -1
	if strings.TrimSpace(endTime) != EndLiteral {
		endSec, err = ParseTimestamp(endTime)
		if err != nil {
			return nil, err
		}
		if startSec >= endSec {
			return nil, validationErrorf(KindRangeError,
				"start time %s must precede end time %s", startTime, endTime)
		}
		if endSec-startSec < minRangeSeconds {
			return nil, validationErrorf(KindRangeError,
				"requested range is %ds; minimum is %ds", endSec-startSec, minRangeSeconds)
		}
	}

	if len(t.Segments) > 0 {
		return sliceSegments(t.Segments, float64(startSec), endSec)
	}
	return sliceByWordRate(t.Text, float64(startSec), endSec)
}

// sliceSegments takes every segment overlapping [start, end), concatenated
// in order. endSec < 0 means "until the end of the transcript".
func sliceSegments(segments []models.Segment, start float64, endSec int) (*SliceResult, error) {
	total := segments[len(segments)-1].End

	if start > total {
		return nil, validationErrorf(KindOutOfBounds,
			"start time %s is past the end of the transcript (%s)",
			FormatTimestamp(int(start)), FormatTimestamp(int(total)))
	}

	end := total
	if endSec >= 0 && float64(endSec) < total {
		end = float64(endSec)
	}

	if end-start < minRangeSeconds {
		return nil, validationErrorf(KindRangeError,
			"resolved range is %.0fs; minimum is %ds", end-start, minRangeSeconds)
	}

	var parts []string
	for _, seg := range segments {
		if seg.Start < end && seg.End > start {
			parts = append(parts, seg.Text)
		}
	}

	return &SliceResult{
		Text:         strings.Join(parts, " "),
		StartSeconds: start,
		EndSeconds:   end,
	}, nil
}

// sliceByWordRate maps time offsets onto word indexes at wordsPerMinute.
// This is the degraded path used when the extractor produced no timings.
func sliceByWordRate(text string, start float64, endSec int) (*SliceResult, error) {
	words := strings.Fields(text)
	wordsPerSecond := float64(wordsPerMinute) / 60.0
	total := float64(len(words)) / wordsPerSecond

	if start > total {
		return nil, validationErrorf(KindOutOfBounds,
			"start time %s is past the estimated end of the transcript (%s)",
			FormatTimestamp(int(start)), FormatTimestamp(int(total)))
	}

	end := total
	if endSec >= 0 && float64(endSec) < total {
		end = float64(endSec)
	}

	if end-start < minRangeSeconds {
		return nil, validationErrorf(KindRangeError,
			"resolved range is %.0fs; minimum is %ds", end-start, minRangeSeconds)
	}

	startIdx := int(start * wordsPerSecond)
	endIdx := int(end * wordsPerSecond)
	if endIdx > len(words) {
		endIdx = len(words)
	}
	if startIdx > endIdx {
		startIdx = endIdx
	}

	return &SliceResult{
		Text:         strings.Join(words[startIdx:endIdx], " "),
		StartSeconds: start,
		EndSeconds:   end,
		Approximate:  true,
	}, nil
}

// wordCount counts whitespace-separated words.
func wordCount(text string) int {
	return len(strings.Fields(text))
}
