// cachekey.go derives the deterministic cache key for a summary request.
//
// The key covers every personalization parameter plus the prompt version, so
// any field difference lands in a different cache entry and two requests
// that mean the same thing (explicit defaults vs omitted fields, "1:02:03"
// vs "01:02:03") collapse to the same one. This is the central correctness
// property of the whole subsystem — see the property tests next door.
package summarize

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const keyDelimiter = "|"

// BuildKey returns the cache key for one fully-specified summary request.
// Empty start/end/tone are canonicalized to their defaults before hashing;
// explicit timestamps are canonicalized to whole seconds. The function is
// total and deterministic for any valid input.
func BuildKey(videoID string, mode Mode, startTime, endTime string, tone Tone, promptVersion string) (string, error) {
	canonStart, canonEnd, err := CanonicalRange(startTime, endTime)
	if err != nil {
		return "", err
	}
	if tone == "" {
		tone = DefaultTone
	}

	joined := strings.Join([]string{
		videoID,
		string(mode),
		canonStart,
		canonEnd,
		string(tone),
		promptVersion,
	}, keyDelimiter)

	// sha256, not a weak checksum: collisions across different logical
	// inputs must not occur in practice.
	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:]), nil
}

// CanonicalRange normalizes a start/end pair to the canonical forms used in
// cache keys and metadata: defaults applied, timestamps re-rendered from
// parsed seconds, "end" kept literal (its value depends on the transcript).
func CanonicalRange(startTime, endTime string) (string, string, error) {
	if strings.TrimSpace(startTime) == "" {
		startTime = DefaultStartTime
	}
	if strings.TrimSpace(endTime) == "" {
		endTime = DefaultEndTime
	}

	startSec, err := ParseTimestamp(startTime)
	if err != nil {
		return "", "", err
	}
	canonStart := FormatTimestamp(startSec)

	canonEnd := EndLiteral
	if strings.TrimSpace(endTime) != EndLiteral {
		endSec, err := ParseTimestamp(endTime)
		if err != nil {
			return "", "", err
		}
		canonEnd = FormatTimestamp(endSec)
	}

	return canonStart, canonEnd, nil
}
