package summarize

// EstimateMinutes approximates a video's length in minutes from its word
// count, assuming the standard 150 words/minute speaking rate. The estimate
// only drives the single-pass vs chunked strategy choice — it is never
// surfaced to users as a duration claim.
func EstimateMinutes(wordCount int) float64 {
	return float64(wordCount) / wordsPerMinute
}
