package extractors

import (
	"regexp"
	"strings"
)

var (
	// spaceRuns matches runs of horizontal whitespace (newlines excluded).
	spaceRuns = regexp.MustCompile(`[^\S\n]+`)

	// excessBlankLines matches three or more consecutive line breaks,
	// possibly padded with whitespace.
	excessBlankLines = regexp.MustCompile(`\n\s*\n\s*\n+`)
)

// Normalise cleans up extracted text: whitespace runs collapse to single
// spaces, three or more consecutive blank lines collapse to exactly one
// blank line, and leading/trailing whitespace is trimmed.
func Normalise(text string) string {
	text = spaceRuns.ReplaceAllString(text, " ")
	text = excessBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
