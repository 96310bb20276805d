package scorer

// #region imports
import (
	"regexp"
	"strings"
)

// #endregion

// #region patterns

// Chunk texts arrive from the PDF ingestion step and occasionally
// leak indexing metadata (page numbers, similarity annotations, file
// names). These never belong in a prompt.
// Note: RE2's \b is ASCII-only, so the Cyrillic page-reference
// patterns anchor on their trailing digits instead.
var leakPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bpage_number\b\s*[:=]\s*\d+`),
	regexp.MustCompile(`(?i)\bsimilarity\b\s*[:=]\s*[0-9.]+`),
	regexp.MustCompile(`(?i)\bid\b\s*[:=]\s*\d+`),
	regexp.MustCompile(`(?i)\bfile_name\b\s*[:=]\s*\S+`),
	regexp.MustCompile(`(?i)\bresults\b\s*[:=]\s*\[`),
	regexp.MustCompile(`(?i)\.pdf\b`),
	regexp.MustCompile(`(?i)на\s+стр\.?\s*\d+\b`),
	regexp.MustCompile(`(?i)стр\.?\s*\d+\b`),
	regexp.MustCompile(`(?i)страниц[аы]\s*\d+\b`),
}

var multiSpace = regexp.MustCompile(`\s{2,}`)

// #endregion patterns

// #region sanitize

// Sanitize strips metadata-leak patterns from a chunk and collapses
// the leftover whitespace.
func Sanitize(text string) string {
	out := text
	for _, p := range leakPatterns {
		out = p.ReplaceAllString(out, " ")
	}
	return strings.TrimSpace(multiSpace.ReplaceAllString(out, " "))
}

// #endregion sanitize
