package chunker

import (
	"regexp"
	"strings"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// quoteReplacer normalizes typographic quotes emitted by PDF extraction.
var quoteReplacer = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
)

// CleanText collapses whitespace and normalizes smart quotes.
// Chunking operates on cleaned text only.
func CleanText(text string) string {
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = quoteReplacer.Replace(text)
	return strings.TrimSpace(text)
}
